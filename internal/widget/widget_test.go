package widget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"githubActivityWidget/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type mockFeed struct {
	mock.Mock
}

func (m *mockFeed) UserEvents(ctx context.Context, username string) (*model.EventFeedResponse, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EventFeedResponse), args.Error(1)
}

var refNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func push(repo string, size int, commits ...model.Commit) model.Event {
	var e model.Event
	e.Type = model.PushEventType
	e.CreatedAt = refNow.Add(-3 * time.Hour).Format(time.RFC3339)
	e.Repo.Name = repo
	e.Payload.Size = size
	e.Payload.Commits = commits
	return e
}

func commit(sha, message, email string) model.Commit {
	c := model.Commit{SHA: sha, Message: message}
	c.Author.Email = email
	return c
}

func other(typ string) model.Event {
	return model.Event{Type: typ, CreatedAt: refNow.Format(time.RFC3339)}
}

func newTestWidget(feed FeedSource) *Widget {
	w := New(feed, "https://gravatar.com/avatar/")
	w.Now = func() time.Time { return refNow }
	return w
}

func container() *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func children(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func renderFeed(t *testing.T, feed *model.EventFeedResponse) (*html.Node, Outcome) {
	t.Helper()
	m := new(mockFeed)
	m.On("UserEvents", mock.Anything, "octocat").Return(feed, nil).Once()

	c := container()
	out, err := newTestWidget(m).Render(context.Background(), c, Options{Username: "octocat"})
	require.NoError(t, err)
	m.AssertExpectations(t)
	return c, out
}

// pushItems returns the top-level <li> elements of the single appended list.
func pushItems(t *testing.T, c *html.Node) []*html.Node {
	t.Helper()
	lists := children(c, atom.Ul)
	require.Len(t, lists, 1)
	return children(lists[0], atom.Li)
}

func TestWidget_Render_Example(t *testing.T) {
	feed := &model.EventFeedResponse{Meta: model.Meta{Status: 200}, Data: []model.Event{
		push("octo/repo", 2,
			commit("abcdef1234567890abcdef1234567890abcdef12", "first", "octo@example.com"),
			commit("123456abcd7890123456abcd7890123456abcd78", "second", "octo@example.com"),
		),
	}}

	c, out := renderFeed(t, feed)
	assert.Equal(t, Outcome{Status: 200, Pushes: 1}, out)

	items := pushItems(t, c)
	require.Len(t, items, 1)
	item := items[0]

	times := children(item, atom.Time)
	require.Len(t, times, 1)
	assert.Equal(t, "2024-03-10T12:00:00Z", attr(times[0], "datetime"))
	assert.Equal(t, "3 hours ago", text(times[0]))

	assert.Contains(t, text(item), " pushed 2 commits to octo/repo")

	repoLinks := children(item, atom.A)
	require.Len(t, repoLinks, 1)
	assert.Equal(t, "https://github.com/octo/repo", attr(repoLinks[0], "href"))

	commitLists := children(item, atom.Ul)
	require.Len(t, commitLists, 1)
	assert.Equal(t, "commit-list", attr(commitLists[0], "class"))

	commitItems := children(commitLists[0], atom.Li)
	require.Len(t, commitItems, 2)

	// Oldest commit first within the push.
	second := children(commitItems[0], atom.A)[0]
	assert.Equal(t, "https://github.com/octo/repo/commit/123456abcd7890123456abcd7890123456abcd78", attr(second, "href"))
	assert.Equal(t, "123456a", text(second))
	assert.Equal(t, "123456a second", text(commitItems[0]))

	first := children(commitItems[1], atom.A)[0]
	assert.Equal(t, "https://github.com/octo/repo/commit/abcdef1234567890abcdef1234567890abcdef12", attr(first, "href"))
	assert.Equal(t, "abcdef1", text(first))

	imgs := children(commitItems[1], atom.Img)
	require.Len(t, imgs, 1)
	assert.Equal(t, "https://gravatar.com/avatar/2befe04c9ff31d77bff2c10f99ffaa3b?s=16", attr(imgs[0], "src"))
}

func TestWidget_Render_Limits(t *testing.T) {
	t.Run("fewer than five pushes keeps feed order", func(t *testing.T) {
		feed := &model.EventFeedResponse{Meta: model.Meta{Status: 200}, Data: []model.Event{
			push("a/one", 1), other("WatchEvent"), push("a/two", 1), push("a/three", 1),
		}}
		c, out := renderFeed(t, feed)
		assert.Equal(t, 3, out.Pushes)

		items := pushItems(t, c)
		require.Len(t, items, 3)
		for i, repo := range []string{"a/one", "a/two", "a/three"} {
			assert.Equal(t, "https://github.com/"+repo, attr(children(items[i], atom.A)[0], "href"))
		}
	})

	t.Run("more than five pushes keeps the first five", func(t *testing.T) {
		var events []model.Event
		for i := 0; i < 8; i++ {
			events = append(events, other("IssuesEvent"), push(fmt.Sprintf("a/r%d", i), 1))
		}
		c, out := renderFeed(t, &model.EventFeedResponse{Meta: model.Meta{Status: 200}, Data: events})
		assert.Equal(t, 5, out.Pushes)

		items := pushItems(t, c)
		require.Len(t, items, 5)
		for i := range items {
			assert.Equal(t, fmt.Sprintf("https://github.com/a/r%d", i), attr(children(items[i], atom.A)[0], "href"))
		}
	})

	t.Run("non push events are never rendered", func(t *testing.T) {
		feed := &model.EventFeedResponse{Meta: model.Meta{Status: 200}, Data: []model.Event{
			other("WatchEvent"), other("CreateEvent"), other("IssueCommentEvent"),
		}}
		c, out := renderFeed(t, feed)
		assert.Equal(t, 0, out.Pushes)
		assert.Empty(t, pushItems(t, c))
	})
}

func TestWidget_Render_Pluralization(t *testing.T) {
	cases := []struct {
		size int
		want string
	}{
		{0, " pushed 0 commit to "},
		{1, " pushed 1 commit to "},
		{2, " pushed 2 commits to "},
		{20, " pushed 20 commits to "},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.size), func(t *testing.T) {
			c, _ := renderFeed(t, &model.EventFeedResponse{Meta: model.Meta{Status: 200}, Data: []model.Event{push("a/b", tc.size)}})
			assert.Contains(t, text(pushItems(t, c)[0]), tc.want)
		})
	}
}

func TestWidget_Render_NoAvatarWithoutEmail(t *testing.T) {
	feed := &model.EventFeedResponse{Meta: model.Meta{Status: 200}, Data: []model.Event{
		push("a/b", 1, commit("abcdef1234567890abcdef1234567890abcdef12", "msg", "")),
	}}
	c, _ := renderFeed(t, feed)
	assert.Empty(t, findAll(c, atom.Img))
	assert.Len(t, findAll(c, atom.A), 2)
}

func TestWidget_Render_EscapesText(t *testing.T) {
	feed := &model.EventFeedResponse{Meta: model.Meta{Status: 200}, Data: []model.Event{
		push("a/b", 1, commit("abcdef1234567890abcdef1234567890abcdef12", "<script>alert(1)</script>", "")),
	}}
	c, _ := renderFeed(t, feed)

	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, c))
	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestWidget_Render_NonOKStatus(t *testing.T) {
	for _, status := range []int{0, 304, 403, 404, 500} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			feed := &model.EventFeedResponse{Meta: model.Meta{Status: status}, Data: []model.Event{push("a/b", 1)}}
			c, out := renderFeed(t, feed)
			assert.Equal(t, Outcome{Status: status}, out)
			assert.Nil(t, c.FirstChild)
		})
	}
}

func TestWidget_Render_Errors(t *testing.T) {
	t.Run("invalid username issues no request", func(t *testing.T) {
		m := new(mockFeed)
		w := newTestWidget(m)
		for _, name := range []string{"", "-lead", "trail-", "a--b", "../etc", "has space", strings.Repeat("a", 40)} {
			_, err := w.Render(context.Background(), container(), Options{Username: name})
			assert.ErrorIs(t, err, ErrInvalidUsername, name)
		}
		m.AssertNotCalled(t, "UserEvents", mock.Anything, mock.Anything)
	})

	t.Run("feed error leaves container untouched", func(t *testing.T) {
		m := new(mockFeed)
		m.On("UserEvents", mock.Anything, "octocat").Return(nil, errors.New("connection refused")).Once()

		c := container()
		_, err := newTestWidget(m).Render(context.Background(), c, Options{Username: "octocat"})
		assert.EqualError(t, err, "connection refused")
		assert.Nil(t, c.FirstChild)
	})

	t.Run("malformed feed", func(t *testing.T) {
		bad := push("a/b", 1)
		bad.CreatedAt = "not-a-time"
		m := new(mockFeed)
		m.On("UserEvents", mock.Anything, "octocat").
			Return(&model.EventFeedResponse{Meta: model.Meta{Status: 200}, Data: []model.Event{bad}}, nil).Once()

		c := container()
		_, err := newTestWidget(m).Render(context.Background(), c, Options{Username: "octocat"})
		assert.ErrorIs(t, err, model.ErrMalformedResponse)
		assert.Nil(t, c.FirstChild)
	})
}

func TestPushEvents(t *testing.T) {
	events := []model.Event{other("A"), push("a/1", 1), push("a/2", 1), other("B"), push("a/3", 1)}

	got := PushEvents(events, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "a/1", got[0].Repo.Name)
	assert.Equal(t, "a/2", got[1].Repo.Name)

	assert.Empty(t, PushEvents(nil, 5))
	assert.Len(t, PushEvents(events, 10), 3)
}

func TestGravatarURL(t *testing.T) {
	want := "https://gravatar.com/avatar/2befe04c9ff31d77bff2c10f99ffaa3b?s=16"
	assert.Equal(t, want, GravatarURL("https://gravatar.com/avatar/", "octo@example.com", 16))
	assert.Equal(t, want, GravatarURL("https://gravatar.com/avatar/", "  Octo@Example.COM ", 16))
}
