package widget

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"githubActivityWidget/internal/model"

	"github.com/dustin/go-humanize"
	"github.com/shurcooL/htmlg"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const avatarSize = 16

var _ htmlg.Component = activityList{}

type activityList struct {
	pushes        []model.Event
	now           time.Time
	avatarBaseURL string
}

func (a activityList) Render() []*html.Node {
	ul := element(atom.Ul)
	for _, e := range a.pushes {
		htmlg.AppendChildren(ul, a.pushItem(e))
	}
	return []*html.Node{ul}
}

func (a activityList) pushItem(e model.Event) *html.Node {
	created, _ := e.CreatedTime()
	repoURL := "https://github.com/" + e.Repo.Name

	noun := "commit"
	if e.Payload.Size > 1 {
		noun = "commits"
	}

	when := element(atom.Time, html.Attribute{Key: atom.Datetime.String(), Val: created.UTC().Format(time.RFC3339)})
	htmlg.AppendChildren(when, htmlg.Text(humanize.RelTime(created, a.now, "ago", "from now")))

	commits := element(atom.Ul, html.Attribute{Key: atom.Class.String(), Val: "commit-list"})
	// Oldest first within a push.
	for i := len(e.Payload.Commits) - 1; i >= 0; i-- {
		htmlg.AppendChildren(commits, a.commitItem(repoURL, e.Payload.Commits[i]))
	}

	li := element(atom.Li)
	htmlg.AppendChildren(li,
		when,
		htmlg.Text(fmt.Sprintf(" pushed %d %s to ", e.Payload.Size, noun)),
		link(repoURL, htmlg.Text(e.Repo.Name)),
		commits,
	)
	return li
}

func (a activityList) commitItem(repoURL string, c model.Commit) *html.Node {
	li := element(atom.Li)
	if c.Author.Email != "" {
		htmlg.AppendChildren(li, element(atom.Img, html.Attribute{
			Key: atom.Src.String(),
			Val: GravatarURL(a.avatarBaseURL, c.Author.Email, avatarSize),
		}))
	}
	htmlg.AppendChildren(li,
		link(repoURL+"/commit/"+c.SHA, htmlg.Text(c.ShortSHA())),
		htmlg.Text(" "),
		htmlg.Text(c.Message),
	)
	return li
}

// GravatarURL returns the avatar image URL for email at the requested pixel size.
func GravatarURL(baseURL, email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("%s%s?s=%d", baseURL, hex.EncodeToString(sum[:]), size)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func link(href string, nodes ...*html.Node) *html.Node {
	a := element(atom.A, html.Attribute{Key: atom.Href.String(), Val: href})
	htmlg.AppendChildren(a, nodes...)
	return a
}
