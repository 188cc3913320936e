// Package widget renders a user's recent GitHub push activity into an HTML
// node tree.
package widget

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"githubActivityWidget/internal/logger"
	"githubActivityWidget/internal/model"

	"github.com/shurcooL/htmlg"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// MaxPushes is the number of push events rendered per invocation.
const MaxPushes = 5

var ErrInvalidUsername = errors.New("invalid github username")

// GitHub logins: alphanumerics and single hyphens, no leading hyphen, at most 39 characters.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9]){0,38}$`)

// FeedSource performs the single feed request for a user.
type FeedSource interface {
	UserEvents(ctx context.Context, username string) (*model.EventFeedResponse, error)
}

type Options struct {
	Username string
}

func (o Options) Validate() error {
	if len(o.Username) > 39 || !usernameRe.MatchString(o.Username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, o.Username)
	}
	return nil
}

// Outcome reports what a Render call did. Pushes is the number of list items
// appended; it is zero whenever Status is not 200.
type Outcome struct {
	Status int
	Pushes int
}

// Widget holds no per-call state and may be shared between goroutines.
type Widget struct {
	feed          FeedSource
	avatarBaseURL string

	// Now is the reference time for relative timestamps.
	Now func() time.Time
}

func New(feed FeedSource, avatarBaseURL string) *Widget {
	return &Widget{
		feed:          feed,
		avatarBaseURL: avatarBaseURL,
		Now:           time.Now,
	}
}

// Render fetches the feed for opts.Username and appends a <ul> of the most
// recent push events to container. When the feed status is not 200 nothing is
// appended and no error is returned. The container is left untouched on error.
func (w *Widget) Render(ctx context.Context, container *html.Node, opts Options) (Outcome, error) {
	if err := opts.Validate(); err != nil {
		return Outcome{}, err
	}

	feed, err := w.feed.UserEvents(ctx, opts.Username)
	if err != nil {
		return Outcome{}, err
	}
	if feed.Meta.Status != http.StatusOK {
		logger.Lg.Info("render_skipped",
			zap.String("username", opts.Username),
			zap.Int("status", feed.Meta.Status),
		)
		return Outcome{Status: feed.Meta.Status}, nil
	}
	if err := feed.Validate(); err != nil {
		return Outcome{Status: feed.Meta.Status}, err
	}

	list := activityList{
		pushes:        PushEvents(feed.Data, MaxPushes),
		now:           w.Now(),
		avatarBaseURL: w.avatarBaseURL,
	}
	htmlg.AppendChildren(container, list.Render()...)

	logger.Lg.Debug("render_done",
		zap.String("username", opts.Username),
		zap.Int("pushes", len(list.pushes)),
	)
	return Outcome{Status: feed.Meta.Status, Pushes: len(list.pushes)}, nil
}

// PushEvents returns the first limit push events of events, in feed order.
func PushEvents(events []model.Event, limit int) []model.Event {
	var pushes []model.Event
	for _, e := range events {
		if len(pushes) == limit {
			break
		}
		if e.IsPush() {
			pushes = append(pushes, e)
		}
	}
	return pushes
}
