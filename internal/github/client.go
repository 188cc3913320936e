package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"githubActivityWidget/internal/logger"
	"githubActivityWidget/internal/model"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ActivityService is the subset of go-github's ActivityService the client needs.
type ActivityService interface {
	ListEventsPerformedByUser(ctx context.Context, user string, publicOnly bool, opts *github.ListOptions) ([]*github.Event, *github.Response, error)
}

type Options struct {
	Token   string
	BaseURL string
	Timeout time.Duration
	PerPage int
}

type Client struct {
	activity ActivityService
	perPage  int
}

func NewClient(opts Options) (*Client, error) {
	httpClient := &http.Client{Timeout: opts.Timeout}
	if opts.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = opts.Timeout
	}

	gc := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url %q: %w", opts.BaseURL, err)
		}
		gc.BaseURL = u
	}

	return NewClientWithService(gc.Activity, opts.PerPage), nil
}

func NewClientWithService(activity ActivityService, perPage int) *Client {
	return &Client{activity: activity, perPage: perPage}
}

// UserEvents performs GET users/{username}/events. A non-200 answer is not an
// error: it is reported through Meta.Status with no data.
func (c *Client) UserEvents(ctx context.Context, username string) (*model.EventFeedResponse, error) {
	logger.Lg.Info("feed_fetch_flight", zap.String("username", username))

	var opts *github.ListOptions
	if c.perPage > 0 {
		opts = &github.ListOptions{PerPage: c.perPage}
	}
	events, resp, err := c.activity.ListEventsPerformedByUser(ctx, username, false, opts)

	if resp != nil && resp.StatusCode != http.StatusOK {
		logger.Lg.Info("feed_fetch_done",
			zap.String("username", username),
			zap.Int("status", resp.StatusCode),
		)
		return &model.EventFeedResponse{Meta: model.Meta{Status: resp.StatusCode}}, nil
	}
	if err != nil {
		// a 200 with an error means the body failed to decode; go-github also
		// surfaces bad timestamps here as *time.ParseError
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var timeErr *time.ParseError
		if (resp != nil && resp.StatusCode == http.StatusOK) ||
			errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &timeErr) {
			return nil, model.NewMalformedResponseError("body", "undecodable json", err)
		}
		logger.Lg.Error("feed_fetch_error", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("fetch events for %s: %w", username, err)
	}

	data, err := convertEvents(events)
	if err != nil {
		return nil, err
	}
	logger.Lg.Info("feed_fetch_done",
		zap.String("username", username),
		zap.Int("status", resp.StatusCode),
		zap.Int("events", len(data)),
	)
	return &model.EventFeedResponse{Meta: model.Meta{Status: http.StatusOK}, Data: data}, nil
}
