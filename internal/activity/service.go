package activity

import (
	"bytes"
	"context"
	"time"

	"githubActivityWidget/internal/logger"
	"githubActivityWidget/internal/model"
	"githubActivityWidget/internal/widget"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// sortable fixed-width UTC timestamps
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

type Renderer interface {
	Render(ctx context.Context, container *html.Node, opts widget.Options) (widget.Outcome, error)
}

type Service interface {
	Render(ctx context.Context, username string) (*model.Render, error)
	GetByID(ctx context.Context, id string) (*model.Render, error)
	GetRecent(ctx context.Context) ([]model.Render, error)
}

type service struct {
	repo   RepoInterface
	widget Renderer
	now    func() time.Time
}

func NewService(r RepoInterface, w Renderer) Service {
	return &service{repo: r, widget: w, now: time.Now}
}

// Fragment renders the widget for username into a fresh container and
// serialises it.
func Fragment(ctx context.Context, w Renderer, username string) (string, widget.Outcome, error) {
	container := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     atom.Div.String(),
		Attr:     []html.Attribute{{Key: atom.Class.String(), Val: "github-activity"}},
	}
	out, err := w.Render(ctx, container, widget.Options{Username: username})
	if err != nil {
		return "", out, err
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, container); err != nil {
		return "", out, err
	}
	return buf.String(), out, nil
}

func (s *service) Render(ctx context.Context, username string) (*model.Render, error) {
	fragment, out, err := Fragment(ctx, s.widget, username)
	if err != nil {
		return nil, err
	}

	rec := &model.Render{
		ID:        uuid.NewString(),
		Username:  username,
		Status:    out.Status,
		Pushes:    out.Pushes,
		HTML:      fragment,
		CreatedAt: s.now().UTC().Format(timeLayout),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		logger.Lg.Error("warn: render log store failed", zap.String("username", username), zap.Error(err))
	}
	return rec, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*model.Render, error) {
	return s.repo.GetRenderByID(ctx, id)
}

func (s *service) GetRecent(ctx context.Context) ([]model.Render, error) {
	return s.repo.GetRecentRenders(ctx)
}
