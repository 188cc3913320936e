package worker

import (
	"context"
	"sync"
	"time"

	"githubActivityWidget/internal/activity"
	"githubActivityWidget/internal/logger"

	"go.uber.org/zap"
)

func renderAll(ctx context.Context, svc activity.Service, usernames []string) {
	for _, u := range usernames {
		if ctx.Err() != nil {
			return
		}
		rec, err := svc.Render(ctx, u)
		if err != nil {
			logger.Lg.Error("watch render error", zap.String("username", u), zap.Error(err))
			continue
		}
		logger.Lg.Info("watch_render",
			zap.String("username", u),
			zap.String("id", rec.ID),
			zap.Int("status", rec.Status),
			zap.Int("pushes", rec.Pushes),
		)
	}
}

// Watch renders every username once immediately and then on each tick until
// ctx is cancelled.
func Watch(ctx context.Context, wg *sync.WaitGroup, svc activity.Service, usernames []string, interval time.Duration) {
	defer wg.Done()
	if len(usernames) == 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	renderAll(ctx, svc, usernames)
	for {
		select {
		case <-ctx.Done():
			logger.Lg.Info("Ticker stopping")
			return
		case <-ticker.C:
			renderAll(ctx, svc, usernames)
		}
	}
}
