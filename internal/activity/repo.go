package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"githubActivityWidget/internal/logger"
	"githubActivityWidget/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	recentKey   = "render_recent_ids"
	recentLimit = 10
	// entries read back from sqlite are not tracked by the recent list
	fallbackTTL = 10 * time.Minute
)

var ErrRenderNotFound = errors.New("render not found")

type RepoInterface interface {
	Save(ctx context.Context, r *model.Render) error
	GetRenderByID(ctx context.Context, id string) (*model.Render, error)
	GetRecentRenders(ctx context.Context) ([]model.Render, error)
}

type Repo struct {
	db     *sql.DB
	Rdb    *redis.Client
	retain int
}

func NewRepo(db *sql.DB, rdb *redis.Client, retain int) *Repo {
	return &Repo{db: db, Rdb: rdb, retain: retain}
}

func renderKey(id string) string { return "render:" + id }

func (r *Repo) Save(ctx context.Context, rec *model.Render) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO renders
		(id, username, status, pushes, html, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Username, rec.Status, rec.Pushes, rec.HTML, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert render %s: %w", rec.ID, err)
	}
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM renders
		WHERE id NOT IN (
			SELECT id FROM renders
			ORDER BY created_at DESC
			LIMIT ?
		)`, r.retain); err != nil {
		logger.Lg.Warn("render retention", zap.Error(err))
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.Rdb.Set(ctx, renderKey(rec.ID), data, 0).Err(); err != nil {
		logger.Lg.Warn("redis set", zap.String("id", rec.ID), zap.Error(err))
		return nil
	}
	if err := r.Rdb.LPush(ctx, recentKey, rec.ID).Err(); err != nil {
		logger.Lg.Warn("redis lpush", zap.String("id", rec.ID), zap.Error(err))
		// nothing will evict an unindexed key
		if err := r.Rdb.Expire(ctx, renderKey(rec.ID), fallbackTTL).Err(); err != nil {
			logger.Lg.Warn("redis expire", zap.String("id", rec.ID), zap.Error(err))
		}
		return nil
	}

	// evict keys that fall off the recent list
	stale, err := r.Rdb.LRange(ctx, recentKey, recentLimit, -1).Result()
	if err != nil {
		logger.Lg.Warn("redis lrange", zap.Error(err))
	}
	for _, id := range stale {
		if err := r.Rdb.Del(ctx, renderKey(id)).Err(); err != nil {
			logger.Lg.Warn("redis del", zap.String("id", id), zap.Error(err))
		}
	}
	if err := r.Rdb.LTrim(ctx, recentKey, 0, recentLimit-1).Err(); err != nil {
		logger.Lg.Warn("redis ltrim", zap.Error(err))
	}

	return nil
}

func (r *Repo) GetRenderByID(ctx context.Context, id string) (*model.Render, error) {
	val, err := r.Rdb.Get(ctx, renderKey(id)).Result()
	if err == nil {
		var rec model.Render
		if err := json.Unmarshal([]byte(val), &rec); err == nil {
			return &rec, nil
		}
	} else if err != redis.Nil {
		logger.Lg.Warn("redis get", zap.String("id", id), zap.Error(err))
	}

	row := r.db.QueryRowContext(ctx, `
			SELECT id, username, status, pushes, html, created_at
			FROM renders WHERE id = ?`, id)
	rec, err := scanRender(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRenderNotFound
	}
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(rec)
	r.Rdb.Set(ctx, renderKey(id), data, fallbackTTL)
	return rec, nil
}

// GetRecentRenders returns up to ten renders, newest first.
func (r *Repo) GetRecentRenders(ctx context.Context) ([]model.Render, error) {
	ids, err := r.Rdb.LRange(ctx, recentKey, 0, recentLimit-1).Result()
	if err != nil {
		logger.Lg.Warn("redis lrange", zap.Error(err))
	}
	if err != nil || len(ids) == 0 {
		return r.recentFromDB(ctx)
	}

	renders := make([]model.Render, 0, len(ids))
	for _, id := range ids {
		rec, err := r.GetRenderByID(ctx, id)
		if errors.Is(err, ErrRenderNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		renders = append(renders, *rec)
	}
	return renders, nil
}

func (r *Repo) recentFromDB(ctx context.Context) ([]model.Render, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, status, pushes, html, created_at
		FROM renders ORDER BY created_at DESC LIMIT ?`, recentLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	renders := []model.Render{}
	for rows.Next() {
		rec, err := scanRender(rows)
		if err != nil {
			return nil, err
		}
		renders = append(renders, *rec)
	}
	return renders, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRender(s scanner) (*model.Render, error) {
	var rec model.Render
	err := s.Scan(&rec.ID, &rec.Username, &rec.Status, &rec.Pushes, &rec.HTML, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
