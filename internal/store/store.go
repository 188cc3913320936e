package store

import (
	"context"
	"database/sql"
	"fmt"

	"githubActivityWidget/internal/config"
	"githubActivityWidget/internal/logger"

	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const driver = "sqlite3"

func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("sql open %s: %w", path, err)
	}
	if _, err := CreateTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create renders table: %w", err)
	}
	return db, nil
}

func CreateTable(db *sql.DB) (sql.Result, error) {
	sqlstmt := `CREATE TABLE IF NOT EXISTS renders (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		status INTEGER NOT NULL,
		pushes INTEGER NOT NULL,
		html TEXT NOT NULL,
		created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS renders_created_at ON renders (created_at);`
	return db.Exec(sqlstmt)
}

// NewRedis returns a client for cfg. An unreachable server is logged, not
// fatal: the render log falls back to sqlite.
func NewRedis(ctx context.Context, cfg config.StoreConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Lg.Warn("redis ping", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return rdb
}
