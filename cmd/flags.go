package main

import (
	"fmt"

	"githubActivityWidget/internal/config"

	"github.com/urfave/cli/v3"
)

const (
	FlagConfig     = "config"
	EnvConfig      = "ACTIVITY_CONFIG"
	FlagLogLevel   = "log-level"
	EnvLogLevel    = "ACTIVITY_LOG_LEVEL"
	FlagToken      = "token"
	EnvToken       = "ACTIVITY_GITHUB_TOKEN"
	FlagGitHubURL  = "github-url"
	EnvGitHubURL   = "ACTIVITY_GITHUB_URL"
	FlagAvatarURL  = "avatar-url"
	EnvAvatarURL   = "ACTIVITY_AVATAR_URL"
	FlagAddr       = "addr"
	EnvAddr        = "ACTIVITY_ADDR"
	FlagDB         = "db"
	EnvDB          = "ACTIVITY_DB"
	FlagRedis      = "redis"
	EnvRedis       = "ACTIVITY_REDIS_ADDR"
	FlagWatch      = "watch"
	EnvWatch       = "ACTIVITY_WATCH"
	FlagWatchEvery = "watch-interval"
	EnvWatchEvery  = "ACTIVITY_WATCH_INTERVAL"
)

func generalFlags() []cli.Flag {
	category := "general"

	return []cli.Flag{
		&cli.StringFlag{
			Name:     FlagConfig,
			Aliases:  []string{"c"},
			Category: category,
			Sources:  cli.EnvVars(EnvConfig),
			Usage:    "Read settings from the TOML `FILE`.",
		},
		&cli.StringFlag{
			Name:     FlagLogLevel,
			Category: category,
			Sources:  cli.EnvVars(EnvLogLevel),
			Usage:    "Log `LEVEL` (debug, info, warn, error).",
		},
		&cli.StringFlag{
			Name:     FlagToken,
			Category: "github",
			Sources:  cli.EnvVars(EnvToken, "GITHUB_TOKEN"),
			Usage:    "Optional GitHub `TOKEN` for a higher rate limit.",
		},
		&cli.StringFlag{
			Name:     FlagGitHubURL,
			Category: "github",
			Sources:  cli.EnvVars(EnvGitHubURL),
			Usage:    "GitHub REST API base `URL`.",
		},
		&cli.StringFlag{
			Name:     FlagAvatarURL,
			Category: "render",
			Sources:  cli.EnvVars(EnvAvatarURL),
			Usage:    "Gravatar-compatible avatar base `URL`.",
		},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     FlagAddr,
			Category: "server",
			Sources:  cli.EnvVars(EnvAddr),
			Usage:    "Listen `ADDRESS`.",
		},
		&cli.StringFlag{
			Name:     FlagDB,
			Category: "store",
			Sources:  cli.EnvVars(EnvDB),
			Usage:    "SQLite render log `PATH`.",
		},
		&cli.StringFlag{
			Name:     FlagRedis,
			Category: "store",
			Sources:  cli.EnvVars(EnvRedis),
			Usage:    "Redis `ADDRESS` for the recent render index.",
		},
		&cli.StringSliceFlag{
			Name:     FlagWatch,
			Aliases:  []string{"w"},
			Category: "watch",
			Sources:  cli.EnvVars(EnvWatch),
			Usage:    "`USERNAME` to re-render periodically (repeatable).",
		},
		&cli.DurationFlag{
			Name:     FlagWatchEvery,
			Category: "watch",
			Sources:  cli.EnvVars(EnvWatchEvery),
			Usage:    "Interval between watch renders.",
		},
	}
}

// loadConfig reads the config file, then applies any flag that was set.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String(FlagConfig))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet(FlagLogLevel) {
		cfg.LogLevel = cmd.String(FlagLogLevel)
	}
	if cmd.IsSet(FlagToken) {
		cfg.GitHub.Token = cmd.String(FlagToken)
	}
	if cmd.IsSet(FlagGitHubURL) {
		cfg.GitHub.BaseURL = cmd.String(FlagGitHubURL)
	}
	if cmd.IsSet(FlagAvatarURL) {
		cfg.AvatarBaseURL = cmd.String(FlagAvatarURL)
	}
	if cmd.IsSet(FlagAddr) {
		cfg.Addr = cmd.String(FlagAddr)
	}
	if cmd.IsSet(FlagDB) {
		cfg.Store.SQLitePath = cmd.String(FlagDB)
	}
	if cmd.IsSet(FlagRedis) {
		cfg.Store.RedisAddr = cmd.String(FlagRedis)
	}
	if cmd.IsSet(FlagWatch) {
		cfg.Watch.Usernames = cmd.StringSlice(FlagWatch)
	}
	if cmd.IsSet(FlagWatchEvery) {
		cfg.Watch.Interval = config.Duration{Duration: cmd.Duration(FlagWatchEvery)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}
