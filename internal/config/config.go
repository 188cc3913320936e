package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/BurntSushi/toml"
)

type (
	Config struct {
		Addr          string `toml:"addr"`
		LogLevel      string `toml:"log_level"`
		AvatarBaseURL string `toml:"avatar_base_url"`

		GitHub GitHubConfig `toml:"github"`
		Store  StoreConfig  `toml:"store"`
		Watch  WatchConfig  `toml:"watch"`
	}

	GitHubConfig struct {
		Token   string   `toml:"token"`
		BaseURL string   `toml:"base_url"`
		Timeout Duration `toml:"timeout"`
		PerPage int      `toml:"per_page"`
	}

	StoreConfig struct {
		SQLitePath    string `toml:"sqlite_path"`
		Retain        int    `toml:"retain"`
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
	}

	WatchConfig struct {
		Usernames []string `toml:"usernames"`
		Interval  Duration `toml:"interval"`
	}
)

// Duration decodes TOML strings such as "10s" or "3m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

const (
	DefaultAddr          = ":3000"
	DefaultAvatarBaseURL = "https://gravatar.com/avatar/"
	DefaultGitHubURL     = "https://api.github.com/"
)

func Default() *Config {
	return &Config{
		Addr:          DefaultAddr,
		LogLevel:      "info",
		AvatarBaseURL: DefaultAvatarBaseURL,
		GitHub: GitHubConfig{
			BaseURL: DefaultGitHubURL,
			Timeout: Duration{10 * time.Second},
			PerPage: 30,
		},
		Store: StoreConfig{
			SQLitePath: "./activity.db",
			Retain:     30,
			RedisAddr:  "localhost:6379",
		},
		Watch: WatchConfig{
			Interval: Duration{3 * time.Minute},
		},
	}
}

// Load overlays the file at path on top of Default. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %q does not exist", path)
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error with config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must be set")
	}
	if _, err := url.Parse(c.AvatarBaseURL); err != nil || c.AvatarBaseURL == "" {
		return fmt.Errorf("invalid avatar_base_url %q", c.AvatarBaseURL)
	}
	u, err := url.Parse(c.GitHub.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid github.base_url %q", c.GitHub.BaseURL)
	}
	if c.GitHub.Timeout.Duration < 0 {
		return errors.New("github.timeout must not be negative")
	}
	if c.GitHub.PerPage < 1 || c.GitHub.PerPage > 100 {
		return fmt.Errorf("github.per_page must be within 1..100, got %d", c.GitHub.PerPage)
	}
	if c.Store.SQLitePath == "" {
		return errors.New("store.sqlite_path must be set")
	}
	if c.Store.Retain < 1 {
		return fmt.Errorf("store.retain must be positive, got %d", c.Store.Retain)
	}
	if len(c.Watch.Usernames) > 0 && c.Watch.Interval.Duration <= 0 {
		return errors.New("watch.interval must be positive when usernames are set")
	}
	return nil
}
