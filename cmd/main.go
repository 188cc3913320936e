package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"githubActivityWidget/internal/activity"
	"githubActivityWidget/internal/config"
	"githubActivityWidget/internal/github"
	"githubActivityWidget/internal/handlers"
	"githubActivityWidget/internal/logger"
	"githubActivityWidget/internal/middleware"
	"githubActivityWidget/internal/store"
	"githubActivityWidget/internal/widget"
	"githubActivityWidget/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	return newApp().Run(ctx, args)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "github-activity",
		Usage: "Render a GitHub user's recent push activity as HTML",
		Flags: generalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the widget and the render log over HTTP",
				Flags:  serveFlags(),
				Action: serve,
			},
			{
				Name:      "render",
				Usage:     "Print the widget fragment for USERNAME to stdout",
				ArgsUsage: "USERNAME",
				Action:    render,
			},
		},
	}
}

func setup(cmd *cli.Command) (*config.Config, *widget.Widget, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.InitLogger(cfg.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	client, err := github.NewClient(github.Options{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.BaseURL,
		Timeout: cfg.GitHub.Timeout.Duration,
		PerPage: cfg.GitHub.PerPage,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, widget.New(client, cfg.AvatarBaseURL), nil
}

func render(ctx context.Context, cmd *cli.Command) error {
	username := cmd.Args().First()
	if username == "" {
		return errors.New("render: USERNAME is required")
	}
	_, w, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Lg.Sync()

	fragment, _, err := activity.Fragment(ctx, w, username)
	if err != nil {
		return fmt.Errorf("render %s: %w", username, err)
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, fragment)
	return err
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, w, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Lg.Sync()

	db, err := store.OpenDB(cfg.Store.SQLitePath)
	if err != nil {
		return err
	}
	rdb := store.NewRedis(ctx, cfg.Store)
	defer rdb.Close()

	r := activity.NewRepo(db, rdb, cfg.Store.Retain)
	svc := activity.NewService(r, w)

	ctx, cancel := context.WithCancel(ctx)
	wg := &sync.WaitGroup{}

	wg.Add(1)
	go worker.Watch(ctx, wg, svc, cfg.Watch.Usernames, cfg.Watch.Interval.Duration)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(middleware.RequestLogger())
	handlers.NewHTTP(svc).Register(app)

	listenErr := make(chan error, 1)
	go func() {
		logger.Lg.Info("listening", zap.String("addr", cfg.Addr))
		if err := app.Listen(cfg.Addr); err != nil {
			listenErr <- err
		}
	}()

	if err := GracefulShutdown(app, db, cancel, wg, listenErr); err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	logger.Lg.Info("Shutdown complete")
	return nil
}

type closer interface {
	Close() error
}

// GracefulShutdown blocks until SIGINT/SIGTERM or a listen failure, then stops
// the watcher, the server and the database. The listen error, if any, is returned.
func GracefulShutdown(app *fiber.App, db closer, cancel context.CancelFunc, wg *sync.WaitGroup, listenErr <-chan error) error {
	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigchan)

	var err error
	select {
	case <-sigchan:
		logger.Lg.Info("Shutdown sig rcv")
	case err = <-listenErr:
		logger.Lg.Error("Server stopped", zap.Error(err))
	}
	cancel()
	if err := app.Shutdown(); err != nil {
		logger.Lg.Error("Server shutdown error", zap.Error(err))
	}
	wg.Wait()
	if err := db.Close(); err != nil {
		logger.Lg.Error("db close error", zap.Error(err))
	}
	return err
}
