package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/fndash/internal/config"
	"github.com/rickgao/fndash/internal/connection"
	"github.com/rickgao/fndash/internal/feed"
	"github.com/rickgao/fndash/internal/logging"
)

func newFeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Follow the live activity feed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "page-url",
				Usage:   "URL the dashboard is served from; picks ws/wss and the feed host",
				Sources: cli.EnvVars("FNDASH_PAGE_URL"),
			},
			&cli.BoolFlag{
				Name:    "dev",
				Usage:   "Development build: connect to the fixed dev host",
				Sources: cli.EnvVars("FNDASH_DEV"),
			},
			&cli.StringFlag{
				Name:  "dev-host",
				Usage: "Backend host:port used with --dev",
			},
			&cli.StringFlag{
				Name:  "reconnect",
				Usage: "Reconnect strategy (fixed, exponential)",
			},
			&cli.BoolFlag{
				Name:  "stop-on-disconnect",
				Usage: "Do not reconnect after an explicit disconnect",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Exit after this many messages (0 = follow forever)",
			},
			&cli.DurationFlag{
				Name:  "status-interval",
				Usage: "How often to log the connection status (0 = never)",
				Value: 30 * time.Second,
			},
		},
		Action: runFeed,
	}
}

// applyFeedFlags copies feed command flags onto cfg.
func applyFeedFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("page-url") {
		cfg.Feed.PageURL = cmd.String("page-url")
	}
	if cmd.IsSet("dev") {
		cfg.Feed.Development = cmd.Bool("dev")
	}
	if cmd.IsSet("dev-host") {
		cfg.Feed.DevHost = cmd.String("dev-host")
	}
	if cmd.IsSet("reconnect") {
		cfg.Feed.Reconnect.Strategy = cmd.String("reconnect")
	}
	if cmd.IsSet("stop-on-disconnect") {
		cfg.Feed.StopOnDisconnect = cmd.Bool("stop-on-disconnect")
	}
}

// newManagerConfig translates the feed section into a connection manager config.
func newManagerConfig(fc config.FeedConfig) (connection.ManagerConfig, error) {
	policy, err := connection.NewPolicy(
		fc.Reconnect.Strategy,
		fc.Reconnect.Delay,
		fc.Reconnect.MaxDelay,
		fc.Reconnect.MaxAttempts,
	)
	if err != nil {
		return connection.ManagerConfig{}, err
	}

	mcfg := connection.DefaultManagerConfig()
	mcfg.Endpoint = connection.Endpoint{
		PageURL:     fc.PageURL,
		Development: fc.Development,
		DevHost:     fc.DevHost,
		Path:        fc.Path,
	}
	mcfg.Client.PingTimeout = fc.PingTimeout
	mcfg.Client.BufferSize = fc.BufferSize
	mcfg.Reconnect = policy
	mcfg.StopOnDisconnect = fc.StopOnDisconnect
	return mcfg, nil
}

func runFeed(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	mcfg, err := newManagerConfig(cfg.Feed)
	if err != nil {
		return err
	}

	mgr, err := connection.NewManager(mcfg, logging.WithModule(logger, "connection"))
	if err != nil {
		return err
	}

	queue := feed.NewQueue[feed.Message](64)
	history, err := feed.NewLog(cfg.Feed.History, logging.WithModule(logger, "feed"), feed.WithSink(queue))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dispose := mgr.OnMessage(history.Handle)
	mgr.Connect()
	logger.Info("following feed", "url", mgr.Stats().URL)

	g, gctx := errgroup.WithContext(ctx)

	// Printer: drains the queue so a slow terminal never stalls dispatch.
	g.Go(func() error {
		limit := int(cmd.Int("limit"))
		printed := 0
		for {
			msg, ok := queue.Receive()
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stdout, formatMessage(msg))
			printed++
			if limit > 0 && printed >= limit {
				cancel()
				return nil
			}
		}
	})

	if interval := cmd.Duration("status-interval"); interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					logger.Info(formatStats(mgr.Stats()))
				}
			}
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		dispose()
		mgr.Disconnect()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		err := mgr.Close(shutdownCtx)
		queue.Close()

		logger.Info("feed stopped", "received", history.Total())
		return err
	})

	return g.Wait()
}
