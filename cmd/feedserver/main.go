// Command feedserver is a development backend for fndash. It serves the
// function catalog and the live activity feed, simulates trigger activity and
// broadcasts every line read from stdin to connected feed clients.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/fndash/internal/catalog"
	"github.com/rickgao/fndash/internal/config"
	"github.com/rickgao/fndash/internal/hub"
	"github.com/rickgao/fndash/internal/logging"
	"github.com/rickgao/fndash/internal/server"
	"github.com/rickgao/fndash/internal/version"
)

func main() {
	cmd := &cli.Command{
		Name:    "feedserver",
		Usage:   "Serve a function catalog and live feed for local development",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (defaults only when empty)",
				Sources: cli.EnvVars("FNDASH_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "listen",
				Usage:   "Address to listen on",
				Sources: cli.EnvVars("FEEDSERVER_LISTEN"),
			},
			&cli.StringFlag{
				Name:  "definitions",
				Usage: "Function definitions file",
			},
			&cli.StringFlag{
				Name:  "function-dir",
				Usage: "Directory holding <name>_function.py sources",
			},
			&cli.BoolFlag{
				Name:  "no-stdin",
				Usage: "Do not broadcast lines read from stdin",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadWithDefaults(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.IsSet("listen") {
		cfg.Server.Listen = cmd.String("listen")
	}
	if cmd.IsSet("definitions") {
		cfg.Server.Definitions = cmd.String("definitions")
	}
	if cmd.IsSet("function-dir") {
		cfg.Server.FunctionDir = cmd.String("function-dir")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting feedserver",
		"version", version.Version,
		"commit", version.Commit,
		"listen", cfg.Server.Listen,
	)

	defs, err := catalog.LoadDefinitions(cfg.Server.Definitions, cfg.Server.FunctionDir)
	if err != nil {
		return err
	}
	logger.Info("definitions loaded", "functions", len(defs.Functions), "skipped", len(defs.Skipped))

	var activity *server.Activity
	feedHub := hub.New(logging.WithModule(logger, "hub"),
		hub.WithGreeting(func() []string { return activity.SetupLog() }),
	)
	activity = server.NewActivity(feedHub, logging.WithModule(logger, "activity"))
	activity.Setup(defs)

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           server.New(defs.Functions, feedHub, activity, logging.WithModule(logger, "server")).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Server.Listen)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	activity.Start()

	if !cmd.Bool("no-stdin") {
		// Not part of the group: a blocked stdin read must not hold up shutdown.
		go relay(os.Stdin, feedHub, logger)
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		activity.Stop()
		feedHub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// relay broadcasts every line of r until EOF.
func relay(r io.Reader, b server.Broadcaster, logger *slog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		n := b.Broadcast(line)
		logger.Debug("relayed line", "clients", n)
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("stdin relay stopped", "error", err)
	}
}
