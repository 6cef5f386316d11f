package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/rickgao/fndash/internal/api"
	"github.com/rickgao/fndash/internal/catalog"
	"github.com/rickgao/fndash/internal/config"
	"github.com/rickgao/fndash/internal/logging"
	"github.com/rickgao/fndash/internal/poller"
)

func newAPIClient(cfg *config.Config, logger *slog.Logger) *api.Client {
	return api.NewClient(cfg.API.BaseURL,
		api.WithLogger(logging.WithModule(logger, "api")),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryWait),
	)
}

func newFunctionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "functions",
		Aliases: []string{"ls"},
		Usage:   "List configured functions and their triggers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "code",
				Usage: "Print each function's source",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the raw catalog as JSON",
			},
			&cli.DurationFlag{
				Name:  "watch",
				Usage: "Keep refreshing the catalog at this interval and reprint it on change",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			client := newAPIClient(cfg, logger)

			if interval := cmd.Duration("watch"); interval > 0 {
				return watchFunctions(ctx, client, interval, cmd.Bool("code"), logger)
			}

			fns, err := client.ListFunctions(ctx)
			if err != nil {
				return fmt.Errorf("could not load functions from %s: %w", cfg.API.BaseURL, err)
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(fns)
			}

			if err := renderFunctions(os.Stdout, fns, time.Now()); err != nil {
				return err
			}
			if cmd.Bool("code") {
				renderCode(os.Stdout, fns)
			}
			return nil
		},
	}
}

func newHealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check that the backend is up",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			client := newAPIClient(cfg, logger)

			status, err := client.Health(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s: %s\n", cfg.API.BaseURL, status.Status)
			if !status.Healthy() {
				return cli.Exit("backend is not healthy", 1)
			}
			return nil
		},
	}
}

// watchFunctions reprints the catalog every time it changes until interrupted.
func watchFunctions(ctx context.Context, client *api.Client, interval time.Duration, showCode bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := poller.ChangeHandlerFunc(func(fns []catalog.Function) {
		fmt.Fprintf(os.Stdout, "\n# %s\n", time.Now().Format(timeLayout))
		if err := renderFunctions(os.Stdout, fns, time.Now()); err != nil {
			logger.Warn("render failed", "error", err)
		}
		if showCode {
			renderCode(os.Stdout, fns)
		}
	})

	p := poller.New(poller.Config{Interval: interval, Timeout: interval},
		client, handler, logging.WithModule(logger, "poller"))
	if err := p.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Stop(shutdownCtx)
}
