// Command fndash is a terminal dashboard for a serverless function backend:
// it lists the configured functions and follows the live activity feed.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/rickgao/fndash/internal/config"
	"github.com/rickgao/fndash/internal/logging"
)

func main() {
	cmd := &cli.Command{
		Name:                  "fndash",
		Usage:                 "Inspect functions and follow their live activity feed",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (defaults only when empty)",
				Sources: cli.EnvVars("FNDASH_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Backend base URL",
				Sources: cli.EnvVars("FNDASH_API_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Commands: []*cli.Command{
			newFunctionsCommand(),
			newHealthCommand(),
			newFeedCommand(),
			newVersionCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("api-url") {
		cfg.API.BaseURL = cmd.String("api-url")
	}
	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}
	applyFeedFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// setup loads config and installs the logger. Logs go to stderr so command
// output stays clean.
func setup(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, logger, nil
}
