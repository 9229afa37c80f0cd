// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/HusseinTALL/GARBAKING-POS-sub002/cmd/app/commands"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/app"
	"github.com/HusseinTALL/GARBAKING-POS-sub002/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "QR payment confirmation service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server, metrics server and outbox notifier",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-device",
				Usage: "Register a new scanning device and print its secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable device name",
					},
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Device type (handheld_scanner, pos_terminal or manager_tablet)",
					},
					&cli.StringFlag{
						Name:    "terminal-id",
						Aliases: []string{"T"},
						Value:   "",
						Usage:   "Terminal the device is attached to (e.g., counter-1)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					logger := container.Logger()
					defer commands.CloseContainer(container, logger)

					devices, err := container.DeviceUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize device use case: %w", err)
					}

					return commands.RunCreateDevice(
						ctx,
						devices,
						logger,
						cmd.String("name"),
						cmd.String("type"),
						cmd.String("terminal-id"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "deactivate-device",
				Usage: "Deactivate a device so it can no longer authenticate",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Device ID (UUID)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					logger := container.Logger()
					defer commands.CloseContainer(container, logger)

					devices, err := container.DeviceUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize device use case: %w", err)
					}

					return commands.RunDeactivateDevice(ctx, devices, logger, cmd.String("id"), commands.DefaultIO())
				},
			},
			{
				Name:  "clean-expired-tokens",
				Usage: "Delete token records older than the configured retention period",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"n"},
						Value:   false,
						Usage:   "Show how many tokens would be deleted without deleting",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					logger := container.Logger()
					defer commands.CloseContainer(container, logger)

					issuer, err := container.IssuerUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize issuer use case: %w", err)
					}

					tokens, err := container.TokenRepository()
					if err != nil {
						return fmt.Errorf("failed to initialize token repository: %w", err)
					}

					return commands.RunCleanExpiredTokens(
						ctx,
						issuer,
						tokens,
						logger,
						os.Stdout,
						cfg.TokenRetentionDays,
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "security-events",
				Usage: "List failed or suspicious scan and confirm attempts",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "window-minutes",
						Aliases: []string{"w"},
						Value:   60,
						Usage:   "Trailing window to inspect, in minutes",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Value:   100,
						Usage:   "Maximum number of events to list",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					container := app.NewContainer(config.Load())
					logger := container.Logger()
					defer commands.CloseContainer(container, logger)

					recorder, err := container.RecorderUseCase()
					if err != nil {
						return fmt.Errorf("failed to initialize recorder use case: %w", err)
					}

					return commands.RunSecurityEvents(
						ctx,
						recorder,
						logger,
						os.Stdout,
						cmd.Int("window-minutes"),
						cmd.Int("limit"),
						cmd.String("format"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
