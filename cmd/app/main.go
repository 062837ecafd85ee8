package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/atvirokodosprendimai/newsroom/internal/app"
	"github.com/atvirokodosprendimai/newsroom/internal/core/usecase"
	"github.com/atvirokodosprendimai/newsroom/internal/observability/logging"
)

const serviceName = "newsroom"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cmd := &cli.Command{
		Name:   serviceName,
		Usage:  "News CMS API with an audit trail of every write",
		Flags:  serveFlags(),
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Flags:  serveFlags(),
				Action: serve,
			},
			{
				Name:  "token",
				Usage: "Mint a bearer token for local testing",
				Flags: []cli.Flag{
					jwtSecretFlag(),
					&cli.StringFlag{
						Name:     "email",
						Required: true,
						Usage:    "Caller email; recorded as the actor of audited writes",
					},
					&cli.StringFlag{
						Name:  "role",
						Value: "Admin",
						Usage: "Admin, Staff or Lecturer",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Value: 12 * time.Hour,
						Usage: "Token lifetime",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					token, err := usecase.NewAuthService(c.String("jwt-secret")).IssueToken(c.String("email"), c.String("role"), c.Duration("ttl"))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.Root().Writer, token)
					return err
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func jwtSecretFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "jwt-secret",
		Sources: cli.EnvVars("NEWSROOM_JWT_SECRET"),
		Usage:   "HS256 key for bearer tokens",
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Value:   ":8080",
			Sources: cli.EnvVars("NEWSROOM_ADDR"),
			Usage:   "HTTP listen address",
		},
		&cli.StringFlag{
			Name:    "db-path",
			Value:   "./newsroom.sqlite",
			Sources: cli.EnvVars("NEWSROOM_DB_PATH"),
			Usage:   "SQLite file path",
		},
		&cli.StringFlag{
			Name:    "audit-db-path",
			Sources: cli.EnvVars("NEWSROOM_AUDIT_DB_PATH"),
			Usage:   "SQLite file for the audit log (defaults to --db-path)",
		},
		jwtSecretFlag(),
		&cli.StringFlag{
			Name:    "webhook-url",
			Sources: cli.EnvVars("NEWSROOM_WEBHOOK_URL"),
			Usage:   "Outbox event webhook target URL; events are logged when unset",
		},
		&cli.StringFlag{
			Name:    "webhook-secret",
			Sources: cli.EnvVars("NEWSROOM_WEBHOOK_SECRET"),
			Usage:   "HMAC-SHA256 signing secret for outbound webhook requests",
		},
		&cli.DurationFlag{
			Name:    "outbox-interval",
			Value:   2 * time.Second,
			Sources: cli.EnvVars("NEWSROOM_OUTBOX_INTERVAL"),
			Usage:   "Outbox polling interval",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Sources: cli.EnvVars("NEWSROOM_LOG_LEVEL"),
			Usage:   "debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:    "env",
			Value:   "development",
			Sources: cli.EnvVars("NEWSROOM_ENV"),
			Usage:   "Environment name attached to every log line",
		},
	}
}

func serve(ctx context.Context, c *cli.Command) error {
	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: c.String("env"),
		Level:       c.String("log-level"),
	})
	slog.SetDefault(logger)

	cfg := app.Config{
		Addr:           c.String("addr"),
		DBPath:         c.String("db-path"),
		AuditDBPath:    c.String("audit-db-path"),
		JWTSecret:      c.String("jwt-secret"),
		WebhookURL:     c.String("webhook-url"),
		WebhookSecret:  c.String("webhook-secret"),
		OutboxInterval: c.Duration("outbox-interval"),
		Logger:         logger,
	}

	server, closer, err := app.NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			logger.Error("close resources", "error", closeErr)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
