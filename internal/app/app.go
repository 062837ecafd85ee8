package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/atvirokodosprendimai/newsroom/internal/adapters/events"
	"github.com/atvirokodosprendimai/newsroom/internal/adapters/httpapi"
	sqliteadapter "github.com/atvirokodosprendimai/newsroom/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/newsroom/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/newsroom/internal/core/ports"
	"github.com/atvirokodosprendimai/newsroom/internal/core/usecase"
	"github.com/atvirokodosprendimai/newsroom/internal/observability/metrics"
	"github.com/atvirokodosprendimai/newsroom/migrations"
)

const outboxBatchSize = 100

type Config struct {
	Addr   string
	DBPath string
	// AuditDBPath defaults to DBPath. A different path keeps the audit log in
	// its own database file.
	AuditDBPath    string
	JWTSecret      string
	WebhookURL     string
	WebhookSecret  string
	OutboxInterval time.Duration
	Logger         *slog.Logger
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.JWTSecret == "" {
		return nil, nil, fmt.Errorf("jwt secret is required")
	}

	db, err := openMigrated(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, nil, err
	}
	closers := resourceCloser{closers: []io.Closer{db}}

	auditDB := db
	if separateAuditDB(cfg.DBPath, cfg.AuditDBPath) {
		auditDB, err = openMigrated(ctx, cfg.AuditDBPath, logger)
		if err != nil {
			_ = closers.Close()
			return nil, nil, fmt.Errorf("audit store: %w", err)
		}
		closers.closers = append(closers.closers, auditDB)
	}

	metrics.MustRegister()

	accountRepo := sqliteadapter.NewAccountRepository(db)
	categoryRepo := sqliteadapter.NewCategoryRepository(db)
	tagRepo := sqliteadapter.NewTagRepository(db)
	articleRepo := sqliteadapter.NewArticleRepository(db)
	outboxRepo := sqliteadapter.NewOutboxRepository(db)
	auditRepo := sqliteadapter.NewAuditRepository(auditDB)

	auditService := usecase.NewAuditService(auditRepo)
	services := httpapi.Services{
		Accounts:   usecase.NewAccountService(accountRepo, auditService, logger),
		Categories: usecase.NewCategoryService(categoryRepo, auditService, logger),
		Tags:       usecase.NewTagService(tagRepo, auditService, logger),
		Articles:   usecase.NewArticleService(articleRepo, categoryRepo, accountRepo, auditService, logger),
		Audit:      auditService,
		Auth:       usecase.NewAuthService(cfg.JWTSecret),
	}

	handler, err := httpapi.NewHandler(services, logger)
	if err != nil {
		_ = closers.Close()
		return nil, nil, fmt.Errorf("build http handler: %w", err)
	}

	dispatcher := usecase.NewOutboxDispatcher(outboxRepo, newPublisher(cfg, logger), logger, cfg.OutboxInterval, outboxBatchSize)
	dispatcher.Start(context.Background())
	// The dispatcher goes first so it stops before the databases close.
	closers.closers = append([]io.Closer{dispatcher}, closers.closers...)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, closers, nil
}

func openMigrated(ctx context.Context, path string, logger *slog.Logger) (*gormsqlite.DB, error) {
	db, err := gormsqlite.Open(path, logger)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(ctx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func separateAuditDB(dbPath, auditPath string) bool {
	if auditPath == "" {
		return false
	}
	return filepath.Clean(auditPath) != filepath.Clean(dbPath)
}

func newPublisher(cfg Config, logger *slog.Logger) ports.EventPublisher {
	if cfg.WebhookURL != "" {
		return events.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret, 0)
	}
	return events.NewLogPublisher(logger)
}
