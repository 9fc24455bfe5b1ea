package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/zlovtnik/docgov/internal/config"
	"github.com/zlovtnik/docgov/internal/database"
	"github.com/zlovtnik/docgov/internal/governance/domain"
	govhandlers "github.com/zlovtnik/docgov/internal/governance/handlers"
	"github.com/zlovtnik/docgov/internal/governance/repository"
	govrouter "github.com/zlovtnik/docgov/internal/governance/router"
	"github.com/zlovtnik/docgov/internal/governance/service"
	"github.com/zlovtnik/docgov/internal/handlers"
	"github.com/zlovtnik/docgov/internal/router"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// auditRepository is what both the audit subscriber and the audit handler need
type auditRepository interface {
	Create(ctx context.Context, entry domain.AuditEntry) fp.Result[domain.AuditEntry]
	ListByDocument(ctx context.Context, id domain.DocumentID, offset, limit int) fp.Result[[]domain.AuditEntry]
}

type storage struct {
	documents repository.DocumentStore
	audit     auditRepository
	db        *sql.DB
	close     func()
}

// openStorage builds the document store for the configured driver
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverOracle:
		db, err := config.NewOracleDB(ctx, cfg.Storage.Oracle)
		if err != nil {
			return nil, err
		}
		return &storage{
			documents: repository.NewSQLStore(db, repository.DialectOracle),
			audit:     repository.NewAuditRepository(db, repository.DialectOracle),
			db:        db,
			close:     func() { db.Close() },
		}, nil

	case config.DriverPostgres:
		if err := database.Migrate(cfg.Storage.Postgres, logger); err != nil {
			return nil, err
		}
		db, closeDB, err := config.NewPostgresDB(ctx, cfg.Storage.Postgres)
		if err != nil {
			return nil, err
		}
		return &storage{
			documents: repository.NewSQLStore(db, repository.DialectPostgres),
			audit:     repository.NewAuditRepository(db, repository.DialectPostgres),
			db:        db,
			close:     closeDB,
		}, nil

	case config.DriverMemory:
		logger.Warn("using in-memory storage, documents are lost on restart")
		return &storage{
			documents: repository.NewMemoryStore(),
			audit:     repository.NewMemoryAuditRepository(),
			close:     func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

type expirySweeper interface {
	SweepExpiry(ctx context.Context) (int, error)
}

// startExpirySweep sweeps once, then on every tick until ctx is done. The
// returned func blocks until the loop has exited.
func startExpirySweep(ctx context.Context, sweeper expirySweeper, interval time.Duration, logger *slog.Logger) func() {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweep := func() {
			n, err := sweeper.SweepExpiry(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("expiry sweep failed", "error", err, "updated", n)
				return
			}
			if n > 0 {
				logger.Info("expiry sweep updated documents", "updated", n)
			}
		}

		// Catch up immediately on startup
		sweep()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep()
			}
		}
	}()
	return wg.Wait
}

func main() {
	// Load configuration first so we can use it for logger setup
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := config.SetupLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting docgov service",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
	)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := openStorage(connectCtx, cfg, logger)
	connectCancel()
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	// Note: store.close() is called explicitly during graceful shutdown

	documents := store.documents
	if cfg.Governance.CacheSize > 0 {
		documents = repository.NewCachedStore(documents, cfg.Governance.CacheSize, cfg.Governance.CacheTTL)
	}

	// Side effects run after commit on the dispatcher
	dispatcher := service.NewDispatcher(service.DispatcherConfig{
		Workers:     cfg.Dispatch.Workers,
		QueueSize:   cfg.Dispatch.QueueSize,
		MaxAttempts: cfg.Dispatch.MaxAttempts,
		RetryDelay:  cfg.Dispatch.RetryDelay,
	}, logger,
		service.NewAuditSubscriber(store.audit),
		service.NewNotificationSubscriber(service.NewLogNotifier(logger)),
	)

	// Not tied to ctx so queued events can still be delivered during shutdown
	dispatcher.Start(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docSvc := service.NewDocumentService(documents, service.Options{
		NearExpiryDays: cfg.Governance.NearExpiryDays,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	// Initialize handlers
	var pinger handlers.Pinger
	if store.db != nil {
		pinger = store.db
	}
	r := router.NewRouter(
		cfg.JWT.Secret,
		cfg.CORS.AllowedOrigins,
		logger,
		handlers.NewHealthHandler(pinger, logger),
		govrouter.HandlerSet{
			DocumentHandler: govhandlers.NewDocumentHandler(docSvc, logger),
			AuditHandler:    govhandlers.NewAuditHandler(store.audit, docSvc, logger),
		},
	)

	// Create HTTP server
	server := &http.Server{
		Addr:           cfg.Server.Addr(),
		Handler:        r.Setup(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Start background expiry sweep
	waitSweep := startExpirySweep(ctx, docSvc, cfg.Governance.ExpirySweepInterval, logger)

	// Error channel for server listen errors
	serverErrCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
		logger.Info("received shutdown signal")
	case err := <-serverErrCh:
		logger.Error("server listen failed", "error", err)
		exitCode = 1
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		exitCode = 1
	}

	// Stop the sweep, then drain queued side effects before closing storage
	cancel()
	waitSweep()
	dispatcher.Stop()
	store.close()

	logger.Info("server stopped")

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
