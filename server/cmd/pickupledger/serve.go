package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pickup-ledger/server/internal/api"
	"pickup-ledger/server/internal/config"
	"pickup-ledger/server/internal/history"
	"pickup-ledger/server/internal/ledger"
	"pickup-ledger/server/internal/logging"
	"pickup-ledger/server/internal/metrics"
	"pickup-ledger/server/internal/revision"
	"pickup-ledger/server/internal/roster"
	"pickup-ledger/server/internal/storage"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "server/configs/config.yaml", "config file path")
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	students, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		return err
	}
	names := roster.New(students)
	logger.Info("roster loaded", zap.String("path", cfg.Roster.Path), zap.Int("students", len(students)))

	if cfg.Roster.Watch {
		go func() {
			if err := roster.Watch(ctx, cfg.Roster.Path, names, logger); err != nil {
				logger.Error("roster watcher stopped", zap.Error(err))
			}
		}()
	}

	store, revisions, closeStorage, err := openStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStorage()

	m := metrics.New()
	l := ledger.New(store, revisions, names, ledger.WithLogger(logger), ledger.WithMetrics(m))

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewServer(l, names, api.Options{
			Metrics:        m,
			Logger:         logger,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pickupledger server listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStorage(cfg config.StorageConfig) (history.Store, revision.Store, func(), error) {
	if cfg.Driver == config.DriverMemory {
		return history.NewInMemoryStore(), revision.NewInMemoryStore(), func() {}, nil
	}

	db, err := storage.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, nil, err
	}
	return history.NewSQLiteStore(db), revision.NewSQLiteStore(db), func() { _ = db.Close() }, nil
}
