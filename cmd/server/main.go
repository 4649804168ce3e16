package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/YaswanthVanama123/enviromaster-sub004/internal/config"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/db"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/logging"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/migrations"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/seed"
	"github.com/YaswanthVanama123/enviromaster-sub004/internal/services"
)

func main() {
	cfg := config.Load()
	decimal.MarshalJSONWithoutQuotes = true

	logger := logging.Must(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Output:      "stderr",
		Development: cfg.IsDev(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		return fmt.Errorf("run database migrations: %w", err)
	}

	catalog, err := loadCatalog(cfg.RulesFile)
	if err != nil {
		return err
	}
	if cfg.RulesFile != "" {
		logger.Info("applied service rules", zap.String("path", cfg.RulesFile))
	}

	if cfg.IsDev() {
		stats, err := seed.Run(ctx, database, seed.Config{Catalog: catalog})
		if err != nil {
			return fmt.Errorf("seed service configs: %w", err)
		}
		logger.Info("seeded service configs", zap.Int("inserts", stats.Inserts), zap.Int("updates", stats.Updates))
	}

	srv := newServer(database, catalog, cfg.GlobalContractMonths, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// loadCatalog returns the built-in catalog with the rules file at path applied, if any.
func loadCatalog(path string) (*services.Catalog, error) {
	catalog := services.Default()
	if path == "" {
		return catalog, nil
	}
	rf, err := services.LoadRules(path)
	if err != nil {
		return nil, fmt.Errorf("load rules file: %w", err)
	}
	if err := catalog.Apply(rf); err != nil {
		return nil, fmt.Errorf("apply rules file: %w", err)
	}
	return catalog, nil
}
