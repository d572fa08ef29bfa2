package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"

	"github.com/dshills/mcpizza/internal/audit"
	"github.com/dshills/mcpizza/internal/config"
	"github.com/dshills/mcpizza/internal/gateway"
	"github.com/dshills/mcpizza/internal/logger"
	"github.com/dshills/mcpizza/internal/mcp"
)

func runServe(ctx context.Context, v *viper.Viper, configFile string) error {
	cfg, err := loadConfig(v, configFile)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Close() }()

	log.Info("MCPizza starting",
		logger.String("version", version),
		logger.String("build_mode", audit.BuildMode),
		logger.String("driver", audit.DriverName),
		logger.String("config", cfg.String()))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, err := openSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn("failed to close interaction log", logger.Err(err))
		}
	}()

	gw, err := gateway.NewDominosClient(gatewayConfig(cfg), log)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	if !cfg.Profile.IsEmpty() {
		log.Info("customer profile loaded", logger.String("profile", cfg.Profile.String()))
	}

	server, err := mcp.NewServer(mcp.Options{
		Gateway:  gw,
		Recorder: audit.NewRecorder(sink, log),
		Logger:   log,
		Profile:  cfg.Profile,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	err = server.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

// openSink builds the interaction log: the structured logger always, plus
// SQLite when audit is enabled
func openSink(ctx context.Context, cfg *config.Config, log logger.Logger) (audit.Sink, error) {
	logSink := audit.LogSink{Log: log.With(logger.String("component", "audit"))}
	if !cfg.Audit.Enabled {
		return logSink, nil
	}
	db, err := audit.OpenSQLite(ctx, cfg.Audit.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open interaction log: %w", err)
	}
	log.Info("interaction log opened", logger.String("path", cfg.Audit.DBPath))
	return audit.MultiSink{db, logSink}, nil
}

func gatewayConfig(cfg *config.Config) gateway.Config {
	gc := gateway.DefaultConfig()
	gc.BaseURL = cfg.API.BaseURL
	gc.UserAgent = cfg.API.UserAgent
	gc.Timeout = cfg.API.Timeout
	gc.Retry.MaxAttempts = cfg.API.MaxRetries
	gc.MenuCacheSize = cfg.MenuCache.Size
	gc.MenuCacheTTL = cfg.MenuCache.TTL
	return gc
}
