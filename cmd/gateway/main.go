// cmd/gateway/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"gemini-gateway/internal/common/config"
	"gemini-gateway/internal/common/llm"
	"gemini-gateway/internal/common/logger"
	"gemini-gateway/internal/common/observability"
	"gemini-gateway/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console", "")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting gemini gateway...",
		zap.String("environment", cfg.App.Environment),
		zap.String("model", cfg.GenAI.Model),
		zap.Int("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name, log)
	defer func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			zapLog.Warn("observability shutdown failed", zap.Error(err))
		}
	}()

	tracing, err := observability.SetupTracing(ctx, cfg.App.Name, observability.TracingOptions{
		Enabled:  cfg.Tracing.Enabled,
		Endpoint: cfg.Tracing.Endpoint,
		Writer:   os.Stdout,
	})
	if err != nil {
		zapLog.Fatal("tracing setup failed", zap.Error(err))
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			zapLog.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	// One client for the whole process, injected into every handler.
	gemini, err := llm.NewGeminiClient(ctx, llm.Config{
		APIKey:  cfg.GenAI.APIKey,
		Model:   cfg.GenAI.Model,
		Timeout: config.GetDuration(cfg.GenAI.Timeout),
	})
	if err != nil {
		zapLog.Fatal("gemini client init failed", zap.Error(err))
	}
	defer gemini.Close()

	srv, err := server.New(server.Options{
		Config:        cfg,
		Generator:     gemini,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("server init failed", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		zapLog.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("Gemini gateway stopped gracefully")
}
