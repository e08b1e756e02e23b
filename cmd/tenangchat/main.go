package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TenangChat/internal/archive"
	"TenangChat/internal/audio"
	"TenangChat/internal/config"
	"TenangChat/internal/provider"
	"TenangChat/internal/server"
	"TenangChat/internal/session"
	"TenangChat/internal/telemetry"
	"TenangChat/internal/therapy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tenangchat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := telemetry.InitLogger(cfg.LogDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, meter, telemetryCleanup, err := telemetry.InitTelemetry(ctx, cfg.LogDir)
	if err != nil {
		return err
	}
	defer telemetryCleanup()

	opts := provider.Options{
		Model:            cfg.PrimaryModel,
		MaxTokens:        config.DefaultMaxTokens,
		Temperature:      config.DefaultTemperature,
		PresencePenalty:  config.DefaultPresencePenalty,
		FrequencyPenalty: config.DefaultFrequencyPenalty,
	}
	primary := provider.NewOpenAI(cfg.OpenAIKey, "", opts, tracer, meter)

	var fallback provider.Completer
	if cfg.FallbackEnabled() {
		fallbackOpts := opts
		fallbackOpts.Model = cfg.FallbackModel
		fallback = provider.NewAnthropic(cfg.AnthropicKey, "", fallbackOpts, tracer, meter)
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, fallback provider disabled")
	}

	var arch *archive.Archive
	if cfg.ArchivePath != "" {
		arch, err = archive.Open(cfg.ArchivePath, logger)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer arch.Close()
	}

	store := session.NewStore()
	orchestrator := therapy.New(primary, fallback, store, arch, logger)

	audioCfg := audio.DefaultConfig()
	audioCfg.Workers = cfg.TTSWorkers
	audioCfg.MaxChunkSize = cfg.TTSChunkSize
	bridge := audio.NewBridge(cfg.OpenAIKey, "", audioCfg, tracer, meter)

	handler := server.New(orchestrator, bridge, store, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "fallback_enabled", cfg.FallbackEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	cleared := store.CleanupInactive(0)
	logger.Info("sessions cleared", "count", cleared)

	return nil
}
