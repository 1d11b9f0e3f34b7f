package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/gestaozabele/ouvidoria/internal/auth"
	"github.com/gestaozabele/ouvidoria/internal/backend"
	"github.com/gestaozabele/ouvidoria/internal/config"
	internalhttp "github.com/gestaozabele/ouvidoria/internal/http"
	"github.com/gestaozabele/ouvidoria/internal/metrics"
	"github.com/gestaozabele/ouvidoria/internal/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("portal encerrado com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	closeLog := setupLogger(cfg.Log)
	defer closeLog()

	ctx := context.Background()
	collector := metrics.New()

	client, err := backend.New(backend.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Metrics: collector,
	})
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}

	checks := map[string]internalhttp.Check{"backend": client.Ping}

	var store session.Store
	if cfg.RedisURL != "" {
		redisStore, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisStore.Close()
		store = redisStore
		checks["redis"] = redisStore.Ping
	} else {
		log.Warn().Msg("REDIS_URL ausente; sessões ficam em memória")
		store = session.NewMemoryStore()
	}

	tokens := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL)
	sessions := session.NewManager(store, tokens, client, cfg.SecureCookies)

	handler, err := internalhttp.NewRouter(internalhttp.Deps{
		Config:         cfg,
		Backend:        client,
		Sessions:       sessions,
		Metrics:        collector,
		Checks:         checks,
		DebugTemplates: cfg.Log.Level == "debug",
	})
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("backend", client.BaseURL()).Msgf("portal ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupLogger aplica nível e destinos do log. Com LOG_FILE o arquivo é rotacionado pelo lumberjack.
func setupLogger(cfg config.LogConfig) func() {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if cfg.Console || cfg.File == "" {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	var file *lumberjack.Logger
	if cfg.File != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		writers = append(writers, file)
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Str("app", "ouvidoria-portal").Logger()
	return func() {
		if file != nil {
			_ = file.Close()
		}
	}
}
