package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fermions75/flexboneai-ocr/api/internal/config"
	"github.com/fermions75/flexboneai-ocr/api/internal/handle"
	"github.com/fermions75/flexboneai-ocr/api/internal/httpserver"
	"github.com/fermions75/flexboneai-ocr/api/internal/logging"
	"github.com/fermions75/flexboneai-ocr/api/internal/ocr/engines"
	"github.com/fermions75/flexboneai-ocr/api/internal/store"
)

func main() {
	cfg := config.Load()
	log := logging.New("ocr-api", cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := engines.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init ocr engine")
	}

	var rec handle.Recorder
	if cfg.DatabaseURL != "" {
		repo, closeDB := openRecorder(ctx, cfg.DatabaseURL, log)
		defer closeDB()
		rec = repo
	}

	h := handle.New(engine, rec, log)
	srv := httpserver.New(":"+cfg.Port, httpserver.NewRouter(h, log, cfg.RequestTimeout), cfg.RequestTimeout)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("engine", engine.Name()).Msg("ocr-api listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown")
		}
	}
}

func openRecorder(ctx context.Context, dsn string, log zerolog.Logger) (*store.ExtractionRepo, func()) {
	db, err := store.Open(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	log.Info().Str("db", store.SafeDSNSummary(dsn)).Msg("db connected")

	repo := store.NewExtractionRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		log.Fatal().Err(err).Msg("ensure schema")
	}
	return repo, func() { _ = db.Close() }
}
