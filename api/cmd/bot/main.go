package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fermions75/flexboneai-ocr/api/internal/config"
	"github.com/fermions75/flexboneai-ocr/api/internal/logging"
	"github.com/fermions75/flexboneai-ocr/api/internal/ocr/engines"
	"github.com/fermions75/flexboneai-ocr/api/internal/telegram"
)

func main() {
	cfg := config.Load()
	log := logging.New("ocr-bot", cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := cfg.ValidateBot(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram login")
	}
	api.Debug = false

	engine, err := engines.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init ocr engine")
	}

	log.Info().Str("bot", api.Self.UserName).Str("engine", engine.Name()).Msg("polling started")
	telegram.New(api, engine, log).Run(ctx)
}
