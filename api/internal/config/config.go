package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EngineVision = "vision"
	EngineGemini = "gemini"
)

type Config struct {
	Port string

	Engine         string
	GoogleAPIKey   string
	VisionEndpoint string
	GeminiAPIKey   string
	GeminiModel    string

	RequestTimeout time.Duration

	LogLevel  string
	LogFormat string

	DatabaseURL string

	TelegramBotToken string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8000"),

		Engine:         strings.ToLower(getEnv("OCR_ENGINE", EngineVision)),
		GoogleAPIKey:   getEnv("GOOGLE_API_KEY", ""),
		VisionEndpoint: getEnv("VISION_ENDPOINT", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
	}
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	switch c.Engine {
	case EngineVision:
	case EngineGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("missing required env GEMINI_API_KEY for OCR_ENGINE=gemini")
		}
	default:
		return fmt.Errorf("unknown OCR_ENGINE %q (want %s or %s)", c.Engine, EngineVision, EngineGemini)
	}
	return nil
}

// ValidateBot additionally requires the Telegram token.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TelegramBotToken == "" {
		return errors.New("missing required env TELEGRAM_BOT_TOKEN")
	}
	return nil
}
