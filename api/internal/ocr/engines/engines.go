// Package engines builds the OCR engine selected by configuration.
package engines

import (
	"context"
	"fmt"

	"github.com/fermions75/flexboneai-ocr/api/internal/config"
	"github.com/fermions75/flexboneai-ocr/api/internal/ocr"
	"github.com/fermions75/flexboneai-ocr/api/internal/ocr/gemini"
	"github.com/fermions75/flexboneai-ocr/api/internal/ocr/vision"
)

func New(ctx context.Context, cfg *config.Config) (ocr.Engine, error) {
	switch cfg.Engine {
	case config.EngineVision:
		eng, err := vision.New(ctx, cfg.GoogleAPIKey, cfg.VisionEndpoint)
		if err != nil {
			return nil, err
		}
		return eng, nil
	case config.EngineGemini:
		return gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.Engine)
	}
}
