package ocr

import (
	"context"
	"strings"
	"time"
)

// NoTextMessage is shown when the engine found nothing to read.
const NoTextMessage = "No text found in the image."

// Engine is a remote text-detection service. Recognize returns the full text
// found on the image, "" when there is none, or an error carrying the
// service's own message.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

type Kind int

const (
	KindText Kind = iota
	KindEmpty
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEmpty:
		return "empty"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one engine call. Text is set only for KindText,
// Err only for KindError. Elapsed covers the engine call alone.
type Result struct {
	Kind    Kind
	Text    string
	Err     error
	Elapsed time.Duration
}

// Extract runs a single Recognize call and classifies its outcome.
func Extract(ctx context.Context, e Engine, image []byte) Result {
	start := time.Now()
	text, err := e.Recognize(ctx, image)
	elapsed := time.Since(start)
	if elapsed < 0 {
		elapsed = 0
	}

	switch {
	case err != nil:
		return Result{Kind: KindError, Err: err, Elapsed: elapsed}
	case strings.TrimSpace(text) == "":
		return Result{Kind: KindEmpty, Elapsed: elapsed}
	default:
		return Result{Kind: KindText, Text: strings.TrimSpace(text), Elapsed: elapsed}
	}
}
