package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fermions75/flexboneai-ocr/api/internal/ocr"
	"github.com/fermions75/flexboneai-ocr/api/internal/store"
)

// Recorder keeps an audit trail of finished extractions. Optional.
type Recorder interface {
	Record(ctx context.Context, rec store.ExtractionRecord) error
}

// History is implemented by recorders that can look up earlier extractions
// of the same image. Only consulted at debug level.
type History interface {
	ByImageHash(ctx context.Context, imageHash string, limit int) ([]store.ExtractionRecord, error)
}

type Handle struct {
	engine ocr.Engine
	rec    Recorder
	log    zerolog.Logger
}

// New wires the handler. rec may be nil.
func New(engine ocr.Engine, rec Recorder, log zerolog.Logger) *Handle {
	return &Handle{
		engine: engine,
		rec:    rec,
		log:    log,
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorResponse{Detail: detail})
}

func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handle) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found")
}

func (h *Handle) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
