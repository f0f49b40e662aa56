package handle

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fermions75/flexboneai-ocr/api/internal/ocr"
	"github.com/fermions75/flexboneai-ocr/api/internal/store"
	"github.com/fermions75/flexboneai-ocr/api/internal/upload"
	"github.com/fermions75/flexboneai-ocr/api/internal/util"
)

const (
	imageField = "image"
	// room for multipart boundaries and part headers on top of the file itself
	multipartOverhead = 1 << 20
)

type OCRResponse struct {
	Success          bool   `json:"success"`
	Text             string `json:"text"`
	ProcessingTimeMS int64  `json:"processing_time_ms"`
	Message          string `json:"message,omitempty"`
}

// ExtractText handles POST /extract-text.
func (h *Handle) ExtractText(w http.ResponseWriter, r *http.Request) {
	log := h.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()

	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxFileSize+multipartOverhead)
	content, contentType, err := readImage(r)
	if err == nil {
		err = upload.Validate(contentType, content)
	}
	if err != nil {
		rej := asRejection(err)
		log.Info().Str("reason", string(rej.Reason)).Str("content_type", contentType).Int("bytes", len(content)).Msg("upload rejected")
		writeError(w, rej.Status, rej.Message)
		return
	}

	res := ocr.Extract(r.Context(), h.engine, content)
	ms := processingTimeMS(res.Elapsed)

	switch res.Kind {
	case ocr.KindError:
		log.Error().Err(res.Err).Str("engine", h.engine.Name()).Int64("processing_time_ms", ms).Msg("OCR processing failed")
		writeError(w, http.StatusInternalServerError, "Failed to process image: "+res.Err.Error())
	case ocr.KindEmpty:
		writeJSON(w, http.StatusOK, OCRResponse{
			Success:          true,
			Text:             "",
			ProcessingTimeMS: ms,
			Message:          ocr.NoTextMessage,
		})
	default:
		writeJSON(w, http.StatusOK, OCRResponse{
			Success:          true,
			Text:             res.Text,
			ProcessingTimeMS: ms,
		})
	}

	h.record(r.Context(), content, res, ms)
}

// readImage returns the bytes and declared media type of the "image" part.
// Other parts are skipped. Nothing is spooled to disk.
func readImage(r *http.Request) ([]byte, string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", upload.ErrMissing
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, "", upload.ErrMissing
		}
		if err != nil {
			return nil, "", readError(err)
		}
		if part.FormName() != imageField {
			_ = part.Close()
			continue
		}
		defer part.Close()

		if part.FileName() == "" {
			return nil, "", upload.ErrMissing
		}
		contentType := part.Header.Get("Content-Type")
		content, err := io.ReadAll(part)
		if err != nil {
			return nil, contentType, readError(err)
		}
		if len(content) == 0 {
			return nil, contentType, upload.ErrEmpty
		}
		return content, contentType, nil
	}
}

func readError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return upload.ErrTooLarge
	}
	return upload.ErrMissing
}

func asRejection(err error) *upload.Rejection {
	var rej *upload.Rejection
	if errors.As(err, &rej) {
		return rej
	}
	return upload.ErrMissing
}

// processingTimeMS truncates to whole milliseconds.
func processingTimeMS(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}

func (h *Handle) record(ctx context.Context, content []byte, res ocr.Result, ms int64) {
	if h.rec == nil {
		return
	}
	rec := store.ExtractionRecord{
		ID:           uuid.New(),
		CreatedAt:    time.Now().UTC(),
		ImageSHA256:  util.SHA256Hex(content),
		ImageBytes:   len(content),
		Engine:       h.engine.Name(),
		Outcome:      res.Kind.String(),
		ProcessingMS: ms,
		TextLength:   len(res.Text),
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	h.logHistory(ctx, rec)
	if err := h.rec.Record(ctx, rec); err != nil {
		h.log.Warn().Err(err).Str("image_sha256", rec.ImageSHA256).Msg("record extraction")
	}
}

// logHistory logs the outcomes of earlier extractions of the same image.
func (h *Handle) logHistory(ctx context.Context, rec store.ExtractionRecord) {
	hist, ok := h.rec.(History)
	if !ok || h.log.GetLevel() > zerolog.DebugLevel {
		return
	}
	prev, err := hist.ByImageHash(ctx, rec.ImageSHA256, 5)
	if err != nil {
		h.log.Debug().Err(err).Str("image_sha256", rec.ImageSHA256).Msg("extraction history")
		return
	}
	outcomes := make([]string, 0, len(prev))
	for _, p := range prev {
		outcomes = append(outcomes, p.Outcome)
	}
	h.log.Debug().
		Str("image_sha256", rec.ImageSHA256).
		Str("outcome", rec.Outcome).
		Strs("previous_outcomes", outcomes).
		Msg("extraction history")
}
