// Package upload decides whether an uploaded file may be sent for OCR.
package upload

import (
	"bytes"
	"net/http"
)

// MaxFileSize is the largest accepted image, in bytes.
const MaxFileSize = 10 * 1024 * 1024

var (
	allowedContentTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/jpg":  {},
	}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

type Reason string

const (
	ReasonMissing              Reason = "missing"
	ReasonEmpty                Reason = "empty"
	ReasonUnsupportedMediaType Reason = "unsupported-media-type"
	ReasonTooLarge             Reason = "too-large"
	ReasonBadSignature         Reason = "bad-signature"
)

// Rejection is a client input error. Status is the HTTP code to answer with
// and Message is shown to the caller verbatim.
type Rejection struct {
	Reason  Reason
	Status  int
	Message string
}

func (r *Rejection) Error() string { return r.Message }

var (
	ErrMissing = &Rejection{
		Reason:  ReasonMissing,
		Status:  http.StatusBadRequest,
		Message: "No image file provided.",
	}
	ErrEmpty = &Rejection{
		Reason:  ReasonEmpty,
		Status:  http.StatusBadRequest,
		Message: "Empty file provided.",
	}
	ErrUnsupportedMediaType = &Rejection{
		Reason:  ReasonUnsupportedMediaType,
		Status:  http.StatusUnsupportedMediaType,
		Message: "Unsupported file format. Only JPG/JPEG images are allowed.",
	}
	ErrTooLarge = &Rejection{
		Reason:  ReasonTooLarge,
		Status:  http.StatusRequestEntityTooLarge,
		Message: "File too large. Maximum size is 10MB.",
	}
	ErrBadSignature = &Rejection{
		Reason:  ReasonBadSignature,
		Status:  http.StatusUnsupportedMediaType,
		Message: "Invalid JPEG file. File does not appear to be a valid JPEG image.",
	}
)

// Validate checks the declared media type, then the size, then the JPEG
// start-of-image marker. The first failing check is returned.
// Callers reject empty content with ErrEmpty before calling it.
func Validate(contentType string, content []byte) error {
	if _, ok := allowedContentTypes[contentType]; !ok {
		return ErrUnsupportedMediaType
	}
	if len(content) > MaxFileSize {
		return ErrTooLarge
	}
	if !bytes.HasPrefix(content, jpegMagic) {
		return ErrBadSignature
	}
	return nil
}
