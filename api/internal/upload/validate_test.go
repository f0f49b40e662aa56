package upload

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpeg(n int) []byte {
	b := make([]byte, n)
	copy(b, jpegMagic)
	return b
}

func TestValidateAccepts(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/jpg"} {
		require.NoError(t, Validate(ct, jpeg(3)), ct)
		require.NoError(t, Validate(ct, jpeg(MaxFileSize)), ct)
	}
}

func TestValidateRejectsMediaTypeFirst(t *testing.T) {
	// valid JPEG bytes, oversized and badly signed bodies alike lose to the media type check
	inputs := [][]byte{jpeg(64), jpeg(MaxFileSize + 1), []byte("GIF89a"), nil}
	for _, ct := range []string{"", "image/png", "IMAGE/JPEG", "image/jpeg; charset=binary", "application/octet-stream"} {
		for _, in := range inputs {
			assert.Same(t, ErrUnsupportedMediaType, Validate(ct, in), "%q", ct)
		}
	}
}

func TestValidateRejectsOversizeBeforeSignature(t *testing.T) {
	assert.Same(t, ErrTooLarge, Validate("image/jpeg", jpeg(MaxFileSize+1)))
	assert.Same(t, ErrTooLarge, Validate("image/jpg", bytes.Repeat([]byte{0x00}, MaxFileSize+1)))
}

func TestValidateRejectsBadSignature(t *testing.T) {
	inputs := [][]byte{
		{},
		{0xFF},
		{0xFF, 0xD8},
		{0xFF, 0xD8, 0x00, 0xFF},
		{0x89, 'P', 'N', 'G'},
		[]byte("%PDF-1.7"),
		append([]byte{0x00}, jpegMagic...),
	}
	for _, in := range inputs {
		for _, ct := range []string{"image/jpeg", "image/jpg"} {
			assert.Same(t, ErrBadSignature, Validate(ct, in), "% x", in)
		}
	}
}

func TestRejectionStatuses(t *testing.T) {
	cases := map[*Rejection]int{
		ErrMissing:              http.StatusBadRequest,
		ErrEmpty:                http.StatusBadRequest,
		ErrUnsupportedMediaType: http.StatusUnsupportedMediaType,
		ErrTooLarge:             http.StatusRequestEntityTooLarge,
		ErrBadSignature:         http.StatusUnsupportedMediaType,
	}
	for rej, status := range cases {
		assert.Equal(t, status, rej.Status, rej.Reason)
		assert.Equal(t, rej.Message, rej.Error())
	}
}

func TestRejectionMatchesWithErrorsAs(t *testing.T) {
	err := Validate("image/png", jpeg(8))

	var rej *Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ReasonUnsupportedMediaType, rej.Reason)
	assert.True(t, errors.Is(err, ErrUnsupportedMediaType))
}
