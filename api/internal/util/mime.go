package util

import "bytes"

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	pdfMagic  = []byte("%PDF-")
)

// SniffMimeHTTP returns the media type implied by the leading bytes.
func SniffMimeHTTP(b []byte) string {
	switch {
	case bytes.HasPrefix(b, jpegMagic):
		return "image/jpeg"
	case bytes.HasPrefix(b, pngMagic):
		return "image/png"
	case bytes.HasPrefix(b, pdfMagic):
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
