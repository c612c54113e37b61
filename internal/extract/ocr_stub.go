//go:build !cgo
// +build !cgo

package extract

import "context"

// TesseractRecognizer stub when built without CGO (see ocr.go for real implementation).
type TesseractRecognizer struct{}

// NewTesseractRecognizer returns a recognizer that always reports ErrOCRUnavailable.
func NewTesseractRecognizer(_ string) *TesseractRecognizer {
	return &TesseractRecognizer{}
}

// Recognize returns ErrOCRUnavailable.
func (r *TesseractRecognizer) Recognize(_ context.Context, _ []byte) (string, error) {
	return "", ErrOCRUnavailable
}
