//go:build cgo
// +build cgo

package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer runs Tesseract OCR through gosseract (requires CGO and libtesseract).
type TesseractRecognizer struct {
	language string
}

// NewTesseractRecognizer returns a recognizer for the given Tesseract language code.
func NewTesseractRecognizer(language string) *TesseractRecognizer {
	if language == "" {
		language = "eng"
	}
	return &TesseractRecognizer{language: language}
}

// Recognize returns the text found in image.
func (r *TesseractRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}
