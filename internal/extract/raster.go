//go:build cgo
// +build cgo

package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// FitzRasterizer renders PDF pages with MuPDF (requires CGO).
type FitzRasterizer struct{}

// NewFitzRasterizer returns a MuPDF-backed rasterizer.
func NewFitzRasterizer() *FitzRasterizer {
	return &FitzRasterizer{}
}

// Render draws the 1-based page at dpi and returns it PNG-encoded.
func (r *FitzRasterizer) Render(ctx context.Context, data []byte, page int, dpi float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open PDF for rendering: %w", err)
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range (1-%d)", page, doc.NumPage())
	}
	img, err := doc.ImageDPI(page-1, dpi)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", page, err)
	}
	return buf.Bytes(), nil
}
