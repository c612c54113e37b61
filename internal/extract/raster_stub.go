//go:build !cgo
// +build !cgo

package extract

import "context"

// FitzRasterizer stub when built without CGO (see raster.go for real implementation).
type FitzRasterizer struct{}

// NewFitzRasterizer returns a rasterizer that always reports ErrOCRUnavailable.
func NewFitzRasterizer() *FitzRasterizer {
	return &FitzRasterizer{}
}

// Render returns ErrOCRUnavailable.
func (r *FitzRasterizer) Render(_ context.Context, _ []byte, _ int, _ float64) ([]byte, error) {
	return nil, ErrOCRUnavailable
}
