// Package pipelinetest provides an in-memory pipeline.Backend for tests that
// must not depend on OpenCV.
package pipelinetest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"sync"

	"contour2dxf/internal/contour"
	"contour2dxf/internal/models"
)

// ErrInjected is returned by the method named in Backend.FailOn.
var ErrInjected = errors.New("injected failure")

// Raster is the fake raster handed out by Backend.
type Raster struct {
	rows, cols, channels int
	owner                *Backend
	closed               bool
}

func (r *Raster) Rows() int     { return r.rows }
func (r *Raster) Cols() int     { return r.cols }
func (r *Raster) Channels() int { return r.channels }

func (r *Raster) Close() {
	r.owner.mu.Lock()
	defer r.owner.mu.Unlock()
	if !r.closed {
		r.closed = true
		r.owner.open--
	}
}

// Backend records every call and returns Contours from FindExternalContours.
type Backend struct {
	Contours []contour.Contour
	// FailOn names a method ("Canny", "MorphClose", ...) that returns ErrInjected.
	FailOn string

	mu    sync.Mutex
	calls []string
	open  int
	args  map[string][]interface{}
}

func New(contours ...contour.Contour) *Backend {
	return &Backend{Contours: contours}
}

// Calls returns the method names in call order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Args returns the arguments of every call to method, flattened in call order.
func (b *Backend) Args(method string) []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]interface{}(nil), b.args[method]...)
}

// Open reports how many rasters have been created and not yet closed.
func (b *Backend) Open() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// NewRaster creates a tracked raster without going through Decode.
func (b *Backend) NewRaster(rows, cols, channels int) *Raster {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.open++
	return &Raster{rows: rows, cols: cols, channels: channels, owner: b}
}

func (b *Backend) record(method string, args ...interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, method)
	if b.args == nil {
		b.args = make(map[string][]interface{})
	}
	b.args[method] = append(b.args[method], args...)
	if b.FailOn == method {
		return fmt.Errorf("%s: %w", method, ErrInjected)
	}
	return nil
}

func (b *Backend) derive(src models.Raster, channels int) models.Raster {
	return b.NewRaster(src.Rows(), src.Cols(), channels)
}

func (b *Backend) Decode(data []byte) (models.Raster, error) {
	if err := b.record("Decode"); err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return b.NewRaster(cfg.Height, cfg.Width, 3), nil
}

func (b *Backend) Grayscale(_ context.Context, src models.Raster) (models.Raster, error) {
	if err := b.record("Grayscale"); err != nil {
		return nil, err
	}
	return b.derive(src, 1), nil
}

func (b *Backend) GaussianBlur(_ context.Context, src models.Raster, kernelSize int, sigma float64) (models.Raster, error) {
	if err := b.record("GaussianBlur", kernelSize, sigma); err != nil {
		return nil, err
	}
	return b.derive(src, src.Channels()), nil
}

func (b *Backend) Canny(_ context.Context, src models.Raster, threshold1, threshold2 int) (models.Raster, error) {
	if err := b.record("Canny", threshold1, threshold2); err != nil {
		return nil, err
	}
	return b.derive(src, 1), nil
}

func (b *Backend) MorphClose(_ context.Context, src models.Raster, kernelSize int) (models.Raster, error) {
	if err := b.record("MorphClose", kernelSize); err != nil {
		return nil, err
	}
	return b.derive(src, 1), nil
}

func (b *Backend) FindExternalContours(_ context.Context, _ models.Raster) ([]contour.Contour, error) {
	if err := b.record("FindExternalContours"); err != nil {
		return nil, err
	}
	out := make([]contour.Contour, len(b.Contours))
	for i, c := range b.Contours {
		out[i] = append(contour.Contour(nil), c...)
	}
	return out, nil
}

func (b *Backend) FillContour(_ context.Context, like models.Raster, c contour.Contour) (models.Raster, error) {
	if err := b.record("FillContour", len(c)); err != nil {
		return nil, err
	}
	return b.derive(like, 3), nil
}

func (b *Backend) DrawContour(_ context.Context, base models.Raster, c contour.Contour, col color.RGBA, thickness int) (models.Raster, error) {
	if err := b.record("DrawContour", len(c), col, thickness); err != nil {
		return nil, err
	}
	return b.derive(base, base.Channels()), nil
}

func (b *Backend) ToImage(src models.Raster) (image.Image, error) {
	if err := b.record("ToImage"); err != nil {
		return nil, err
	}
	return image.NewGray(image.Rect(0, 0, src.Cols(), src.Rows())), nil
}
