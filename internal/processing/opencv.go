// Package processing binds the preview pipeline to OpenCV through gocv.
package processing

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"contour2dxf/internal/contour"
	"contour2dxf/internal/models"
	"contour2dxf/internal/opencv/conversion"
	"contour2dxf/internal/opencv/memory"
	"contour2dxf/internal/opencv/safe"
	"contour2dxf/internal/pipeline"
	"contour2dxf/internal/processing/filters"
)

var _ pipeline.Backend = (*OpenCVBackend)(nil)

// OpenCVBackend implements pipeline.Backend with *safe.Mat rasters.
type OpenCVBackend struct {
	tracker *memory.Tracker
	mt      safe.MemoryTracker
}

// NewOpenCVBackend returns a backend. When tracker is non-nil every Mat the
// backend allocates is recorded in it.
func NewOpenCVBackend(tracker *memory.Tracker) *OpenCVBackend {
	b := &OpenCVBackend{tracker: tracker}
	if tracker != nil {
		b.mt = tracker
	}
	return b
}

func (b *OpenCVBackend) Tracker() *memory.Tracker {
	return b.tracker
}

func asMat(r models.Raster, operation string) (*safe.Mat, error) {
	m, ok := r.(*safe.Mat)
	if !ok {
		return nil, fmt.Errorf("%s: raster of type %T was not produced by the OpenCV backend", operation, r)
	}
	return m, nil
}

// raster keeps a failed *safe.Mat result from becoming a non-nil interface.
func raster(m *safe.Mat, err error) (models.Raster, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (b *OpenCVBackend) Decode(data []byte) (models.Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	m, err := safe.Wrap(mat, b.mt, "decoded")
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return m, nil
}

func (b *OpenCVBackend) Grayscale(ctx context.Context, src models.Raster) (models.Raster, error) {
	m, err := asMat(src, "grayscale")
	if err != nil {
		return nil, err
	}
	return raster(filters.ConvertToGrayscale(ctx, m, b.mt))
}

func (b *OpenCVBackend) GaussianBlur(ctx context.Context, src models.Raster, kernelSize int, sigma float64) (models.Raster, error) {
	m, err := asMat(src, "gaussian blur")
	if err != nil {
		return nil, err
	}
	return raster(filters.GaussianBlur(ctx, m, kernelSize, sigma, b.mt))
}

func (b *OpenCVBackend) Canny(ctx context.Context, src models.Raster, threshold1, threshold2 int) (models.Raster, error) {
	m, err := asMat(src, "canny")
	if err != nil {
		return nil, err
	}
	return raster(filters.Canny(ctx, m, threshold1, threshold2, b.mt))
}

func (b *OpenCVBackend) MorphClose(ctx context.Context, src models.Raster, kernelSize int) (models.Raster, error) {
	m, err := asMat(src, "morphological close")
	if err != nil {
		return nil, err
	}
	return raster(filters.MorphClose(ctx, m, kernelSize, b.mt))
}

func (b *OpenCVBackend) FindExternalContours(ctx context.Context, src models.Raster) ([]contour.Contour, error) {
	m, err := asMat(src, "find contours")
	if err != nil {
		return nil, err
	}
	return filters.FindExternalContours(ctx, m)
}

func (b *OpenCVBackend) FillContour(ctx context.Context, like models.Raster, c contour.Contour) (models.Raster, error) {
	return raster(filters.FillContour(ctx, like.Rows(), like.Cols(), c, b.mt))
}

func (b *OpenCVBackend) DrawContour(ctx context.Context, base models.Raster, c contour.Contour, col color.RGBA, thickness int) (models.Raster, error) {
	m, err := asMat(base, "draw contour")
	if err != nil {
		return nil, err
	}
	return raster(filters.DrawContour(ctx, m, c, col, thickness, b.mt))
}

func (b *OpenCVBackend) ToImage(src models.Raster) (image.Image, error) {
	m, err := asMat(src, "image conversion")
	if err != nil {
		return nil, err
	}
	return conversion.MatToImage(m)
}
