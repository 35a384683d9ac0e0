package pipeline

import (
	"context"
	"image"
	"image/color"

	"contour2dxf/internal/contour"
	"contour2dxf/internal/models"
)

// Backend is the narrow seam between the preview pipeline and an
// image-processing library. Every method returns a new Raster owned by the
// caller and leaves its inputs untouched.
type Backend interface {
	// Decode turns encoded image bytes into a 3-channel 8-bit raster.
	Decode(data []byte) (models.Raster, error)

	Grayscale(ctx context.Context, src models.Raster) (models.Raster, error)
	GaussianBlur(ctx context.Context, src models.Raster, kernelSize int, sigma float64) (models.Raster, error)
	Canny(ctx context.Context, src models.Raster, threshold1, threshold2 int) (models.Raster, error)
	// MorphClose applies a closing with a kernelSize x kernelSize square.
	MorphClose(ctx context.Context, src models.Raster, kernelSize int) (models.Raster, error)
	// FindExternalContours traces outermost boundaries only, no holes.
	FindExternalContours(ctx context.Context, src models.Raster) ([]contour.Contour, error)

	// FillContour returns a black 3-channel raster the size of like with c filled white.
	FillContour(ctx context.Context, like models.Raster, c contour.Contour) (models.Raster, error)
	// DrawContour returns a copy of base with c outlined.
	DrawContour(ctx context.Context, base models.Raster, c contour.Contour, col color.RGBA, thickness int) (models.Raster, error)

	ToImage(src models.Raster) (image.Image, error)
}
