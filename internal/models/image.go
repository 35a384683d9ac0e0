package models

import (
	"image"
	"image/color"
	"time"

	"contour2dxf/internal/contour"
)

// Raster is a decoded pixel buffer owned by an image-processing backend.
// Every pipeline stage returns a new Raster; inputs are never modified.
type Raster interface {
	Rows() int
	Cols() int
	Channels() int
	Close()
}

// ImageData describes a loaded input image.
type ImageData struct {
	Path      string
	Image     image.Image
	Width     int
	Height    int
	Channels  int
	Format    string
	SizeBytes int64
	LoadTime  time.Time
}

// OverlayStyle controls how the smoothed contour is drawn on the final preview.
type OverlayStyle struct {
	Color     color.RGBA
	Thickness int
}

func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		Color:     color.RGBA{R: 0, G: 255, B: 0, A: 255},
		Thickness: 2,
	}
}

// PreviewResult contains the output of one preview run.
type PreviewResult struct {
	Input  image.Image
	Edges  image.Image
	Filled image.Image
	Final  image.Image

	Contour      contour.Contour
	Smoothed     contour.Contour
	Area         float64
	ContourCount int

	Parameters  Parameters
	ProcessTime time.Duration
}
