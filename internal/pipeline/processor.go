package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"contour2dxf/internal/contour"
	"contour2dxf/internal/logger"
	"contour2dxf/internal/models"
)

// Processor runs the full preview: preprocessing, contour selection,
// smoothing and rendering of the preview panes.
type Processor struct {
	backend Backend
	logger  logger.Logger
}

func NewProcessor(backend Backend, log logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{backend: backend, logger: log}
}

// Run processes src. Every raster it creates is closed before returning; the
// caller keeps ownership of src. On error no partial result is returned.
func (p *Processor) Run(ctx context.Context, src models.Raster, params models.Parameters, style models.OverlayStyle) (*models.PreviewResult, error) {
	start := time.Now()

	p.logger.Debug("Processor", "preview started", map[string]interface{}{
		"width":  src.Cols(),
		"height": src.Rows(),
	})

	if !params.ThresholdsOrdered() {
		p.logger.Warning("Processor", "canny threshold1 is not below threshold2", map[string]interface{}{
			"threshold1": params.CannyThreshold1,
			"threshold2": params.CannyThreshold2,
		})
	}

	stages, err := Preprocess(ctx, p.backend, src, params)
	if err != nil {
		return nil, err
	}
	defer stages.Close()

	contours, err := p.backend.FindExternalContours(ctx, stages.Closed)
	if err != nil {
		return nil, fmt.Errorf("contour extraction failed: %w", err)
	}

	largest, idx, err := contour.Largest(contours)
	if err != nil {
		return nil, err
	}

	smoothed, err := contour.Smooth(largest, params.SmoothWindowSize)
	if err != nil {
		return nil, err
	}

	filled, err := p.backend.FillContour(ctx, src, largest)
	if err != nil {
		return nil, fmt.Errorf("contour fill failed: %w", err)
	}
	defer filled.Close()

	final, err := p.backend.DrawContour(ctx, filled, smoothed, style.Color, style.Thickness)
	if err != nil {
		return nil, fmt.Errorf("contour overlay failed: %w", err)
	}
	defer final.Close()

	result := &models.PreviewResult{
		Contour:      largest,
		Smoothed:     smoothed,
		Area:         contour.Area(largest),
		ContourCount: len(contours),
		Parameters:   params,
	}

	panes := []struct {
		name string
		src  models.Raster
		dst  *image.Image
	}{
		{"input", src, &result.Input},
		{"edges", stages.Edges, &result.Edges},
		{"filled", filled, &result.Filled},
		{"final", final, &result.Final},
	}
	for _, pane := range panes {
		img, err := p.backend.ToImage(pane.src)
		if err != nil {
			return nil, fmt.Errorf("%s image conversion failed: %w", pane.name, err)
		}
		*pane.dst = img
	}

	result.ProcessTime = time.Since(start)

	p.logger.Info("Processor", "preview completed", map[string]interface{}{
		"contours":   len(contours),
		"selected":   idx,
		"points":     len(largest),
		"area":       result.Area,
		"window":     params.SmoothWindowSize,
		"process_ms": result.ProcessTime.Milliseconds(),
	})

	return result, nil
}
