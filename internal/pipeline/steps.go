package pipeline

import (
	"context"

	"contour2dxf/internal/models"
	"contour2dxf/internal/processing/chain"
)

type grayscaleStep struct{ backend Backend }

func (s grayscaleStep) Name() string                         { return "grayscale" }
func (s grayscaleStep) ShouldExecute(models.Parameters) bool { return true }

func (s grayscaleStep) Apply(ctx context.Context, in models.Raster, _ models.Parameters) (models.Raster, error) {
	return s.backend.Grayscale(ctx, in)
}

type gaussianStep struct{ backend Backend }

func (s gaussianStep) Name() string                         { return "gaussian_blur" }
func (s gaussianStep) ShouldExecute(models.Parameters) bool { return true }

func (s gaussianStep) Apply(ctx context.Context, in models.Raster, p models.Parameters) (models.Raster, error) {
	return s.backend.GaussianBlur(ctx, in, p.BlurKernelSize, p.BlurSigma)
}

type cannyStep struct{ backend Backend }

func (s cannyStep) Name() string                         { return "canny" }
func (s cannyStep) ShouldExecute(models.Parameters) bool { return true }

func (s cannyStep) Apply(ctx context.Context, in models.Raster, p models.Parameters) (models.Raster, error) {
	return s.backend.Canny(ctx, in, p.CannyThreshold1, p.CannyThreshold2)
}

// closingStep runs the first or second morphological close.
type closingStep struct {
	backend Backend
	pass    int
}

func (s closingStep) Name() string {
	if s.pass == 1 {
		return "closing1"
	}
	return "closing2"
}

func (s closingStep) ShouldExecute(models.Parameters) bool { return true }

func (s closingStep) Apply(ctx context.Context, in models.Raster, p models.Parameters) (models.Raster, error) {
	k := p.Closing2Kernel
	if s.pass == 1 {
		k = p.Closing1Kernel
	}
	return s.backend.MorphClose(ctx, in, k)
}

func newEdgeChain(b Backend) *chain.ProcessingChain {
	return chain.NewProcessingChain(grayscaleStep{b}, gaussianStep{b}, cannyStep{b})
}

func newClosingChain(b Backend) *chain.ProcessingChain {
	return chain.NewProcessingChain(closingStep{backend: b, pass: 1}, closingStep{backend: b, pass: 2})
}
