package filters

import (
	"context"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"contour2dxf/internal/opencv/safe"
)

// GaussianBlur smooths src with a kernelSize x kernelSize Gaussian. A sigma of
// zero lets OpenCV derive it from the kernel size.
func GaussianBlur(ctx context.Context, src *safe.Mat, kernelSize int, sigma float64, mt safe.MemoryTracker) (*safe.Mat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := safe.ValidateMatForOperation(src, "GaussianBlur"); err != nil {
		return nil, err
	}
	if err := safe.ValidateKernelSize(kernelSize, true, "GaussianBlur"); err != nil {
		return nil, err
	}
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("gaussian sigma must be a finite non-negative number, got %g", sigma)
	}

	dst, err := safe.NewMatWithTracker(src.Rows(), src.Cols(), src.Type(), mt, "gaussian_blur")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.GaussianBlur(srcMat, &dstMat, image.Point{X: kernelSize, Y: kernelSize}, sigma, 0, gocv.BorderDefault)

	return dst, nil
}
