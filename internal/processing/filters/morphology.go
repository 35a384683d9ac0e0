package filters

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"contour2dxf/internal/opencv/safe"
)

// MorphClose applies a morphological closing (dilate then erode) with a
// kernelSize x kernelSize rectangular element. It bridges gaps narrower than
// the kernel without growing the outline.
func MorphClose(ctx context.Context, src *safe.Mat, kernelSize int, mt safe.MemoryTracker) (*safe.Mat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := safe.ValidateSingleChannel8U(src, "MorphClose"); err != nil {
		return nil, err
	}
	if err := safe.ValidateKernelSize(kernelSize, false, "MorphClose"); err != nil {
		return nil, err
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: kernelSize, Y: kernelSize})
	defer kernel.Close()

	result, err := safe.NewMatWithTracker(src.Rows(), src.Cols(), src.Type(), mt, "morph_close")
	if err != nil {
		return nil, fmt.Errorf("failed to create result Mat: %w", err)
	}

	srcMat := src.GetMat()
	resultMat := result.GetMat()
	gocv.MorphologyEx(srcMat, &resultMat, gocv.MorphClose, kernel)

	return result, nil
}
