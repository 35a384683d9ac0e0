package filters

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"contour2dxf/internal/opencv/safe"
)

// Canny runs hysteresis edge detection on a single-channel image. The result
// is a binary map with edges at 255.
func Canny(ctx context.Context, src *safe.Mat, threshold1, threshold2 int, mt safe.MemoryTracker) (*safe.Mat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := safe.ValidateSingleChannel8U(src, "Canny"); err != nil {
		return nil, err
	}

	dst, err := safe.NewMatWithTracker(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1, mt, "canny")
	if err != nil {
		return nil, fmt.Errorf("failed to create edge Mat: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.Canny(srcMat, &dstMat, float32(threshold1), float32(threshold2))

	return dst, nil
}
