package filters

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"

	"contour2dxf/internal/opencv/safe"
)

// ConvertToGrayscale returns a single-channel copy of src. Single-channel
// input is cloned unchanged.
func ConvertToGrayscale(ctx context.Context, src *safe.Mat, mt safe.MemoryTracker) (*safe.Mat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if src.Channels() == 1 {
		return src.Clone()
	}

	code := gocv.ColorBGRToGray
	if src.Channels() == 4 {
		code = gocv.ColorBGRAToGray
	}
	if err := safe.ValidateColorConversion(src, code); err != nil {
		return nil, fmt.Errorf("unsupported channel count for grayscale conversion: %w", err)
	}

	dst, err := safe.NewMatWithTracker(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1, mt, "grayscale")
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.CvtColor(srcMat, &dstMat, code)

	return dst, nil
}
