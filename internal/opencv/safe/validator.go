package safe

import (
	"fmt"

	"gocv.io/x/gocv"
)

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat %d (%s) is invalid for operation: %s", mat.ID(), mat.Tag(), operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat %d (%s) is empty for operation: %s", mat.ID(), mat.Tag(), operation)
	}

	return nil
}

// ValidateSingleChannel8U checks that mat is a single-channel 8-bit Mat, the
// input type of Canny, morphology and contour tracing. Pixel values are not
// inspected.
func ValidateSingleChannel8U(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if mat.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("operation %s requires a single-channel 8-bit Mat, got type %d with %d channels",
			operation, int(mat.Type()), mat.Channels())
	}

	return nil
}

func ValidateColorConversion(src *Mat, code gocv.ColorConversionCode) error {
	if err := ValidateMatForOperation(src, "CvtColor"); err != nil {
		return err
	}

	channels := src.Channels()

	switch code {
	case gocv.ColorBGRToGray, gocv.ColorRGBToGray:
		if channels != 3 {
			return fmt.Errorf("BGR/RGB to Gray conversion requires 3 channels, got %d", channels)
		}
	case gocv.ColorGrayToBGR, gocv.ColorGrayToRGB:
		if channels != 1 {
			return fmt.Errorf("Gray to BGR/RGB conversion requires 1 channel, got %d", channels)
		}
	case gocv.ColorBGRAToBGR, gocv.ColorBGRAToGray:
		if channels != 4 {
			return fmt.Errorf("BGRA conversion requires 4 channels, got %d", channels)
		}
	}

	return nil
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > 32768 || height > 32768 {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}

// ValidateKernelSize checks a square kernel side. Gaussian kernels must be odd.
func ValidateKernelSize(size int, requireOdd bool, operation string) error {
	if size < 1 {
		return fmt.Errorf("kernel size %d must be positive for operation: %s", size, operation)
	}

	if requireOdd && size%2 == 0 {
		return fmt.Errorf("kernel size %d must be odd for operation: %s", size, operation)
	}

	return nil
}
