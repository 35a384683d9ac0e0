package filters

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"gocv.io/x/gocv"

	"contour2dxf/internal/contour"
	"contour2dxf/internal/opencv/conversion"
	"contour2dxf/internal/opencv/safe"
)

var errEmptyContour = errors.New("contour has no points")

// filledThickness makes DrawContours fill the polygon interior.
const filledThickness = -1

// FindExternalContours traces the outer boundaries of the non-zero regions in
// src using simple chain approximation. Holes are not reported.
func FindExternalContours(ctx context.Context, src *safe.Mat) ([]contour.Contour, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := safe.ValidateSingleChannel8U(src, "FindContours"); err != nil {
		return nil, err
	}

	pv := gocv.FindContours(src.GetMat(), gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer pv.Close()

	return conversion.ContoursFromPointsVector(pv), nil
}

// FillContour returns a black BGR image of rows x cols with c filled white.
func FillContour(ctx context.Context, rows, cols int, c contour.Contour, mt safe.MemoryTracker) (*safe.Mat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(c) == 0 {
		return nil, errEmptyContour
	}
	if err := safe.ValidateDimensions(cols, rows, "FillContour"); err != nil {
		return nil, err
	}

	canvas, err := safe.Wrap(gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3), mt, "filled")
	if err != nil {
		return nil, fmt.Errorf("failed to create canvas: %w", err)
	}

	pv := conversion.ToPointsVector(c)
	defer pv.Close()

	canvasMat := canvas.GetMat()
	gocv.DrawContours(&canvasMat, pv, -1, color.RGBA{R: 255, G: 255, B: 255, A: 255}, filledThickness)

	return canvas, nil
}

// DrawContour returns a BGR copy of base with c outlined as a closed polygon.
func DrawContour(ctx context.Context, base *safe.Mat, c contour.Contour, col color.RGBA, thickness int, mt safe.MemoryTracker) (*safe.Mat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := safe.ValidateMatForOperation(base, "DrawContour"); err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return nil, errEmptyContour
	}
	if thickness < 1 {
		return nil, fmt.Errorf("outline thickness must be positive, got %d", thickness)
	}

	var out *safe.Mat
	var err error
	if base.Channels() == 1 {
		out, err = safe.NewMatWithTracker(base.Rows(), base.Cols(), gocv.MatTypeCV8UC3, mt, "overlay")
		if err == nil {
			baseMat := base.GetMat()
			outMat := out.GetMat()
			gocv.CvtColor(baseMat, &outMat, gocv.ColorGrayToBGR)
		}
	} else {
		out, err = safe.NewMatFromMatWithTracker(base.GetMat(), mt, "overlay")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay Mat: %w", err)
	}

	pv := conversion.ToPointsVector(c)
	defer pv.Close()

	outMat := out.GetMat()
	gocv.DrawContours(&outMat, pv, -1, col, thickness)

	return out, nil
}
