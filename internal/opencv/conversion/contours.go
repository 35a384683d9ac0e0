package conversion

import (
	"image"

	"gocv.io/x/gocv"

	"contour2dxf/internal/contour"
)

// ContoursFromPointsVector copies every contour out of pv. pv stays owned by the caller.
func ContoursFromPointsVector(pv gocv.PointsVector) []contour.Contour {
	raw := pv.ToPoints()
	out := make([]contour.Contour, len(raw))
	for i, pts := range raw {
		out[i] = append(contour.Contour(nil), pts...)
	}
	return out
}

// ToPointsVector builds a single-contour PointsVector. The caller must Close it.
func ToPointsVector(c contour.Contour) gocv.PointsVector {
	return gocv.NewPointsVectorFromPoints([][]image.Point{c})
}
