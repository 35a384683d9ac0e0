// Package contour holds the point-sequence geometry used between boundary
// extraction and DXF export: polygon area, largest-contour selection and
// circular smoothing.
package contour

import (
	"errors"
	"image"
	"math"
)

// ErrNoContours is returned when boundary extraction produced nothing to select from.
var ErrNoContours = errors.New("no contours found")

// Contour is an ordered, closed sequence of pixel coordinates. Index len-1 is
// adjacent to index 0.
type Contour []image.Point

// Area returns the enclosed area of the closed polygon using the shoelace
// formula. Orientation is ignored. Fewer than three points enclose nothing.
func Area(c Contour) float64 {
	n := len(c)
	if n < 3 {
		return 0
	}

	var twice int64
	for i := 0; i < n; i++ {
		p := c[i]
		q := c[(i+1)%n]
		twice += int64(p.X)*int64(q.Y) - int64(q.X)*int64(p.Y)
	}

	return math.Abs(float64(twice)) / 2
}

// Largest returns the contour with the strictly greatest area and its index.
// On ties the first contour encountered wins.
func Largest(contours []Contour) (Contour, int, error) {
	if len(contours) == 0 {
		return nil, -1, ErrNoContours
	}

	best := -1
	bestArea := -1.0
	for i, c := range contours {
		if area := Area(c); area > bestArea {
			best = i
			bestArea = area
		}
	}

	return contours[best], best, nil
}

// Bounds returns the smallest rectangle containing every point of c.
func (c Contour) Bounds() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}

	r := image.Rectangle{Min: c[0], Max: c[0]}
	for _, p := range c[1:] {
		r.Min.X = min(r.Min.X, p.X)
		r.Min.Y = min(r.Min.Y, p.Y)
		r.Max.X = max(r.Max.X, p.X)
		r.Max.Y = max(r.Max.Y, p.Y)
	}
	return r
}
