package components

import (
	"image"
	"math"
)

const (
	ZoomStep = 1.1
	MinZoom  = 1.0
	MaxZoom  = 32.0
)

// Viewport tracks which part of an image a pane shows. Zoom 1 shows the
// whole image; the centre is kept so the visible window never leaves it.
type Viewport struct {
	width, height    int
	zoom             float64
	centerX, centerY float64
}

func NewViewport(width, height int) *Viewport {
	v := &Viewport{}
	v.Reset(width, height)
	return v
}

// Reset shows the whole of a width x height image.
func (v *Viewport) Reset(width, height int) {
	v.width = width
	v.height = height
	v.zoom = MinZoom
	v.centerX = float64(width) / 2
	v.centerY = float64(height) / 2
}

func (v *Viewport) Zoom() float64 {
	return v.zoom
}

// ZoomAt zooms by ZoomStep per step (negative steps zoom out) keeping the
// image point under the pane fraction (fx, fy) in place.
func (v *Viewport) ZoomAt(steps int, fx, fy float64) {
	if v.width == 0 || v.height == 0 || steps == 0 {
		return
	}
	fx = clamp(fx, 0, 1)
	fy = clamp(fy, 0, 1)

	visW, visH := v.visibleSize()
	left := v.centerX - visW/2
	top := v.centerY - visH/2
	anchorX := left + fx*visW
	anchorY := top + fy*visH

	v.zoom = clamp(v.zoom*math.Pow(ZoomStep, float64(steps)), MinZoom, MaxZoom)

	visW, visH = v.visibleSize()
	v.centerX = anchorX - fx*visW + visW/2
	v.centerY = anchorY - fy*visH + visH/2
	v.clampCenter()
}

// Pan moves the view by a drag of (dx, dy) screen units on a pane of
// paneW x paneH. Dragging right reveals content to the left.
func (v *Viewport) Pan(dx, dy, paneW, paneH float64) {
	if paneW <= 0 || paneH <= 0 {
		return
	}
	visW, visH := v.visibleSize()
	v.centerX -= dx * visW / paneW
	v.centerY -= dy * visH / paneH
	v.clampCenter()
}

// Visible returns the shown region in image coordinates, at least 1x1.
func (v *Viewport) Visible() image.Rectangle {
	if v.width == 0 || v.height == 0 {
		return image.Rectangle{}
	}
	visW, visH := v.visibleSize()
	x0 := int(math.Round(v.centerX - visW/2))
	y0 := int(math.Round(v.centerY - visH/2))
	w := max(1, int(math.Round(visW)))
	h := max(1, int(math.Round(visH)))

	x0 = min(max(x0, 0), v.width-w)
	y0 = min(max(y0, 0), v.height-h)
	return image.Rect(x0, y0, x0+w, y0+h)
}

func (v *Viewport) visibleSize() (float64, float64) {
	return float64(v.width) / v.zoom, float64(v.height) / v.zoom
}

func (v *Viewport) clampCenter() {
	visW, visH := v.visibleSize()
	v.centerX = clamp(v.centerX, visW/2, float64(v.width)-visW/2)
	v.centerY = clamp(v.centerY, visH/2, float64(v.height)-visH/2)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
