package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"
)

const (
	PaneWidth  = 420
	PaneHeight = 315

	// Crops larger than this are downscaled before they reach the canvas.
	maxRenderWidth  = 1600
	maxRenderHeight = 1200
)

var (
	_ fyne.Scrollable = (*ImagePane)(nil)
	_ fyne.Draggable  = (*ImagePane)(nil)
)

// ImagePane shows one pipeline stage. Scrolling zooms by ZoomStep per notch
// around the pointer, dragging pans.
type ImagePane struct {
	widget.BaseWidget

	title    string
	source   image.Image
	viewport *Viewport
	raster   *canvas.Image
	empty    image.Image
}

func NewImagePane(title string) *ImagePane {
	p := &ImagePane{
		title:    title,
		viewport: NewViewport(0, 0),
		empty:    image.NewUniform(color.RGBA{R: 240, G: 240, B: 240, A: 255}),
	}

	p.raster = canvas.NewImageFromImage(p.empty)
	p.raster.FillMode = canvas.ImageFillContain
	p.raster.ScaleMode = canvas.ImageScaleSmooth
	p.raster.SetMinSize(fyne.NewSize(PaneWidth, PaneHeight))

	p.ExtendBaseWidget(p)
	return p
}

func (p *ImagePane) CreateRenderer() fyne.WidgetRenderer {
	header := widget.NewRichTextFromMarkdown("**" + p.title + "**")
	bg := canvas.NewRectangle(color.RGBA{R: 252, G: 252, B: 252, A: 255})
	return widget.NewSimpleRenderer(container.NewBorder(header, nil, nil, nil, container.NewStack(bg, p.raster)))
}

// SetImage replaces the shown image and resets zoom and pan. Nil clears the pane.
func (p *ImagePane) SetImage(img image.Image) {
	p.source = img
	if img == nil {
		p.viewport.Reset(0, 0)
	} else {
		b := img.Bounds()
		p.viewport.Reset(b.Dx(), b.Dy())
	}
	p.render()
}

func (p *ImagePane) Image() image.Image {
	return p.source
}

func (p *ImagePane) Zoom() float64 {
	return p.viewport.Zoom()
}

func (p *ImagePane) Scrolled(ev *fyne.ScrollEvent) {
	if p.source == nil || ev.Scrolled.DY == 0 {
		return
	}
	steps := 1
	if ev.Scrolled.DY < 0 {
		steps = -1
	}

	size := p.Size()
	fx, fy := 0.5, 0.5
	if size.Width > 0 && size.Height > 0 {
		fx = float64(ev.Position.X / size.Width)
		fy = float64(ev.Position.Y / size.Height)
	}

	p.viewport.ZoomAt(steps, fx, fy)
	p.render()
}

func (p *ImagePane) Dragged(ev *fyne.DragEvent) {
	if p.source == nil {
		return
	}
	size := p.Size()
	p.viewport.Pan(float64(ev.Dragged.DX), float64(ev.Dragged.DY), float64(size.Width), float64(size.Height))
	p.render()
}

func (p *ImagePane) DragEnd() {}

func (p *ImagePane) render() {
	if p.source == nil {
		p.raster.Image = p.empty
		p.raster.Refresh()
		return
	}

	visible := p.viewport.Visible().Add(p.source.Bounds().Min)
	view := imaging.Fit(imaging.Crop(p.source, visible), maxRenderWidth, maxRenderHeight, imaging.Linear)

	p.raster.Image = view
	p.raster.Refresh()
}
