package components

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contour2dxf/internal/models"
)

func scroll(dy float32) *fyne.ScrollEvent {
	return &fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 50)},
		Scrolled:   fyne.NewDelta(0, dy),
	}
}

func TestImagePaneZoom(t *testing.T) {
	test.NewTempApp(t)

	p := NewImagePane("Input")
	p.Resize(fyne.NewSize(200, 100))

	// no image, no zoom
	p.Scrolled(scroll(10))
	assert.Equal(t, 1.0, p.Zoom())

	p.SetImage(image.NewRGBA(image.Rect(0, 0, 200, 100)))
	require.NotNil(t, p.raster.Image)
	assert.Equal(t, image.Rect(0, 0, 200, 100), p.raster.Image.Bounds())

	p.Scrolled(scroll(10))
	assert.InDelta(t, 1.1, p.Zoom(), 1e-9)
	assert.Less(t, p.raster.Image.Bounds().Dx(), 200)

	p.Scrolled(scroll(-10))
	p.Scrolled(scroll(-10))
	assert.Equal(t, 1.0, p.Zoom())

	// a new image resets the view
	p.Scrolled(scroll(10))
	p.SetImage(image.NewRGBA(image.Rect(0, 0, 50, 50)))
	assert.Equal(t, 1.0, p.Zoom())

	p.SetImage(nil)
	assert.Nil(t, p.Image())
}

func TestImagePaneDragPans(t *testing.T) {
	test.NewTempApp(t)

	p := NewImagePane("Edges")
	p.Resize(fyne.NewSize(PaneWidth, PaneHeight))
	p.SetImage(image.NewRGBA(image.Rect(0, 0, 400, 400)))
	for i := 0; i < 10; i++ {
		p.Scrolled(scroll(1))
	}
	before := p.viewport.Visible()

	p.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(-30, 0)})
	p.DragEnd()
	assert.Greater(t, p.viewport.Visible().Min.X, before.Min.X)
}

func TestParameterPanelRoundTrip(t *testing.T) {
	test.NewTempApp(t)

	pp := NewParameterPanel()
	assert.Equal(t, models.DefaultParameters().Form(), pp.Form())

	p := models.DefaultParameters()
	p.BlurSigma = 2.5
	p.SmoothWindowSize = 11
	pp.SetParameters(p)

	parsed, err := models.ParseParameters(pp.Form())
	require.NoError(t, err)
	assert.Equal(t, p, parsed)

	pp.Entry(models.FieldBlurSigma).SetText("abc")
	assert.Equal(t, "abc", pp.Form().BlurSigma)
}

func TestToolbarHandlers(t *testing.T) {
	test.NewTempApp(t)

	tb := NewToolbar()
	var got []string
	tb.SetBrowseHandler(func() { got = append(got, "browse") })
	tb.SetPreviewHandler(func() { got = append(got, "preview") })

	test.Tap(tb.browseButton)
	test.Tap(tb.previewButton) // disabled until a path is set
	assert.Equal(t, []string{"browse"}, got)

	tb.SetPath("/tmp/part.png")
	assert.Equal(t, "/tmp/part.png", tb.Path())
	test.Tap(tb.previewButton)
	test.Tap(tb.loadButton) // no handler
	assert.Equal(t, []string{"browse", "preview"}, got)

	assert.True(t, tb.exportButton.Disabled())
	tb.SetExportEnabled(true)
	assert.False(t, tb.exportButton.Disabled())
}

func TestStatusBar(t *testing.T) {
	test.NewTempApp(t)

	sb := NewStatusBar()
	sb.SetStatus("Image loaded")
	assert.Equal(t, "Image loaded", sb.GetStatus())

	sb.SetImageInfo(640, 480, 3, "png")
	assert.Equal(t, "Image: 640x480, 3 channels, png", sb.imageInfo.Text)

	sb.SetMemoryInfo(2, 3*1024*1024)
	assert.Equal(t, "Mats: 2 live, peak 3.0 MB", sb.memoryInfo.Text)

	sb.Reset()
	assert.Equal(t, "Ready", sb.GetStatus())
}
