package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Toolbar carries the four session actions and the selected path.
type Toolbar struct {
	container     *fyne.Container
	browseButton  *widget.Button
	loadButton    *widget.Button
	previewButton *widget.Button
	exportButton  *widget.Button
	pathLabel     *widget.Label

	browseHandler  func()
	loadHandler    func()
	previewHandler func()
	exportHandler  func()
}

func NewToolbar() *Toolbar {
	t := &Toolbar{}
	t.createComponents()
	t.buildLayout()
	return t
}

func (t *Toolbar) createComponents() {
	t.browseButton = widget.NewButton("Browse", func() { call(t.browseHandler) })
	t.browseButton.Importance = widget.HighImportance

	t.loadButton = widget.NewButton("Load", func() { call(t.loadHandler) })
	t.loadButton.Disable()

	t.previewButton = widget.NewButton("Preview", func() { call(t.previewHandler) })
	t.previewButton.Importance = widget.HighImportance
	t.previewButton.Disable()

	t.exportButton = widget.NewButton("Save DXF", func() { call(t.exportHandler) })
	t.exportButton.Disable()

	t.pathLabel = widget.NewLabel("No image selected")
	t.pathLabel.Truncation = fyne.TextTruncateEllipsis
}

func (t *Toolbar) buildLayout() {
	buttons := container.NewHBox(
		t.browseButton,
		t.loadButton,
		widget.NewSeparator(),
		t.previewButton,
		t.exportButton,
	)
	t.container = container.NewBorder(nil, nil, buttons, nil, t.pathLabel)
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

func (t *Toolbar) SetBrowseHandler(handler func())  { t.browseHandler = handler }
func (t *Toolbar) SetLoadHandler(handler func())    { t.loadHandler = handler }
func (t *Toolbar) SetPreviewHandler(handler func()) { t.previewHandler = handler }
func (t *Toolbar) SetExportHandler(handler func())  { t.exportHandler = handler }

// SetPath shows the selected image and enables the image actions.
func (t *Toolbar) SetPath(path string) {
	if path == "" {
		t.pathLabel.SetText("No image selected")
		t.loadButton.Disable()
		t.previewButton.Disable()
		return
	}
	t.pathLabel.SetText(path)
	t.loadButton.Enable()
	t.previewButton.Enable()
}

func (t *Toolbar) SetExportEnabled(enabled bool) {
	if enabled {
		t.exportButton.Enable()
	} else {
		t.exportButton.Disable()
	}
}

func (t *Toolbar) Path() string {
	return t.pathLabel.Text
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
