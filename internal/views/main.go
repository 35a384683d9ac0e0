package views

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"contour2dxf/internal/models"
	"contour2dxf/internal/views/components"
)

// MainView lays out the toolbar, the four stage panes, the parameter form
// and the status bar. It holds no session state.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	inputPane     *components.ImagePane
	edgesPane     *components.ImagePane
	filledPane    *components.ImagePane
	finalPane     *components.ImagePane
	paramPanel    *components.ParameterPanel
	statusBar     *components.StatusBar
}

func NewMainView(window fyne.Window) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents()
	view.buildLayout()

	return view
}

func (mv *MainView) initializeComponents() {
	mv.toolbar = components.NewToolbar()
	mv.inputPane = components.NewImagePane("Input")
	mv.edgesPane = components.NewImagePane("Edges")
	mv.filledPane = components.NewImagePane("Largest contour")
	mv.finalPane = components.NewImagePane("Smoothed overlay")
	mv.paramPanel = components.NewParameterPanel()
	mv.statusBar = components.NewStatusBar()
}

func (mv *MainView) buildLayout() {
	panes := container.NewGridWithColumns(2,
		mv.inputPane, mv.edgesPane,
		mv.filledPane, mv.finalPane,
	)

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		container.NewPadded(mv.paramPanel.GetContainer()),
		panes,
	)

	mv.window.SetContent(mv.mainContainer)
}

// Handlers are called on the UI goroutine.

func (mv *MainView) SetBrowseHandler(handler func())  { mv.toolbar.SetBrowseHandler(handler) }
func (mv *MainView) SetLoadHandler(handler func())    { mv.toolbar.SetLoadHandler(handler) }
func (mv *MainView) SetPreviewHandler(handler func()) { mv.toolbar.SetPreviewHandler(handler) }
func (mv *MainView) SetExportHandler(handler func())  { mv.toolbar.SetExportHandler(handler) }

func (mv *MainView) SetPath(path string) {
	fyne.Do(func() {
		mv.toolbar.SetPath(path)
	})
}

func (mv *MainView) SetInputImage(img image.Image) {
	fyne.Do(func() {
		mv.inputPane.SetImage(img)
	})
}

// SetPreview shows all four stages of result.
func (mv *MainView) SetPreview(result *models.PreviewResult) {
	if result == nil {
		return
	}
	fyne.Do(func() {
		mv.inputPane.SetImage(result.Input)
		mv.edgesPane.SetImage(result.Edges)
		mv.filledPane.SetImage(result.Filled)
		mv.finalPane.SetImage(result.Final)
		mv.toolbar.SetExportEnabled(len(result.Smoothed) > 0)
	})
}

// ParameterForm returns the raw parameter text as typed.
func (mv *MainView) ParameterForm() models.ParameterForm {
	return mv.paramPanel.Form()
}

func (mv *MainView) SetParameters(p models.Parameters) {
	fyne.Do(func() {
		mv.paramPanel.SetParameters(p)
	})
}

func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

func (mv *MainView) Status() string {
	return mv.statusBar.GetStatus()
}

func (mv *MainView) SetImageInfo(data *models.ImageData) {
	if data == nil {
		return
	}
	fyne.Do(func() {
		mv.statusBar.SetImageInfo(data.Width, data.Height, data.Channels, data.Format)
	})
}

func (mv *MainView) SetMemoryInfo(activeMats, peakBytes int64) {
	fyne.Do(func() {
		mv.statusBar.SetMemoryInfo(activeMats, peakBytes)
	})
}

func (mv *MainView) ShowError(err error) {
	fyne.Do(func() {
		dialog.ShowError(err, mv.window)
	})
}

// ShowOpenDialog asks for an image file. A nil reader means the user cancelled.
func (mv *MainView) ShowOpenDialog(extensions []string, callback func(fyne.URIReadCloser, error)) {
	fyne.Do(func() {
		d := dialog.NewFileOpen(callback, mv.window)
		d.SetFilter(storage.NewExtensionFileFilter(extensions))
		d.Show()
	})
}

// ShowSaveDialog asks for a .dxf destination. A nil writer means the user cancelled.
func (mv *MainView) ShowSaveDialog(fileName string, callback func(fyne.URIWriteCloser, error)) {
	fyne.Do(func() {
		d := dialog.NewFileSave(callback, mv.window)
		d.SetFileName(fileName)
		d.SetFilter(storage.NewExtensionFileFilter([]string{".dxf"}))
		d.Show()
	})
}

// Panes returns the input, edges, filled and final panes in display order.
func (mv *MainView) Panes() [4]*components.ImagePane {
	return [4]*components.ImagePane{mv.inputPane, mv.edgesPane, mv.filledPane, mv.finalPane}
}

func (mv *MainView) GetParameterPanel() *components.ParameterPanel {
	return mv.paramPanel
}

func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}

func (mv *MainView) GetContainer() *fyne.Container {
	return mv.mainContainer
}
