package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"contour2dxf/internal/models"
)

// ParameterPanel holds the seven free-text parameter fields. Text is only
// parsed when a preview is requested.
type ParameterPanel struct {
	container *fyne.Container
	entries   map[string]*widget.Entry
	order     []string
}

var parameterLabels = map[string]string{
	models.FieldBlurKernelSize:   "Blur kernel size",
	models.FieldBlurSigma:        "Blur sigma",
	models.FieldCannyThreshold1:  "Canny threshold 1",
	models.FieldCannyThreshold2:  "Canny threshold 2",
	models.FieldClosing1Kernel:   "Closing 1 kernel",
	models.FieldClosing2Kernel:   "Closing 2 kernel",
	models.FieldSmoothWindowSize: "Smoothing window",
}

func NewParameterPanel() *ParameterPanel {
	pp := &ParameterPanel{
		entries: make(map[string]*widget.Entry),
		order: []string{
			models.FieldBlurKernelSize,
			models.FieldBlurSigma,
			models.FieldCannyThreshold1,
			models.FieldCannyThreshold2,
			models.FieldClosing1Kernel,
			models.FieldClosing2Kernel,
			models.FieldSmoothWindowSize,
		},
	}

	form := widget.NewForm()
	for _, field := range pp.order {
		entry := widget.NewEntry()
		pp.entries[field] = entry
		form.Append(parameterLabels[field], entry)
	}

	pp.container = container.NewVBox(
		widget.NewRichTextFromMarkdown("**Parameters**"),
		form,
	)
	pp.SetParameters(models.DefaultParameters())
	return pp
}

// SetParameters fills every field from p.
func (pp *ParameterPanel) SetParameters(p models.Parameters) {
	form := p.Form()
	pp.entries[models.FieldBlurKernelSize].SetText(form.BlurKernelSize)
	pp.entries[models.FieldBlurSigma].SetText(form.BlurSigma)
	pp.entries[models.FieldCannyThreshold1].SetText(form.CannyThreshold1)
	pp.entries[models.FieldCannyThreshold2].SetText(form.CannyThreshold2)
	pp.entries[models.FieldClosing1Kernel].SetText(form.Closing1Kernel)
	pp.entries[models.FieldClosing2Kernel].SetText(form.Closing2Kernel)
	pp.entries[models.FieldSmoothWindowSize].SetText(form.SmoothWindowSize)
}

// Form returns the raw field text.
func (pp *ParameterPanel) Form() models.ParameterForm {
	return models.ParameterForm{
		BlurKernelSize:   pp.entries[models.FieldBlurKernelSize].Text,
		BlurSigma:        pp.entries[models.FieldBlurSigma].Text,
		CannyThreshold1:  pp.entries[models.FieldCannyThreshold1].Text,
		CannyThreshold2:  pp.entries[models.FieldCannyThreshold2].Text,
		Closing1Kernel:   pp.entries[models.FieldClosing1Kernel].Text,
		Closing2Kernel:   pp.entries[models.FieldClosing2Kernel].Text,
		SmoothWindowSize: pp.entries[models.FieldSmoothWindowSize].Text,
	}
}

// Entry exposes a field for tests and focus handling.
func (pp *ParameterPanel) Entry(field string) *widget.Entry {
	return pp.entries[field]
}

func (pp *ParameterPanel) GetContainer() *fyne.Container {
	return pp.container
}
