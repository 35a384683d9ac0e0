package controllers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"

	"contour2dxf/internal/contour"
	"contour2dxf/internal/logger"
	"contour2dxf/internal/models"
	"contour2dxf/internal/opencv/memory"
	"contour2dxf/internal/pipeline"
	"contour2dxf/internal/services"
	"contour2dxf/internal/views"
)

// MainController connects the view's four actions to the contour session.
// Every action runs to completion on the UI goroutine; failures are logged,
// shown in the status bar and in an error dialog, and leave the panes as they were.
type MainController struct {
	service  *services.ContourService
	tracker  *memory.Tracker
	logger   logger.Logger
	mainView *views.MainView
}

// NewMainController wires service to view. tracker may be nil.
func NewMainController(service *services.ContourService, tracker *memory.Tracker, log logger.Logger) *MainController {
	if log == nil {
		log = logger.Nop()
	}
	return &MainController{
		service: service,
		tracker: tracker,
		logger:  log,
	}
}

func (mc *MainController) SetMainView(view *views.MainView) {
	mc.mainView = view
	view.SetBrowseHandler(mc.Browse)
	view.SetLoadHandler(mc.Load)
	view.SetPreviewHandler(mc.Preview)
	view.SetExportHandler(mc.Export)
	view.SetParameters(mc.service.Parameters())
}

// Browse opens the image picker.
func (mc *MainController) Browse() {
	mc.mainView.ShowOpenDialog(pipeline.SupportedExtensions, func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mc.handleError("Browse", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		mc.SelectPath(path)
	})
}

// SelectPath records path as the current image without reading it.
func (mc *MainController) SelectPath(path string) {
	if err := mc.service.Browse(path); err != nil {
		mc.handleError("Browse", err)
		return
	}
	mc.mainView.SetPath(path)
	mc.mainView.UpdateStatus("Selected " + filepath.Base(path))
}

func (mc *MainController) Load() {
	data, err := mc.service.Load(context.Background())
	if err != nil {
		mc.handleError("Load", err)
		return
	}

	mc.mainView.SetInputImage(data.Image)
	mc.mainView.SetImageInfo(data)
	mc.mainView.UpdateStatus("Image loaded")
	mc.refreshMemoryInfo()
}

func (mc *MainController) Preview() {
	result, err := mc.service.Preview(context.Background(), mc.mainView.ParameterForm())
	if err != nil {
		mc.handleError("Preview", err)
		return
	}

	mc.mainView.SetPreview(result)
	mc.mainView.UpdateStatus(fmt.Sprintf("Contour: %d points, area %.0f px (%d found) in %d ms",
		len(result.Smoothed), result.Area, result.ContourCount, result.ProcessTime.Milliseconds()))
	mc.refreshMemoryInfo()
}

// Export opens the save dialog for the last smoothed contour.
func (mc *MainController) Export() {
	if !mc.service.HasContour() {
		mc.handleError("Export", services.ErrNoContour)
		return
	}

	mc.mainView.ShowSaveDialog(mc.suggestedFileName(), func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mc.handleError("Export", err)
			return
		}
		if writer == nil {
			return
		}

		path := writer.URI().Path()
		err = mc.service.ExportTo(writer)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			mc.handleError("Export", fmt.Errorf("failed to write %s: %w", path, err))
			return
		}
		mc.exported(path)
	})
}

// ExportPath writes the last smoothed contour to path.
func (mc *MainController) ExportPath(path string) {
	if err := mc.service.Export(path); err != nil {
		mc.handleError("Export", err)
		return
	}
	mc.exported(path)
}

func (mc *MainController) exported(path string) {
	mc.mainView.UpdateStatus("Saved " + filepath.Base(path))
}

func (mc *MainController) suggestedFileName() string {
	base := filepath.Base(mc.service.Path())
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".dxf"
}

func (mc *MainController) refreshMemoryInfo() {
	if mc.tracker == nil {
		return
	}
	stats := mc.tracker.GetStats()
	mc.mainView.SetMemoryInfo(stats.ActiveMats, stats.PeakBytes)
}

// handleError reports err for action without touching the panes.
func (mc *MainController) handleError(action string, err error) {
	mc.logger.Error("MainController", err, map[string]interface{}{
		"action": action,
	})

	mc.mainView.UpdateStatus(fmt.Sprintf("%s failed: %s", action, userMessage(err)))
	mc.mainView.ShowError(err)
}

func userMessage(err error) string {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		return fmt.Sprintf("invalid %s %q: %s", vErr.Parameter, fmt.Sprint(vErr.Value), vErr.Message)
	case errors.Is(err, contour.ErrNoContours):
		return "no contour found, try other parameters"
	default:
		return err.Error()
	}
}

// Shutdown reports native Mats that were never released.
func (mc *MainController) Shutdown() {
	if mc.tracker == nil {
		return
	}
	for _, leak := range mc.tracker.Leaks() {
		mc.logger.Warning("MainController", "native Mat not released", map[string]interface{}{
			"id":      leak.ID,
			"tag":     leak.Tag,
			"bytes":   leak.Size,
			"created": leak.CreatedAt,
		})
	}
}
