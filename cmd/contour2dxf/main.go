package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"contour2dxf/internal/config"
	"contour2dxf/internal/controllers"
	"contour2dxf/internal/logger"
	"contour2dxf/internal/opencv/memory"
	"contour2dxf/internal/processing"
	"contour2dxf/internal/services"
	"contour2dxf/internal/shutdown"
	"contour2dxf/internal/views"
)

const (
	AppName    = "Contour to DXF"
	AppID      = "com.imageprocessing.contour2dxf"
	AppVersion = "1.0.0"
)

// Application owns the window and the objects behind it.
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	controller *controllers.MainController
	view       *views.MainView
	service    *services.ContourService
	tracker    *memory.Tracker
	shutdown   *shutdown.Manager
	running    atomic.Bool
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	application, err := NewApplication(ctx)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	application.Run()
}

// NewApplication builds the window and wires service, controller and view.
// A preset named by CONTOUR2DXF_PRESET replaces the default parameters.
func NewApplication(ctx context.Context) (*Application, error) {
	appLogger := config.NewLoggerFromEnv(os.Stderr)

	tracker := memory.NewTracker()
	backend := processing.NewOpenCVBackend(tracker)
	service := services.NewContourService(backend, appLogger)

	if path := config.PresetPathFromEnv(); path != "" {
		preset, err := config.LoadPreset(path)
		if err != nil {
			return nil, err
		}
		if err := service.SetParameters(preset.Parameters); err != nil {
			return nil, err
		}
		service.SetOverlayStyle(preset.Style)
		appLogger.Info("Application", "preset loaded", map[string]interface{}{"path": path})
	}

	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})
	fyneApp := app.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(1280, 860))
	window.CenterOnScreen()

	view := views.NewMainView(window)
	controller := controllers.NewMainController(service, tracker, appLogger)
	controller.SetMainView(view)

	a := &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger,
		controller: controller,
		view:       view,
		service:    service,
		tracker:    tracker,
		shutdown:   shutdown.NewManager(ctx, appLogger, 0),
	}

	a.shutdown.Register("controller", controller)
	a.shutdown.Register("window", shutdown.Func(func() {
		if a.running.Load() {
			fyne.Do(fyneApp.Quit)
		}
	}))
	window.SetOnClosed(func() {
		appLogger.Info("Application", "window closed", nil)
		go a.shutdown.Shutdown()
	})

	appLogger.Info("Application", "initialized", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
	})
	return a, nil
}

// Run shows the window and blocks until it is closed or a signal arrives.
func (a *Application) Run() {
	go a.monitorMemory()

	a.running.Store(true)
	a.window.ShowAndRun()
	a.running.Store(false)
	a.shutdown.Shutdown()
}

func (a *Application) monitorMemory() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats := a.tracker.GetStats()
			a.logger.Debug("Application", "memory", map[string]interface{}{
				"active_mats": stats.ActiveMats,
				"peak_bytes":  stats.PeakBytes,
				"goroutines":  runtime.NumGoroutine(),
			})
		case <-a.shutdown.Context().Done():
			return
		}
	}
}
