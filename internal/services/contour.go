package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/looplab/fsm"

	"contour2dxf/internal/dxf"
	"contour2dxf/internal/logger"
	"contour2dxf/internal/models"
	"contour2dxf/internal/pipeline"
)

var (
	ErrNoImage   = errors.New("no image selected")
	ErrNoContour = errors.New("no contour to save")
)

// Session states.
const (
	StateEmpty     = "empty"
	StateSelected  = "selected"
	StatePreviewed = "previewed"
)

const (
	eventBrowse  = "browse"
	eventLoad    = "load"
	eventPreview = "preview"
)

// ContourService holds one editing session: the selected image path and the
// result of the last successful preview, which is what Export writes.
type ContourService struct {
	backend   pipeline.Backend
	processor *pipeline.Processor
	logger    logger.Logger

	mu     sync.RWMutex
	fsm    *fsm.FSM
	path   string
	image  *models.ImageData
	last   *models.PreviewResult
	style  models.OverlayStyle
	params models.Parameters
}

func NewContourService(backend pipeline.Backend, log logger.Logger) *ContourService {
	if log == nil {
		log = logger.Nop()
	}

	s := &ContourService{
		backend:   backend,
		processor: pipeline.NewProcessor(backend, log),
		logger:    log,
		style:     models.DefaultOverlayStyle(),
		params:    models.DefaultParameters(),
	}
	s.fsm = s.newFSM()
	return s
}

func (s *ContourService) newFSM() *fsm.FSM {
	return fsm.NewFSM(
		StateEmpty,
		fsm.Events{
			{Name: eventBrowse, Src: []string{StateEmpty, StateSelected}, Dst: StateSelected},
			{Name: eventBrowse, Src: []string{StatePreviewed}, Dst: StatePreviewed},
			{Name: eventLoad, Src: []string{StateSelected}, Dst: StateSelected},
			{Name: eventLoad, Src: []string{StatePreviewed}, Dst: StatePreviewed},
			{Name: eventPreview, Src: []string{StateSelected, StatePreviewed}, Dst: StatePreviewed},
		},
		fsm.Callbacks{
			"after_event": func(e *fsm.Event) {
				if e.Src != e.Dst {
					s.logger.Debug("ContourService", "session state changed", map[string]interface{}{
						"event": e.Event,
						"from":  e.Src,
						"to":    e.Dst,
					})
				}
			},
		},
	)
}

// fire applies event, treating a self-transition as success.
func (s *ContourService) fire(event string) error {
	err := s.fsm.Event(event)
	if _, ok := err.(fsm.NoTransitionError); err != nil && !ok {
		return err
	}
	return nil
}

// State returns the current session state.
func (s *ContourService) State() string {
	return s.fsm.Current()
}

// Browse selects the image at path. Nothing is read until Load or Preview.
// A contour from an earlier preview stays exportable.
func (s *ContourService) Browse(path string) error {
	if path == "" {
		return ErrNoImage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fire(eventBrowse); err != nil {
		return err
	}
	s.path = path
	s.image = nil

	s.logger.Info("ContourService", "image selected", map[string]interface{}{"path": path})
	return nil
}

func (s *ContourService) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Load decodes the selected image and returns it for display.
func (s *ContourService) Load(ctx context.Context) (*models.ImageData, error) {
	path := s.Path()
	if path == "" || !s.fsm.Can(eventLoad) {
		return nil, ErrNoImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, raster, err := pipeline.ReadImage(path, s.backend)
	if err != nil {
		return nil, err
	}
	defer raster.Close()

	data.Image, err = s.backend.ToImage(raster)
	if err != nil {
		return nil, fmt.Errorf("image conversion failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fire(eventLoad); err != nil {
		return nil, err
	}
	s.image = data

	s.logger.Info("ContourService", "image loaded", map[string]interface{}{
		"path":     path,
		"width":    data.Width,
		"height":   data.Height,
		"format":   data.Format,
		"channels": data.Channels,
	})
	return data, nil
}

// Image returns the metadata of the last loaded image, or nil.
func (s *ContourService) Image() *models.ImageData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.image
}

// Preview parses form and runs the full pipeline on the selected image.
// Invalid parameters and pipeline failures leave the session unchanged.
func (s *ContourService) Preview(ctx context.Context, form models.ParameterForm) (*models.PreviewResult, error) {
	if s.Path() == "" {
		return nil, ErrNoImage
	}

	params, err := models.ParseParameters(form)
	if err != nil {
		return nil, err
	}
	return s.PreviewWith(ctx, params)
}

// PreviewWith runs the pipeline with already parsed parameters. The image is
// decoded again from its path on every call.
func (s *ContourService) PreviewWith(ctx context.Context, params models.Parameters) (*models.PreviewResult, error) {
	path := s.Path()
	if path == "" || !s.fsm.Can(eventPreview) {
		return nil, ErrNoImage
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	_, raster, err := pipeline.ReadImage(path, s.backend)
	if err != nil {
		return nil, err
	}
	defer raster.Close()

	result, err := s.processor.Run(ctx, raster, params, s.OverlayStyle())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fire(eventPreview); err != nil {
		return nil, err
	}
	s.last = result
	s.params = params

	return result, nil
}

// Export writes the last smoothed contour to path as a DXF polyline.
func (s *ContourService) Export(path string) error {
	last := s.LastPreview()
	if last == nil {
		return ErrNoContour
	}

	if err := dxf.WriteFile(path, last.Smoothed); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Info("ContourService", "contour exported", map[string]interface{}{
		"path":     path,
		"vertices": len(last.Smoothed),
	})
	return nil
}

// ExportTo writes the last smoothed contour to w.
func (s *ContourService) ExportTo(w io.Writer) error {
	last := s.LastPreview()
	if last == nil {
		return ErrNoContour
	}
	return dxf.WritePolyline(w, last.Smoothed)
}

func (s *ContourService) HasContour() bool {
	return s.LastPreview() != nil
}

func (s *ContourService) LastPreview() *models.PreviewResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Parameters returns the parameters of the last successful preview, or the
// defaults before any.
func (s *ContourService) Parameters() models.Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParameters replaces the remembered parameters, e.g. from a preset.
func (s *ContourService) SetParameters(p models.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
	return nil
}

func (s *ContourService) OverlayStyle() models.OverlayStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

func (s *ContourService) SetOverlayStyle(style models.OverlayStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = style
}
