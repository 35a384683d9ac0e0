// Package batch runs the preview and export pipeline over image files
// without a GUI.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"contour2dxf/internal/logger"
	"contour2dxf/internal/models"
	"contour2dxf/internal/pipeline"
	"contour2dxf/internal/services"
)

// Options configures a batch run.
type Options struct {
	// OutDir receives <name>.dxf. Empty writes next to each input.
	OutDir string
	// StagesDir receives the four preview stages as PNG. Empty disables them.
	StagesDir  string
	Jobs       int
	Parameters models.Parameters
	Style      models.OverlayStyle
}

// Result describes one processed file.
type Result struct {
	Input    string
	Output   string
	Points   int
	Area     float64
	Contours int
	Err      error
}

// Summary collects the results of Run in input order.
type Summary struct {
	Results []Result
	Failed  int
}

type Runner struct {
	backend pipeline.Backend
	opts    Options
	logger  logger.Logger
}

func NewRunner(backend pipeline.Backend, opts Options, log logger.Logger) (*Runner, error) {
	if err := opts.Parameters.Validate(); err != nil {
		return nil, err
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if opts.Style.Thickness < 1 {
		return nil, fmt.Errorf("overlay thickness must be positive, got %d", opts.Style.Thickness)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{backend: backend, opts: opts, logger: log}, nil
}

// Run processes every path with at most Jobs files in flight. Per-file
// failures are recorded in the summary and do not stop the run; only a
// cancelled context does.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	summary := &Summary{Results: make([]Result, len(paths))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Jobs)

	var mu sync.Mutex
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := r.ProcessFile(ctx, path)

			mu.Lock()
			summary.Results[i] = res
			if res.Err != nil {
				summary.Failed++
			}
			mu.Unlock()

			if errors.Is(res.Err, context.Canceled) {
				return res.Err
			}
			return nil
		})
	}

	err := g.Wait()
	r.logger.Info("Batch", "run completed", map[string]interface{}{
		"files":  len(paths),
		"failed": summary.Failed,
	})
	return summary, err
}

// ProcessFile previews path and exports its smoothed contour.
func (r *Runner) ProcessFile(ctx context.Context, path string) Result {
	res := Result{Input: path, Output: r.outputPath(path)}

	svc := services.NewContourService(r.backend, r.logger)
	svc.SetOverlayStyle(r.opts.Style)

	err := svc.Browse(path)
	if err == nil {
		var preview *models.PreviewResult
		preview, err = svc.PreviewWith(ctx, r.opts.Parameters)
		if err == nil {
			res.Points = len(preview.Smoothed)
			res.Area = preview.Area
			res.Contours = preview.ContourCount
			err = r.writeStages(path, preview)
		}
	}
	if err == nil {
		err = os.MkdirAll(filepath.Dir(res.Output), 0o755)
	}
	if err == nil {
		err = svc.Export(res.Output)
	}

	if err != nil {
		res.Err = fmt.Errorf("%s: %w", filepath.Base(path), err)
		r.logger.Error("Batch", res.Err, map[string]interface{}{"input": path})
		return res
	}

	r.logger.Info("Batch", "exported", map[string]interface{}{
		"input":  path,
		"output": res.Output,
		"points": res.Points,
		"area":   res.Area,
	})
	return res
}

func (r *Runner) outputPath(input string) string {
	dir := r.opts.OutDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, stem(input)+".dxf")
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (r *Runner) writeStages(input string, preview *models.PreviewResult) error {
	if r.opts.StagesDir == "" {
		return nil
	}
	if err := os.MkdirAll(r.opts.StagesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create stages directory: %w", err)
	}

	stages := []struct {
		name string
		img  image.Image
	}{
		{"input", preview.Input},
		{"edges", preview.Edges},
		{"filled", preview.Filled},
		{"final", preview.Final},
	}
	for _, s := range stages {
		out := filepath.Join(r.opts.StagesDir, fmt.Sprintf("%s_%s.png", stem(input), s.name))
		if err := imaging.Save(s.img, out); err != nil {
			return fmt.Errorf("failed to save %s stage: %w", s.name, err)
		}
	}
	return nil
}
