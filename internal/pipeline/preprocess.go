package pipeline

import (
	"context"
	"fmt"
	"strings"

	"contour2dxf/internal/models"
)

// Stages holds the two binary maps produced by preprocessing.
type Stages struct {
	Edges  models.Raster
	Closed models.Raster
}

func (s *Stages) Close() {
	if s == nil {
		return
	}
	if s.Edges != nil {
		s.Edges.Close()
	}
	if s.Closed != nil {
		s.Closed.Close()
	}
}

// Preprocess produces the edge map (grayscale, blur, Canny) and the closed
// boundary map (two morphological closes, the second fed by the first).
func Preprocess(ctx context.Context, backend Backend, src models.Raster, params models.Parameters) (*Stages, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	edgeChain := newEdgeChain(backend)
	edges, err := edgeChain.Execute(ctx, src, params)
	if err != nil {
		return nil, fmt.Errorf("edge detection failed (%s): %w", strings.Join(edgeChain.StepNames(), " -> "), err)
	}

	closingChain := newClosingChain(backend)
	closed, err := closingChain.Execute(ctx, edges, params)
	if err != nil {
		edges.Close()
		return nil, fmt.Errorf("boundary closing failed (%s): %w", strings.Join(closingChain.StepNames(), " -> "), err)
	}

	return &Stages{Edges: edges, Closed: closed}, nil
}
