package chain

import (
	"context"
	"fmt"

	"contour2dxf/internal/models"
)

type ProcessingStep interface {
	Apply(ctx context.Context, input models.Raster, params models.Parameters) (models.Raster, error)
	Name() string
	ShouldExecute(params models.Parameters) bool
}

// ProcessingChain runs steps in order, each consuming the previous output.
// Intermediate rasters are closed as soon as the next step has produced its
// result; the caller keeps ownership of the input.
type ProcessingChain struct {
	steps []ProcessingStep
}

func NewProcessingChain(steps ...ProcessingStep) *ProcessingChain {
	return &ProcessingChain{
		steps: steps,
	}
}

func (pc *ProcessingChain) Execute(ctx context.Context, input models.Raster, params models.Parameters) (models.Raster, error) {
	current := input
	needsCleanup := false

	for _, step := range pc.steps {
		select {
		case <-ctx.Done():
			if needsCleanup {
				current.Close()
			}
			return nil, ctx.Err()
		default:
		}

		if !step.ShouldExecute(params) {
			continue
		}

		result, err := step.Apply(ctx, current, params)
		if err != nil {
			if needsCleanup {
				current.Close()
			}
			return nil, fmt.Errorf("step %s failed: %w", step.Name(), err)
		}

		if needsCleanup {
			current.Close()
		}

		current = result
		needsCleanup = true
	}

	if !needsCleanup {
		return nil, fmt.Errorf("chain produced no output: no step executed")
	}
	return current, nil
}

// StepNames lists the steps in execution order.
func (pc *ProcessingChain) StepNames() []string {
	names := make([]string, len(pc.steps))
	for i, step := range pc.steps {
		names[i] = step.Name()
	}
	return names
}
