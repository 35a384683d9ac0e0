package chain

import (
	"context"
	"errors"
	"testing"

	"contour2dxf/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type raster struct {
	label  string
	closed bool
}

func (r *raster) Rows() int     { return 1 }
func (r *raster) Cols() int     { return 1 }
func (r *raster) Channels() int { return 1 }
func (r *raster) Close()        { r.closed = true }

type step struct {
	name    string
	skip    bool
	err     error
	outputs []*raster
}

func (s *step) Name() string                         { return s.name }
func (s *step) ShouldExecute(models.Parameters) bool { return !s.skip }

func (s *step) Apply(_ context.Context, in models.Raster, _ models.Parameters) (models.Raster, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := &raster{label: in.(*raster).label + ">" + s.name}
	s.outputs = append(s.outputs, out)
	return out, nil
}

func TestExecuteRunsStepsInOrder(t *testing.T) {
	a, b, c := &step{name: "a"}, &step{name: "b"}, &step{name: "c"}
	input := &raster{label: "in"}

	out, err := NewProcessingChain(a, b, c).Execute(context.Background(), input, models.Parameters{})
	require.NoError(t, err)

	assert.Equal(t, "in>a>b>c", out.(*raster).label)
	assert.False(t, input.closed, "caller owns the input")
	assert.True(t, a.outputs[0].closed)
	assert.True(t, b.outputs[0].closed)
	assert.False(t, c.outputs[0].closed)
}

func TestExecuteSkipsSteps(t *testing.T) {
	a, b := &step{name: "a", skip: true}, &step{name: "b"}

	out, err := NewProcessingChain(a, b).Execute(context.Background(), &raster{label: "in"}, models.Parameters{})
	require.NoError(t, err)
	assert.Equal(t, "in>b", out.(*raster).label)
	assert.Empty(t, a.outputs)
}

func TestExecuteClosesIntermediateOnFailure(t *testing.T) {
	boom := errors.New("boom")
	a, b := &step{name: "a"}, &step{name: "b", err: boom}

	out, err := NewProcessingChain(a, b).Execute(context.Background(), &raster{label: "in"}, models.Parameters{})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step b failed")
	assert.True(t, a.outputs[0].closed)
}

func TestExecuteHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProcessingChain(&step{name: "a"}).Execute(ctx, &raster{}, models.Parameters{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteWithoutOutput(t *testing.T) {
	input := &raster{}
	_, err := NewProcessingChain(&step{name: "a", skip: true}).Execute(context.Background(), input, models.Parameters{})
	assert.Error(t, err)
	assert.False(t, input.closed)
}

func TestStepNames(t *testing.T) {
	pc := NewProcessingChain(&step{name: "grayscale"}, &step{name: "canny"})
	assert.Equal(t, []string{"grayscale", "canny"}, pc.StepNames())
}
