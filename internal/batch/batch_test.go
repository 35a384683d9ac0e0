package batch

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contour2dxf/internal/contour"
	"contour2dxf/internal/models"
	"contour2dxf/internal/pipeline/pipelinetest"
)

var square = contour.Contour{{10, 10}, {30, 10}, {30, 30}, {10, 30}}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 40))))
	return path
}

func defaultOptions() Options {
	return Options{
		Jobs:       2,
		Parameters: models.DefaultParameters(),
		Style:      models.DefaultOverlayStyle(),
	}
}

func TestNewRunnerRejectsInvalidOptions(t *testing.T) {
	opts := defaultOptions()
	opts.Parameters.BlurKernelSize = 4
	_, err := NewRunner(pipelinetest.New(square), opts, nil)
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)

	opts = defaultOptions()
	opts.Style.Thickness = 0
	_, err = NewRunner(pipelinetest.New(square), opts, nil)
	assert.Error(t, err)
}

func TestProcessFileWritesDXFNextToInput(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "part.png")

	r, err := NewRunner(pipelinetest.New(square), defaultOptions(), nil)
	require.NoError(t, err)

	res := r.ProcessFile(context.Background(), input)
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(dir, "part.dxf"), res.Output)
	assert.Equal(t, 4, res.Points)
	assert.Equal(t, 1, res.Contours)
	assert.InDelta(t, 400.0, res.Area, 1e-9)

	data, err := os.ReadFile(res.Output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "0\nSECTION\n"))
	assert.Contains(t, string(data), "LWPOLYLINE")
}

func TestProcessFileWritesStages(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "part.png")

	opts := defaultOptions()
	opts.OutDir = filepath.Join(dir, "out")
	opts.StagesDir = filepath.Join(dir, "stages")
	r, err := NewRunner(pipelinetest.New(square), opts, nil)
	require.NoError(t, err)

	res := r.ProcessFile(context.Background(), input)
	require.NoError(t, res.Err)
	assert.FileExists(t, filepath.Join(opts.OutDir, "part.dxf"))
	for _, stage := range []string{"input", "edges", "filled", "final"} {
		assert.FileExists(t, filepath.Join(opts.StagesDir, "part_"+stage+".png"))
	}
}

func TestProcessFileNoContours(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "blank.png")

	r, err := NewRunner(pipelinetest.New(), defaultOptions(), nil)
	require.NoError(t, err)

	res := r.ProcessFile(context.Background(), input)
	assert.ErrorIs(t, res.Err, contour.ErrNoContours)
	assert.NoFileExists(t, filepath.Join(dir, "blank.dxf"))
}

func TestRunCountsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "a.png")
	other := writePNG(t, dir, "b.png")
	missing := filepath.Join(dir, "missing.png")

	opts := defaultOptions()
	opts.OutDir = filepath.Join(dir, "out")
	r, err := NewRunner(pipelinetest.New(square), opts, nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), []string{good, missing, other})
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, 1, summary.Failed)

	assert.NoError(t, summary.Results[0].Err)
	assert.Error(t, summary.Results[1].Err)
	assert.NoError(t, summary.Results[2].Err)
	assert.Equal(t, missing, summary.Results[1].Input)

	assert.FileExists(t, filepath.Join(opts.OutDir, "a.dxf"))
	assert.FileExists(t, filepath.Join(opts.OutDir, "b.dxf"))
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "a.png")

	r, err := NewRunner(pipelinetest.New(square), defaultOptions(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Run(ctx, []string{input})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "a.dxf"))
}

func TestWatchReprocessesOnWrite(t *testing.T) {
	dir := t.TempDir()
	input := writePNG(t, dir, "part.png")
	output := filepath.Join(dir, "part.dxf")

	r, err := NewRunner(pipelinetest.New(square), defaultOptions(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, []string{input}) }()

	// Give the watcher time to register before the write.
	time.Sleep(100 * time.Millisecond)
	writePNG(t, dir, "part.png")

	assert.Eventually(t, func() bool {
		_, err := os.Stat(output)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestDebouncerDeliversOncePerSettledBurst(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	d := newDebouncer(10*time.Millisecond, done)
	defer d.stop()

	d.trigger("a")
	d.trigger("a")

	// The timer has fired and its callback is waiting on ready.
	time.Sleep(50 * time.Millisecond)
	d.trigger("a")

	select {
	case name := <-d.ready:
		assert.Equal(t, "a", name)
		d.fired(name)
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}

	select {
	case name := <-d.ready:
		t.Fatalf("unexpected second delivery of %s", name)
	case <-time.After(100 * time.Millisecond):
	}

	d.trigger("a")
	select {
	case name := <-d.ready:
		assert.Equal(t, "a", name)
	case <-time.After(time.Second):
		t.Fatal("no delivery after re-trigger")
	}
}
