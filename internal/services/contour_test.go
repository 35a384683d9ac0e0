package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contour2dxf/internal/contour"
	"contour2dxf/internal/dxf"
	"contour2dxf/internal/models"
	"contour2dxf/internal/pipeline/pipelinetest"
)

var square = contour.Contour{{10, 10}, {30, 10}, {30, 30}, {10, 30}}

func writePNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "part.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 40))))
	return path
}

func newSession(t *testing.T, contours ...contour.Contour) (*ContourService, *pipelinetest.Backend, string) {
	t.Helper()
	b := pipelinetest.New(contours...)
	s := NewContourService(b, nil)
	path := writePNG(t)
	require.NoError(t, s.Browse(path))
	return s, b, path
}

func TestEmptySession(t *testing.T) {
	s := NewContourService(pipelinetest.New(square), nil)
	ctx := context.Background()

	assert.Equal(t, StateEmpty, s.State())

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = s.Preview(ctx, models.DefaultParameters().Form())
	assert.ErrorIs(t, err, ErrNoImage)

	assert.ErrorIs(t, s.Export(filepath.Join(t.TempDir(), "out.dxf")), ErrNoContour)
	assert.ErrorIs(t, s.ExportTo(&bytes.Buffer{}), ErrNoContour)
	assert.ErrorIs(t, s.Browse(""), ErrNoImage)
	assert.False(t, s.HasContour())
}

func TestBrowseAndLoad(t *testing.T) {
	s, b, path := newSession(t, square)

	assert.Equal(t, StateSelected, s.State())
	assert.Equal(t, path, s.Path())
	assert.Empty(t, b.Calls(), "browse must not read the image")

	data, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, data.Width)
	assert.Equal(t, "png", data.Format)
	require.NotNil(t, data.Image)
	assert.Equal(t, image.Rect(0, 0, 40, 40), data.Image.Bounds())
	assert.Same(t, data, s.Image())

	assert.Equal(t, StateSelected, s.State())
	assert.Equal(t, 0, b.Open())
}

func TestPreviewAndExport(t *testing.T) {
	s, b, _ := newSession(t, square)
	ctx := context.Background()

	form := models.DefaultParameters().Form()
	form.SmoothWindowSize = "1"

	result, err := s.Preview(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, StatePreviewed, s.State())
	assert.True(t, s.HasContour())
	assert.Same(t, result, s.LastPreview())
	assert.Equal(t, 1, s.Parameters().SmoothWindowSize)
	assert.Equal(t, 0, b.Open())

	var want bytes.Buffer
	require.NoError(t, dxf.WritePolyline(&want, square))

	var got bytes.Buffer
	require.NoError(t, s.ExportTo(&got))
	assert.Equal(t, want.String(), got.String())

	out := filepath.Join(t.TempDir(), "part.dxf")
	require.NoError(t, s.Export(out))
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, want.String(), string(written))
}

func TestPreviewDecodesEveryTime(t *testing.T) {
	s, b, _ := newSession(t, square)
	ctx := context.Background()

	_, err := s.PreviewWith(ctx, models.DefaultParameters())
	require.NoError(t, err)
	_, err = s.PreviewWith(ctx, models.DefaultParameters())
	require.NoError(t, err)

	decodes := 0
	for _, c := range b.Calls() {
		if c == "Decode" {
			decodes++
		}
	}
	assert.Equal(t, 2, decodes)
}

func TestInvalidParametersLeaveStateUnchanged(t *testing.T) {
	s, b, _ := newSession(t, square)
	ctx := context.Background()

	first, err := s.PreviewWith(ctx, models.DefaultParameters())
	require.NoError(t, err)
	calls := len(b.Calls())

	tests := []struct {
		name  string
		edit  func(*models.ParameterForm)
		field string
	}{
		{"even blur kernel", func(f *models.ParameterForm) { f.BlurKernelSize = "4" }, models.FieldBlurKernelSize},
		{"non-numeric sigma", func(f *models.ParameterForm) { f.BlurSigma = "abc" }, models.FieldBlurSigma},
		{"zero window", func(f *models.ParameterForm) { f.SmoothWindowSize = "0" }, models.FieldSmoothWindowSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := models.DefaultParameters().Form()
			tt.edit(&form)

			_, err := s.Preview(ctx, form)
			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Parameter)

			assert.Same(t, first, s.LastPreview())
			assert.Equal(t, StatePreviewed, s.State())
		})
	}

	assert.Len(t, b.Calls(), calls, "the pipeline must not run on invalid input")
}

func TestInvalidParametersBeforeFirstPreview(t *testing.T) {
	s, _, _ := newSession(t, square)

	form := models.DefaultParameters().Form()
	form.Closing1Kernel = "x"

	_, err := s.Preview(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, StateSelected, s.State())
	assert.False(t, s.HasContour())
}

func TestPipelineFailureKeepsLastContour(t *testing.T) {
	s, b, _ := newSession(t, square)
	ctx := context.Background()

	first, err := s.PreviewWith(ctx, models.DefaultParameters())
	require.NoError(t, err)

	b.Contours = nil
	_, err = s.PreviewWith(ctx, models.DefaultParameters())
	assert.ErrorIs(t, err, contour.ErrNoContours)
	assert.Same(t, first, s.LastPreview())

	b.Contours = []contour.Contour{square}
	b.FailOn = "MorphClose"
	_, err = s.PreviewWith(ctx, models.DefaultParameters())
	assert.ErrorIs(t, err, pipelinetest.ErrInjected)
	assert.Same(t, first, s.LastPreview())
	assert.Equal(t, 0, b.Open())
}

func TestBrowseKeepsExportableContour(t *testing.T) {
	s, _, _ := newSession(t, square)

	_, err := s.PreviewWith(context.Background(), models.DefaultParameters())
	require.NoError(t, err)

	require.NoError(t, s.Browse(writePNG(t)))
	assert.Equal(t, StatePreviewed, s.State())
	assert.True(t, s.HasContour())
	assert.Nil(t, s.Image())
}

func TestPreviewMissingFile(t *testing.T) {
	s := NewContourService(pipelinetest.New(square), nil)
	require.NoError(t, s.Browse(filepath.Join(t.TempDir(), "gone.png")))

	_, err := s.PreviewWith(context.Background(), models.DefaultParameters())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, StateSelected, s.State())
}

func TestExportMissingDirectory(t *testing.T) {
	s, _, _ := newSession(t, square)
	_, err := s.PreviewWith(context.Background(), models.DefaultParameters())
	require.NoError(t, err)

	err = s.Export(filepath.Join(t.TempDir(), "missing", "out.dxf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOverlayStyleIsUsed(t *testing.T) {
	s, b, _ := newSession(t, square)
	style := models.OverlayStyle{Thickness: 5}
	s.SetOverlayStyle(style)

	_, err := s.PreviewWith(context.Background(), models.DefaultParameters())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{4, style.Color, 5}, b.Args("DrawContour"))
}

func TestSetParametersValidates(t *testing.T) {
	s := NewContourService(pipelinetest.New(), nil)
	p := models.DefaultParameters()
	p.Closing2Kernel = 0
	assert.Error(t, s.SetParameters(p))
	assert.Equal(t, models.DefaultParameters(), s.Parameters())
}
