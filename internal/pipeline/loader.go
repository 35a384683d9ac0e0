package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"contour2dxf/internal/models"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// SupportedExtensions lists the file extensions offered by the open dialog.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// ReadImage reads path, sniffs its format from the content and decodes it
// with backend. The caller owns the returned raster.
func ReadImage(path string, backend Backend) (*models.ImageData, models.Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image data: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, filepath.Base(path), err)
	}

	raster, err := backend.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	imageData := &models.ImageData{
		Path:      path,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Channels:  raster.Channels(),
		Format:    determineActualFormat(filepath.Ext(path), format),
		SizeBytes: int64(len(data)),
		LoadTime:  time.Now(),
	}

	return imageData, raster, nil
}

func determineActualFormat(extension, sniffed string) string {
	if sniffed != "" {
		return sniffed
	}
	switch strings.ToLower(extension) {
	case ".tiff", ".tif":
		return "tiff"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".webp":
		return "webp"
	default:
		return "unknown"
	}
}
