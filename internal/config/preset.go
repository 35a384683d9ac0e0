package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"contour2dxf/internal/models"
)

var ErrUnknownPresetFormat = errors.New("preset must be a .toml, .yaml or .yml file")

// Preset is a validated parameter set plus overlay display settings.
type Preset struct {
	Parameters models.Parameters
	Style      models.OverlayStyle
}

// DefaultPreset returns the built-in parameters and overlay style.
func DefaultPreset() Preset {
	return Preset{
		Parameters: models.DefaultParameters(),
		Style:      models.DefaultOverlayStyle(),
	}
}

// presetFile mirrors the on-disk keys. Pointers distinguish absent keys from zero values.
type presetFile struct {
	BlurKernelSize   *int     `toml:"blur_kernel_size" yaml:"blur_kernel_size"`
	BlurSigma        *float64 `toml:"blur_sigma" yaml:"blur_sigma"`
	CannyThreshold1  *int     `toml:"canny_threshold1" yaml:"canny_threshold1"`
	CannyThreshold2  *int     `toml:"canny_threshold2" yaml:"canny_threshold2"`
	Closing1Kernel   *int     `toml:"closing1_kernel" yaml:"closing1_kernel"`
	Closing2Kernel   *int     `toml:"closing2_kernel" yaml:"closing2_kernel"`
	SmoothWindowSize *int     `toml:"smooth_window_size" yaml:"smooth_window_size"`
	OverlayColor     *string  `toml:"overlay_color" yaml:"overlay_color"`
	OverlayThickness *int     `toml:"overlay_thickness" yaml:"overlay_thickness"`
}

// LoadPreset reads a TOML or YAML preset. Keys that are absent keep their
// defaults; unknown keys and out-of-range values are rejected.
func LoadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}

	var f presetFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(data, &f)
	case ".yaml", ".yml":
		err = decodeYAML(data, &f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPresetFormat, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", filepath.Base(path), err)
	}

	preset, err := f.apply(DefaultPreset())
	if err != nil {
		return nil, fmt.Errorf("invalid preset %s: %w", filepath.Base(path), err)
	}
	return preset, nil
}

func decodeTOML(data []byte, f *presetFile) error {
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, f *presetFile) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (f presetFile) apply(base Preset) (*Preset, error) {
	p := base.Parameters
	setInt(&p.BlurKernelSize, f.BlurKernelSize)
	if f.BlurSigma != nil {
		p.BlurSigma = *f.BlurSigma
	}
	setInt(&p.CannyThreshold1, f.CannyThreshold1)
	setInt(&p.CannyThreshold2, f.CannyThreshold2)
	setInt(&p.Closing1Kernel, f.Closing1Kernel)
	setInt(&p.Closing2Kernel, f.Closing2Kernel)
	setInt(&p.SmoothWindowSize, f.SmoothWindowSize)

	if err := p.Validate(); err != nil {
		return nil, err
	}

	style := base.Style
	if f.OverlayColor != nil {
		c, err := ParseColor(*f.OverlayColor)
		if err != nil {
			return nil, err
		}
		style.Color = c
	}
	if f.OverlayThickness != nil {
		if *f.OverlayThickness < 1 {
			return nil, models.NewValidationError("overlay_thickness", *f.OverlayThickness, "must be at least 1")
		}
		style.Thickness = *f.OverlayThickness
	}

	return &Preset{Parameters: p, Style: style}, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// ParseColor parses a "#rrggbb" hex string into an opaque RGBA color.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return color.RGBA{}, models.NewValidationError("overlay_color", hex, "must be a #rrggbb hex color")
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
