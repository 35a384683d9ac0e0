package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parameters configures every stage of the preview pipeline.
type Parameters struct {
	BlurKernelSize   int
	BlurSigma        float64
	CannyThreshold1  int
	CannyThreshold2  int
	Closing1Kernel   int
	Closing2Kernel   int
	SmoothWindowSize int
}

// Field names as shown in the parameter form and used in validation errors.
const (
	FieldBlurKernelSize   = "blur_kernel_size"
	FieldBlurSigma        = "blur_sigma"
	FieldCannyThreshold1  = "canny_threshold1"
	FieldCannyThreshold2  = "canny_threshold2"
	FieldClosing1Kernel   = "closing1_kernel"
	FieldClosing2Kernel   = "closing2_kernel"
	FieldSmoothWindowSize = "smooth_window_size"
)

// ParameterRange defines the accepted values of a numeric parameter.
type ParameterRange struct {
	Min     float64
	Max     float64
	OddOnly bool
}

// Ranges lists the validation rules per field. Max of zero means unbounded.
var Ranges = map[string]ParameterRange{
	FieldBlurKernelSize:   {Min: 1, Max: 255, OddOnly: true},
	FieldBlurSigma:        {Min: 0},
	FieldCannyThreshold1:  {Min: 0},
	FieldCannyThreshold2:  {Min: 0},
	FieldClosing1Kernel:   {Min: 1, Max: 255},
	FieldClosing2Kernel:   {Min: 1, Max: 255},
	FieldSmoothWindowSize: {Min: 1},
}

// DefaultParameters returns a set that extracts clean outlines from typical
// high-contrast scans.
func DefaultParameters() Parameters {
	return Parameters{
		BlurKernelSize:   5,
		BlurSigma:        1.0,
		CannyThreshold1:  50,
		CannyThreshold2:  150,
		Closing1Kernel:   5,
		Closing2Kernel:   9,
		SmoothWindowSize: 5,
	}
}

// ParameterForm holds the raw text of the seven parameter fields.
type ParameterForm struct {
	BlurKernelSize   string
	BlurSigma        string
	CannyThreshold1  string
	CannyThreshold2  string
	Closing1Kernel   string
	Closing2Kernel   string
	SmoothWindowSize string
}

// Form renders p back to text, the inverse of ParseParameters.
func (p Parameters) Form() ParameterForm {
	return ParameterForm{
		BlurKernelSize:   strconv.Itoa(p.BlurKernelSize),
		BlurSigma:        strconv.FormatFloat(p.BlurSigma, 'g', -1, 64),
		CannyThreshold1:  strconv.Itoa(p.CannyThreshold1),
		CannyThreshold2:  strconv.Itoa(p.CannyThreshold2),
		Closing1Kernel:   strconv.Itoa(p.Closing1Kernel),
		Closing2Kernel:   strconv.Itoa(p.Closing2Kernel),
		SmoothWindowSize: strconv.Itoa(p.SmoothWindowSize),
	}
}

// ParseParameters parses and validates every field of form. The first
// failing field is reported as a *ValidationError.
func ParseParameters(form ParameterForm) (Parameters, error) {
	var p Parameters
	var err error

	ints := []struct {
		field string
		text  string
		dst   *int
	}{
		{FieldBlurKernelSize, form.BlurKernelSize, &p.BlurKernelSize},
		{FieldCannyThreshold1, form.CannyThreshold1, &p.CannyThreshold1},
		{FieldCannyThreshold2, form.CannyThreshold2, &p.CannyThreshold2},
		{FieldClosing1Kernel, form.Closing1Kernel, &p.Closing1Kernel},
		{FieldClosing2Kernel, form.Closing2Kernel, &p.Closing2Kernel},
		{FieldSmoothWindowSize, form.SmoothWindowSize, &p.SmoothWindowSize},
	}
	for _, f := range ints {
		*f.dst, err = strconv.Atoi(strings.TrimSpace(f.text))
		if err != nil {
			return Parameters{}, NewValidationError(f.field, f.text, "not an integer")
		}
	}

	p.BlurSigma, err = strconv.ParseFloat(strings.TrimSpace(form.BlurSigma), 64)
	if err != nil {
		return Parameters{}, NewValidationError(FieldBlurSigma, form.BlurSigma, "not a number")
	}

	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Validate checks every field against Ranges.
func (p Parameters) Validate() error {
	values := []struct {
		field string
		value float64
	}{
		{FieldBlurKernelSize, float64(p.BlurKernelSize)},
		{FieldBlurSigma, p.BlurSigma},
		{FieldCannyThreshold1, float64(p.CannyThreshold1)},
		{FieldCannyThreshold2, float64(p.CannyThreshold2)},
		{FieldClosing1Kernel, float64(p.Closing1Kernel)},
		{FieldClosing2Kernel, float64(p.Closing2Kernel)},
		{FieldSmoothWindowSize, float64(p.SmoothWindowSize)},
	}

	for _, v := range values {
		if err := validateParameter(v.field, v.value); err != nil {
			return err
		}
	}
	return nil
}

// ThresholdsOrdered reports whether the Canny thresholds follow the usual
// low/high convention. Out-of-order thresholds are accepted.
func (p Parameters) ThresholdsOrdered() bool {
	return p.CannyThreshold1 < p.CannyThreshold2
}

func validateParameter(field string, value float64) error {
	r, ok := Ranges[field]
	if !ok {
		return nil
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewValidationError(field, value, "not a finite number")
	}
	if value < r.Min {
		return NewValidationError(field, value, fmt.Sprintf("value below minimum %v", r.Min))
	}
	if r.Max > 0 && value > r.Max {
		return NewValidationError(field, value, fmt.Sprintf("value above maximum %v", r.Max))
	}
	if r.OddOnly && int(value)%2 == 0 {
		return NewValidationError(field, value, "value must be odd")
	}
	return nil
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string
	Value     interface{}
	Message   string
}

func NewValidationError(parameter string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Value:     value,
		Message:   message,
	}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for parameter '%s' with value '%v': %s",
		ve.Parameter, ve.Value, ve.Message)
}
