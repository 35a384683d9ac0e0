package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() ParameterForm {
	return ParameterForm{
		BlurKernelSize:   "5",
		BlurSigma:        "1.5",
		CannyThreshold1:  "50",
		CannyThreshold2:  "150",
		Closing1Kernel:   "3",
		Closing2Kernel:   "7",
		SmoothWindowSize: "5",
	}
}

func TestParseParameters(t *testing.T) {
	p, err := ParseParameters(validForm())
	require.NoError(t, err)

	assert.Equal(t, Parameters{
		BlurKernelSize:   5,
		BlurSigma:        1.5,
		CannyThreshold1:  50,
		CannyThreshold2:  150,
		Closing1Kernel:   3,
		Closing2Kernel:   7,
		SmoothWindowSize: 5,
	}, p)
}

func TestParseParametersTrimsWhitespace(t *testing.T) {
	form := validForm()
	form.BlurKernelSize = " 7 "
	form.BlurSigma = "\t0\n"

	p, err := ParseParameters(form)
	require.NoError(t, err)
	assert.Equal(t, 7, p.BlurKernelSize)
	assert.Zero(t, p.BlurSigma)
}

func TestParseParametersRejects(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*ParameterForm)
		field string
	}{
		{"even blur kernel", func(f *ParameterForm) { f.BlurKernelSize = "4" }, FieldBlurKernelSize},
		{"zero blur kernel", func(f *ParameterForm) { f.BlurKernelSize = "0" }, FieldBlurKernelSize},
		{"non-numeric sigma", func(f *ParameterForm) { f.BlurSigma = "soft" }, FieldBlurSigma},
		{"negative sigma", func(f *ParameterForm) { f.BlurSigma = "-0.5" }, FieldBlurSigma},
		{"NaN sigma", func(f *ParameterForm) { f.BlurSigma = "NaN" }, FieldBlurSigma},
		{"infinite sigma", func(f *ParameterForm) { f.BlurSigma = "Inf" }, FieldBlurSigma},
		{"positive infinite sigma", func(f *ParameterForm) { f.BlurSigma = "+Inf" }, FieldBlurSigma},
		{"float threshold", func(f *ParameterForm) { f.CannyThreshold1 = "50.5" }, FieldCannyThreshold1},
		{"negative threshold", func(f *ParameterForm) { f.CannyThreshold2 = "-1" }, FieldCannyThreshold2},
		{"empty closing kernel", func(f *ParameterForm) { f.Closing1Kernel = "" }, FieldClosing1Kernel},
		{"zero closing kernel", func(f *ParameterForm) { f.Closing2Kernel = "0" }, FieldClosing2Kernel},
		{"zero window", func(f *ParameterForm) { f.SmoothWindowSize = "0" }, FieldSmoothWindowSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(&form)

			p, err := ParseParameters(form)
			require.Error(t, err)
			assert.Equal(t, Parameters{}, p)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Parameter)
		})
	}
}

func TestParseParametersAcceptsEvenClosingKernelAndWindow(t *testing.T) {
	form := validForm()
	form.Closing1Kernel = "4"
	form.SmoothWindowSize = "6"

	p, err := ParseParameters(form)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Closing1Kernel)
	assert.Equal(t, 6, p.SmoothWindowSize)
}

func TestParseParametersAllowsReversedThresholds(t *testing.T) {
	form := validForm()
	form.CannyThreshold1 = "200"
	form.CannyThreshold2 = "100"

	p, err := ParseParameters(form)
	require.NoError(t, err)
	assert.False(t, p.ThresholdsOrdered())
}

func TestFormRoundTripsDefaults(t *testing.T) {
	p, err := ParseParameters(DefaultParameters().Form())
	require.NoError(t, err)
	assert.Equal(t, DefaultParameters(), p)
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError(FieldBlurKernelSize, 4, "value must be odd")
	assert.Equal(t, "validation failed for parameter 'blur_kernel_size' with value '4': value must be odd", err.Error())
}

func TestValidateRejectsNonFiniteSigma(t *testing.T) {
	for _, sigma := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		p := DefaultParameters()
		p.BlurSigma = sigma

		var ve *ValidationError
		require.ErrorAs(t, p.Validate(), &ve)
		assert.Equal(t, FieldBlurSigma, ve.Parameter)
		assert.Equal(t, "not a finite number", ve.Message)
	}
}
