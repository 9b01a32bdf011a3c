package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ivfit-app/internal/domain"
	"ivfit-app/internal/regression"
)

func TestRenderFit(t *testing.T) {
	readings := []domain.Reading{
		domain.NewReading(1.0, 2.1),
		domain.NewReading(2.0, 3.9),
		domain.NewReading(3.0, 6.2),
		domain.NewReading(4.0, 7.8),
	}
	fit, err := regression.FitLinear(readings)
	require.NoError(t, err)

	out, err := RenderFit(readings, fit, Options{})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err, "output should be a PNG")
	assert.Equal(t, DefaultWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultHeight, img.Bounds().Dy())
}

func TestRenderFit_CustomSize(t *testing.T) {
	readings := []domain.Reading{domain.NewReading(0.1, 1), domain.NewReading(0.2, 2)}
	fit, err := regression.FitLinear(readings)
	require.NoError(t, err)

	out, err := RenderFit(readings, fit, Options{Width: 320, Height: 240})
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
}

func TestRenderFit_FlatAxes(t *testing.T) {
	// same current and same voltage everywhere
	readings := []domain.Reading{domain.NewReading(1, 5), domain.NewReading(1, 5)}
	fit, err := regression.FitLinear(readings)
	require.NoError(t, err)

	out, err := RenderFit(readings, fit, Options{})
	require.NoError(t, err)
	_, err = png.DecodeConfig(bytes.NewReader(out))
	assert.NoError(t, err)
}

func TestRenderFit_InsufficientData(t *testing.T) {
	_, err := RenderFit([]domain.Reading{domain.NewReading(1, 1)}, domain.Fit{}, Options{})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestLegendLabel(t *testing.T) {
	assert.Equal(t, "Fit Line (R = 1.94 Ω)", LegendLabel(domain.Fit{Slope: 1.9400001}))
}

func TestPaddedRange(t *testing.T) {
	lo, hi := paddedRange([]float64{0, 10})
	assert.InDelta(t, -0.5, lo, 1e-12)
	assert.InDelta(t, 10.5, hi, 1e-12)

	lo, hi = paddedRange([]float64{3, 3})
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 4.0, hi)
}
