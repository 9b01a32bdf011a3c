package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ivfit-app/internal/domain"
)

func readingsOf(pairs ...[2]float64) []domain.Reading {
	out := make([]domain.Reading, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, domain.NewReading(p[0], p[1]))
	}
	return out
}

// referenceFit is the textbook closed form, kept independent of gonum.
func referenceFit(readings []domain.Reading) (slope, intercept float64) {
	n := float64(len(readings))
	var sx, sy, sxx, sxy float64
	for _, r := range readings {
		sx += r.Current
		sy += r.Voltage
		sxx += r.Current * r.Current
		sxy += r.Current * r.Voltage
	}
	slope = (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

func TestFitLinear_InsufficientData(t *testing.T) {
	_, err := FitLinear(nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = FitLinear(readingsOf([2]float64{1, 2}))
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	fit, err := FitLinear(readingsOf([2]float64{1, 2}, [2]float64{3, 5}))
	require.NoError(t, err, "two points are enough")
	assert.InDelta(t, 1.5, fit.Slope, 1e-12)
	assert.InDelta(t, 0.5, fit.Intercept, 1e-12)
	assert.Equal(t, 2, fit.Points)
}

func TestFitLinear_Exact(t *testing.T) {
	fit, err := FitLinear(readingsOf([2]float64{1, 2}, [2]float64{2, 4}, [2]float64{3, 6}))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fit.Slope, 1e-9)
	assert.InDelta(t, 0.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 0.0, fit.RSS, 1e-12)
}

func TestFitLinear_Noisy(t *testing.T) {
	readings := readingsOf([2]float64{1, 2.1}, [2]float64{2, 3.9}, [2]float64{3, 6.2}, [2]float64{4, 7.8})

	fit, err := FitLinear(readings)
	require.NoError(t, err)

	slope, intercept := referenceFit(readings)
	assert.InDelta(t, slope, fit.Slope, 1e-9)
	assert.InDelta(t, intercept, fit.Intercept, 1e-9)

	// no nearby candidate line does better
	for _, dm := range []float64{-0.1, -0.01, 0, 0.01, 0.1} {
		for _, db := range []float64{-0.1, -0.01, 0, 0.01, 0.1} {
			if dm == 0 && db == 0 {
				continue
			}
			candidate := domain.Fit{Slope: fit.Slope + dm, Intercept: fit.Intercept + db}
			assert.Less(t, fit.RSS, ResidualSumOfSquares(candidate, readings), "candidate m=%v b=%v", candidate.Slope, candidate.Intercept)
		}
	}
}

func TestFitLinear_OrderIndependent(t *testing.T) {
	a := readingsOf([2]float64{1, 2.1}, [2]float64{2, 3.9}, [2]float64{3, 6.2}, [2]float64{4, 7.8})
	b := readingsOf([2]float64{3, 6.2}, [2]float64{1, 2.1}, [2]float64{4, 7.8}, [2]float64{2, 3.9})

	fa, err := FitLinear(a)
	require.NoError(t, err)
	fb, err := FitLinear(b)
	require.NoError(t, err)

	assert.InDelta(t, fa.Slope, fb.Slope, 1e-9)
	assert.InDelta(t, fa.Intercept, fb.Intercept, 1e-9)
}

func TestFitLinear_SameCurrent(t *testing.T) {
	fit, err := FitLinear(readingsOf([2]float64{2, 3}, [2]float64{2, 5}))
	require.NoError(t, err)

	// the line passes through (2, mean voltage)
	assert.InDelta(t, 4.0, fit.Predict(2), 1e-9)
	assert.InDelta(t, 1.0, fit.Slope, 1e-9)
	assert.InDelta(t, 2.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 2.0, fit.RSS, 1e-9)

	fit, err = FitLinear(readingsOf([2]float64{-4, 1}, [2]float64{-4, 3}, [2]float64{-4, 8}))
	require.NoError(t, err)
	assert.InDelta(t, -0.5, fit.Slope, 1e-9)
	assert.InDelta(t, 2.0, fit.Intercept, 1e-9)
}

func TestFitLinear_ZeroCurrent(t *testing.T) {
	fit, err := FitLinear(readingsOf([2]float64{0, 3}, [2]float64{0, 5}))
	require.NoError(t, err)

	assert.Equal(t, 0.0, fit.Slope)
	assert.InDelta(t, 4.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 2.0, fit.RSS, 1e-9)
}

func TestFitLinear_LargeCurrents(t *testing.T) {
	readings := readingsOf([2]float64{1e200, 1}, [2]float64{2e200, 2}, [2]float64{3e200, 4})

	fit, err := FitLinear(readings)
	require.NoError(t, err)

	assert.InEpsilon(t, 1.5e-200, fit.Slope, 1e-9)
	assert.InDelta(t, -2.0/3.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 1.0/6.0, fit.RSS, 1e-9)
}

func TestFitLinear_Overflow(t *testing.T) {
	_, err := FitLinear(readingsOf([2]float64{1, -1e308}, [2]float64{2, 1e308}))
	assert.ErrorIs(t, err, domain.ErrNonFiniteFit)
	assert.NotErrorIs(t, err, domain.ErrInsufficientData)
}

func TestFitted(t *testing.T) {
	fit := domain.Fit{Slope: 2, Intercept: 1}
	assert.Equal(t, []float64{1, 3, 7}, Fitted(fit, []float64{0, 1, 3}))
}

func TestSplit(t *testing.T) {
	currents, voltages := Split(readingsOf([2]float64{0.1, 5}, [2]float64{0.2, 10}))
	assert.Equal(t, []float64{0.1, 0.2}, currents)
	assert.Equal(t, []float64{5, 10}, voltages)
}
