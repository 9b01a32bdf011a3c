// Package regression fits first-order least-squares lines to readings.
package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"ivfit-app/internal/domain"
)

const MinReadings = 2

// Split separates readings into currents (x) and voltages (y), keeping pairs
// at the same index.
func Split(readings []domain.Reading) (currents, voltages []float64) {
	currents = make([]float64, len(readings))
	voltages = make([]float64, len(readings))
	for i, r := range readings {
		currents[i] = r.Current
		voltages[i] = r.Voltage
	}
	return currents, voltages
}

// FitLinear returns the line voltage = slope*current + intercept minimising
// the sum of squared voltage residuals.
func FitLinear(readings []domain.Reading) (domain.Fit, error) {
	if len(readings) < MinReadings {
		return domain.Fit{}, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientData, len(readings), MinReadings)
	}

	currents, voltages := Split(readings)

	var fit domain.Fit
	if floats.Min(currents) == floats.Max(currents) {
		fit = sameCurrentFit(currents[0], voltages)
	} else {
		fit = centeredFit(currents, voltages)
	}

	fit.Points = len(readings)
	fit.RSS = ResidualSumOfSquares(fit, readings)
	if !isFinite(fit.Slope) || !isFinite(fit.Intercept) || !isFinite(fit.RSS) {
		return domain.Fit{}, fmt.Errorf("%w: slope=%v intercept=%v rss=%v", domain.ErrNonFiniteFit, fit.Slope, fit.Intercept, fit.RSS)
	}
	return fit, nil
}

// centeredFit regresses on currents shifted to zero mean and scaled to
// [-1, 1], then maps the line back. Large currents would otherwise overflow
// the variance.
func centeredFit(currents, voltages []float64) domain.Fit {
	mean := stat.Mean(currents, nil)
	scale := math.Max(math.Abs(floats.Max(currents)-mean), math.Abs(floats.Min(currents)-mean))

	u := make([]float64, len(currents))
	for i, c := range currents {
		u[i] = (c - mean) / scale
	}
	alpha, beta := stat.LinearRegression(u, voltages, nil, false)

	return domain.Fit{
		Slope:     beta / scale,
		Intercept: alpha - beta*(mean/scale),
	}
}

// sameCurrentFit handles the rank deficient case where every current equals
// c. The design columns are normalised before taking the minimum-norm
// solution, which gives slope mean/(2c) and intercept mean/2. With c == 0 the
// current column vanishes and the line is flat at the mean.
func sameCurrentFit(c float64, voltages []float64) domain.Fit {
	mean := stat.Mean(voltages, nil)
	if c == 0 {
		return domain.Fit{Intercept: mean}
	}
	return domain.Fit{
		Slope:     mean / (2 * c),
		Intercept: mean / 2,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ResidualSumOfSquares(fit domain.Fit, readings []domain.Reading) float64 {
	var rss float64
	for _, r := range readings {
		d := r.Voltage - fit.Predict(r.Current)
		rss += d * d
	}
	return rss
}

// Fitted evaluates the line at every observed current.
func Fitted(fit domain.Fit, currents []float64) []float64 {
	out := make([]float64, len(currents))
	for i, c := range currents {
		out[i] = fit.Predict(c)
	}
	return out
}
