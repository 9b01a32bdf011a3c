package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidReading   = errors.New("invalid input: voltage and current must be finite numbers")
	ErrInsufficientData = errors.New("not enough data points")
	ErrNonFiniteFit     = errors.New("fit is not representable: slope, intercept or residual overflowed")
)

// Reading is one measurement. Current is the independent (x) axis and
// voltage the dependent (y) axis of every fit.
type Reading struct {
	Current float64 `json:"current"`
	Voltage float64 `json:"voltage"`
}

// NewReading keeps the argument order explicit so callers never swap axes.
func NewReading(current, voltage float64) Reading {
	return Reading{Current: current, Voltage: voltage}
}

type Fit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Points    int     `json:"points"`
	RSS       float64 `json:"rss"`
}

// Predict returns the fitted voltage for the given current.
func (f Fit) Predict(current float64) float64 {
	return f.Slope*current + f.Intercept
}

type ReadingStore interface {
	Init() error
	Append(ctx context.Context, reading Reading) error
	Clear(ctx context.Context) error
	Snapshot(ctx context.Context) ([]Reading, error)
	Close() error
}

// ParseReading decodes a JSON object carrying "voltage" and "current".
// Both fields are required and may be JSON numbers or numeric strings.
func ParseReading(payload []byte) (Reading, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrInvalidReading, err)
	}
	return ReadingFromFields(fields)
}

// ReadingFromFields validates an already decoded payload. Decoders should
// use json.Decoder.UseNumber so large values are range checked here.
func ReadingFromFields(fields map[string]interface{}) (Reading, error) {
	voltage, err := coerceFloat(fields, "voltage")
	if err != nil {
		return Reading{}, err
	}
	current, err := coerceFloat(fields, "current")
	if err != nil {
		return Reading{}, err
	}
	return NewReading(current, voltage), nil
}

func coerceFloat(fields map[string]interface{}, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: missing field %q", ErrInvalidReading, key)
	}

	var (
		v   float64
		err error
	)
	switch t := raw.(type) {
	case json.Number:
		v, err = strconv.ParseFloat(t.String(), 64)
	case string:
		v, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	case float64:
		v = t
	default:
		return 0, fmt.Errorf("%w: field %q has type %T", ErrInvalidReading, key, raw)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrInvalidReading, key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: field %q is not finite", ErrInvalidReading, key)
	}
	return v, nil
}
