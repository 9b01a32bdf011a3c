package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReading(t *testing.T) {
	reading, err := ParseReading([]byte(`{"voltage": 4.5, "current": 0.2}`))
	require.NoError(t, err)
	assert.Equal(t, Reading{Current: 0.2, Voltage: 4.5}, reading, "current is x, voltage is y")

	// numeric strings are coerced
	reading, err = ParseReading([]byte(`{"voltage": " 3.3 ", "current": "1e-3"}`))
	require.NoError(t, err)
	assert.Equal(t, NewReading(0.001, 3.3), reading)

	// integers are fine too
	reading, err = ParseReading([]byte(`{"voltage": 12, "current": 3}`))
	require.NoError(t, err)
	assert.Equal(t, NewReading(3, 12), reading)
}

func TestParseReadingRejects(t *testing.T) {
	payloads := map[string]string{
		"missing voltage":  `{"current": 1}`,
		"missing current":  `{"voltage": 1}`,
		"null field":       `{"voltage": null, "current": 1}`,
		"bool field":       `{"voltage": true, "current": 1}`,
		"text field":       `{"voltage": "abc", "current": 1}`,
		"nan string":       `{"voltage": "NaN", "current": 1}`,
		"inf string":       `{"voltage": 1, "current": "-Inf"}`,
		"overflow":         `{"voltage": 1e400, "current": 1}`,
		"array field":      `{"voltage": [1], "current": 1}`,
		"empty object":     `{}`,
		"json null":        `null`,
		"malformed json":   `{"voltage": 1,`,
		"not an object":    `[1, 2]`,
		"empty payload":    ``,
		"empty string val": `{"voltage": "", "current": 1}`,
	}

	for name, payload := range payloads {
		_, err := ParseReading([]byte(payload))
		assert.ErrorIs(t, err, ErrInvalidReading, name)
	}
}

func TestFitPredict(t *testing.T) {
	fit := Fit{Slope: 2, Intercept: 0.5}
	assert.InDelta(t, 6.5, fit.Predict(3), 1e-12)
}
