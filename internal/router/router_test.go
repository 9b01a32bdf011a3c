package router

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ivfit-app/internal/chart"
	"ivfit-app/internal/config"
	"ivfit-app/internal/metrics"
	"ivfit-app/internal/repository"
	"ivfit-app/internal/util"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := repository.NewMemoryStore()
	require.NoError(t, store.Init())

	server := httptest.NewServer(NewHandler(store, &util.ServiceLogger{}, metrics.NewMetrics(), chart.Options{}))
	t.Cleanup(server.Close)
	return server
}

func TestAPI(t *testing.T) {
	server := newTestServer(t)
	e := httpexpect.New(t, server.URL)

	// nothing stored yet
	e.GET("/plotGraph").Expect().
		Status(http.StatusBadRequest).
		JSON().Object().ValueEqual("error", "not enough data points")

	e.POST("/storeReading").WithJSON(map[string]interface{}{"voltage": 2.0, "current": 1.0}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().ValueEqual("success", true)

	// one reading is still not enough
	e.GET("/plotGraph").Expect().Status(http.StatusBadRequest)

	// missing current
	e.POST("/storeReading").WithJSON(map[string]interface{}{"voltage": 3.0}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().ValueEqual("success", false).ContainsKey("error")

	e.POST("/storeReading").WithJSON(map[string]interface{}{"voltage": 4.0, "current": 2.0}).
		Expect().Status(http.StatusOK)
	e.POST("/storeReading").WithJSON(map[string]interface{}{"voltage": "6.0", "current": "3.0"}).
		Expect().Status(http.StatusOK)

	e.GET("/readings").Expect().
		Status(http.StatusOK).
		JSON().Object().Value("value").Array().Length().Equal(3)

	fit := e.GET("/fit").Expect().Status(http.StatusOK).JSON().Object().Value("value").Object()
	fit.Value("slope").Number().InDelta(2.0, 1e-9)
	fit.Value("intercept").Number().InDelta(0.0, 1e-9)
	fit.ValueEqual("points", 3)

	resp := e.GET("/plotGraph").Expect().Status(http.StatusOK)
	resp.Header("Content-Type").Equal("image/png")
	_, err := png.Decode(bytes.NewReader([]byte(resp.Body().Raw())))
	assert.NoError(t, err)

	e.POST("/clearReadings").Expect().
		Status(http.StatusOK).
		JSON().Object().ValueEqual("success", true).ValueEqual("message", "Readings cleared")
	e.POST("/clearReadings").Expect().Status(http.StatusOK)

	e.GET("/readings").Expect().
		Status(http.StatusOK).
		JSON().Object().Value("value").Array().Empty()

	e.GET("/plotGraph").Expect().Status(http.StatusBadRequest)

	// routes are method bound
	e.GET("/storeReading").Expect().Status(http.StatusMethodNotAllowed)
	e.POST("/plotGraph").Expect().Status(http.StatusMethodNotAllowed)

	e.GET("/metrics").Expect().
		Status(http.StatusOK).
		Body().Contains("ivfit_readings_stored_total")
}

func TestCORS(t *testing.T) {
	server := newTestServer(t)
	e := httpexpect.New(t, server.URL)

	e.OPTIONS("/storeReading").
		WithHeader("Origin", "http://bench.local").
		WithHeader("Access-Control-Request-Method", "POST").
		WithHeader("Access-Control-Request-Headers", "Content-Type").
		Expect().
		Status(http.StatusOK).
		Header("Access-Control-Allow-Origin").Equal("*")

	e.POST("/clearReadings").
		WithHeader("Origin", "http://bench.local").
		Expect().
		Status(http.StatusOK).
		Header("Access-Control-Allow-Origin").Equal("*")
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig().Server
	server := NewServer(cfg, http.NewServeMux())

	assert.Equal(t, "0.0.0.0:5000", server.Addr)
	assert.Equal(t, "5s", server.ReadTimeout.String())
	assert.Equal(t, "10s", server.WriteTimeout.String())
	assert.Equal(t, "2m0s", server.IdleTimeout.String())
}
