package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ivfit-app/internal/chart"
	"ivfit-app/internal/domain"
	"ivfit-app/internal/metrics"
	"ivfit-app/internal/regression"
	"ivfit-app/internal/util"
)

const (
	SourceHTTP = "http"

	maxRequestBodyBytes = 1 << 20
)

type Readings struct {
	Response APIResponse
	logger   *util.ServiceLogger
	store    domain.ReadingStore
	metrics  *metrics.Metrics
	chart    chart.Options
}

func (h *Readings) Init(store domain.ReadingStore, webSlogger *util.ServiceLogger, m *metrics.Metrics, chartOpts chart.Options) {
	h.store = store
	h.logger = webSlogger
	if m == nil {
		m = metrics.NewMetrics()
	}
	h.metrics = m
	h.chart = chartOpts
}

func (h *Readings) methodAllowed(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	err := fmt.Errorf("%w. Only %s requests are supported", ErrMethodNotAllowed, method)
	h.logger.LogEvent(util.LOG_LEVEL_ERROR, err, r.URL.Path)
	h.Response.WriteErrorResponse(w, err)
	return false
}

// storeError reports a failed store call. Cancellation is not a server fault.
func (h *Readings) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, context.Canceled) {
		h.logger.LogEvent(util.LOG_LEVEL_WARN, "Context cancelled during", op)
		h.Response.WriteErrorResponse(w, ErrRequestCancelled)
		return
	}
	h.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while", op, "Err -", err)
	h.Response.WriteErrorResponse(w, err)
}

func (h *Readings) StoreReadingHandler(w http.ResponseWriter, r *http.Request) {
	if !h.methodAllowed(w, r, http.MethodPost) {
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		h.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while unmarshalling JSON Body. Err -", err)
		h.metrics.ReadingsRejected.WithLabelValues(SourceHTTP).Inc()
		h.Response.WriteErrorResponse(w, fmt.Errorf("%w: %v", ErrInvalidRequestBody, err))
		return
	}

	reading, err := domain.ReadingFromFields(fields)
	if err != nil {
		h.logger.LogEvent(util.LOG_LEVEL_WARN, "Rejected reading -", err)
		h.metrics.ReadingsRejected.WithLabelValues(SourceHTTP).Inc()
		h.Response.WriteErrorResponse(w, err)
		return
	}

	if err := h.store.Append(r.Context(), reading); err != nil {
		h.storeError(w, "Append()", err)
		return
	}
	h.metrics.ReadingsStored.WithLabelValues(SourceHTTP).Inc()
	h.logger.LogEvent(util.LOG_LEVEL_DEBUG, "Stored reading current -", reading.Current, "voltage -", reading.Voltage)

	h.Response.WriteResultResponse(w, nil)
}

func (h *Readings) ClearReadingsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.methodAllowed(w, r, http.MethodPost) {
		return
	}

	if err := h.store.Clear(r.Context()); err != nil {
		h.storeError(w, "Clear()", err)
		return
	}
	h.metrics.ReadingsCleared.Inc()
	h.logger.LogEvent(util.LOG_LEVEL_INFO, "Readings cleared")

	h.Response.WriteMessageResponse(w, "Readings cleared")
}

func (h *Readings) ListReadingsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.methodAllowed(w, r, http.MethodGet) {
		return
	}

	readings, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.storeError(w, "Snapshot()", err)
		return
	}

	h.Response.WriteResultResponse(w, readings)
}

// fit snapshots the store and fits it. It writes the error response itself
// and returns ok=false when the caller should stop.
func (h *Readings) fit(w http.ResponseWriter, r *http.Request, kind string) ([]domain.Reading, domain.Fit, bool) {
	readings, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.metrics.FitRequests.WithLabelValues(kind, "error").Inc()
		h.storeError(w, "Snapshot()", err)
		return nil, domain.Fit{}, false
	}

	fit, err := regression.FitLinear(readings)
	if errors.Is(err, domain.ErrInsufficientData) {
		h.metrics.FitRequests.WithLabelValues(kind, "insufficient").Inc()
		h.logger.LogEvent(util.LOG_LEVEL_WARN, "Insufficient readings for fit -", len(readings))
		h.Response.WriteErrorResponse(w, domain.ErrInsufficientData)
		return nil, domain.Fit{}, false
	}
	if err != nil {
		h.metrics.FitRequests.WithLabelValues(kind, "error").Inc()
		h.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while FitLinear(). Err -", err)
		h.Response.WriteErrorResponse(w, err)
		return nil, domain.Fit{}, false
	}
	return readings, fit, true
}

func (h *Readings) FitHandler(w http.ResponseWriter, r *http.Request) {
	if !h.methodAllowed(w, r, http.MethodGet) {
		return
	}

	_, fit, ok := h.fit(w, r, "summary")
	if !ok {
		return
	}
	h.metrics.FitRequests.WithLabelValues("summary", "ok").Inc()

	h.Response.WriteResultResponse(w, fit)
}

func (h *Readings) PlotGraphHandler(w http.ResponseWriter, r *http.Request) {
	if !h.methodAllowed(w, r, http.MethodGet) {
		return
	}

	readings, fit, ok := h.fit(w, r, "plot")
	if !ok {
		return
	}

	start := time.Now()
	image, err := chart.RenderFit(readings, fit, h.chart)
	if err != nil {
		h.metrics.FitRequests.WithLabelValues("plot", "error").Inc()
		h.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while RenderFit(). Err -", err)
		h.Response.WriteErrorResponse(w, fmt.Errorf("%w: %v", ErrRenderFailed, err))
		return
	}
	h.metrics.RenderTime.Observe(time.Since(start).Seconds())
	h.metrics.FitRequests.WithLabelValues("plot", "ok").Inc()
	h.logger.LogEvent(util.LOG_LEVEL_DEBUG, "Rendered fit slope -", fit.Slope, "intercept -", fit.Intercept, "points -", fit.Points)

	WriteImageResponse(w, chart.ContentType, image)
}
