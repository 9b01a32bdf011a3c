package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"ivfit-app/internal/chart"
	"ivfit-app/internal/config"
	"ivfit-app/internal/domain"
	"ivfit-app/internal/endpoints"
	"ivfit-app/internal/metrics"
	"ivfit-app/internal/util"
)

func NewRouter(store domain.ReadingStore, webSlogger *util.ServiceLogger, m *metrics.Metrics, chartOpts chart.Options) *mux.Router {
	r := mux.NewRouter()

	if m == nil {
		m = metrics.NewMetrics()
	}
	addRoutes(r, store, webSlogger, m, chartOpts)

	r.Use(loggingMiddleware(webSlogger))
	r.Use(metricsMiddleware(m))

	return r
}

func addRoutes(r *mux.Router, store domain.ReadingStore, webSlogger *util.ServiceLogger, m *metrics.Metrics, chartOpts chart.Options) {

	readingsHandler := &endpoints.Readings{}
	readingsHandler.Init(store, webSlogger, m, chartOpts)

	r.HandleFunc("/storeReading", readingsHandler.StoreReadingHandler).Methods("POST")
	r.HandleFunc("/clearReadings", readingsHandler.ClearReadingsHandler).Methods("POST")
	r.HandleFunc("/plotGraph", readingsHandler.PlotGraphHandler).Methods("GET")
	r.HandleFunc("/fit", readingsHandler.FitHandler).Methods("GET")
	r.HandleFunc("/readings", readingsHandler.ListReadingsHandler).Methods("GET")

	r.Handle("/metrics", m.Handler()).Methods("GET")
}

// NewHandler wraps the router with CORS open to every origin.
func NewHandler(store domain.ReadingStore, webSlogger *util.ServiceLogger, m *metrics.Metrics, chartOpts chart.Options) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(NewRouter(store, webSlogger, m, chartOpts))
}

func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutMs) * time.Millisecond,
	}
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully and returns.
func Run(cfg config.Config, store domain.ReadingStore, webSlogger *util.ServiceLogger, m *metrics.Metrics) error {
	appHandler := NewHandler(store, webSlogger, m, chart.Options{Width: cfg.Chart.Width, Height: cfg.Chart.Height})

	server := NewServer(cfg.Server, appHandler)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	shutdownErr := make(chan error, 1)
	go func() {
		<-quit
		println()
		log.Println("Shutting down server...")
		webSlogger.LogEvent(util.LOG_LEVEL_INFO, "Shutting down server")

		shutdownErr <- gracefulShutdown(server, time.Duration(cfg.Server.ShutdownTimeoutMs)*time.Millisecond)
	}()

	log.Printf("Listening on %s", server.Addr)
	webSlogger.LogEvent(util.LOG_LEVEL_INFO, "Listening on", server.Addr)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		log.Printf("Server stopped with error: %s", err.Error())
		return err
	}
	log.Println("Server stopped gracefully.")
	return nil
}

func gracefulShutdown(server *http.Server, maximumTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maximumTime)
	defer cancel()

	return server.Shutdown(ctx)
}

func loggingMiddleware(logger *util.ServiceLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogEvent(util.LOG_LEVEL_INFO, fmt.Sprintf("Request: %s %s", r.Method, r.RequestURI))
			next.ServeHTTP(w, r)
		})
	}
}

func metricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}
			m.HTTPRequests.WithLabelValues(path, r.Method).Inc()
			next.ServeHTTP(w, r)
		})
	}
}
