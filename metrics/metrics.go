// Package metrics exposes watch-mode Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the watch service instruments.
type Metrics struct {
	registry *prometheus.Registry

	ValidationsTotal *prometheus.CounterVec
	ValidationScore  prometheus.Histogram
	EventsDropped    prometheus.Counter
	PublishesTotal   *prometheus.CounterVec
}

// New creates the metric set on its own registry, so tests can build
// independent instances without collisions.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prompts_validations_total",
				Help: "Total number of template validations",
			},
			[]string{"status"},
		),
		ValidationScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prompts_validation_score_percent",
				Help:    "Distribution of overall validation percentages",
				Buckets: []float64{10, 25, 50, 75, 90, 100},
			},
		),
		EventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "prompts_watch_events_dropped_total",
				Help: "Watch events dropped due to a full event channel",
			},
		),
		PublishesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prompts_report_publishes_total",
				Help: "Report events published to NATS",
			},
			[]string{"status"},
		),
	}
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("metrics endpoint listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
