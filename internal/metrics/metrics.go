package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the scanner's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	ProviderFetches *prometheus.CounterVec   // labels: provider, result
	WindowDuration  prometheus.Histogram     // one batch window, fetch to join
	ScanDuration    *prometheus.HistogramVec // labels: tier
	LastMatches     *prometheus.GaugeVec     // labels: tier
	LastScanned     *prometheus.GaugeVec     // labels: tier
	SinkDeliveries  *prometheus.CounterVec   // labels: sink, result
}

// New creates the collectors and registers them on reg. Pass
// prometheus.NewRegistry() in tests to keep runs isolated.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ProviderFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_provider_fetches_total",
			Help: "Per-symbol provider fetches by outcome",
		}, []string{"provider", "result"}),
		WindowDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanner_batch_window_seconds",
			Help:    "Time to fetch one batch window",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		ScanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scanner_scan_duration_seconds",
			Help:    "End-to-end scan duration",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"tier"}),
		LastMatches: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "scanner_last_matches",
			Help: "Matches found by the most recent scan",
		}, []string{"tier"}),
		LastScanned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "scanner_last_scanned",
			Help: "Symbols evaluated by the most recent scan",
		}, []string{"tier"}),
		SinkDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scanner_sink_deliveries_total",
			Help: "Scan result deliveries by sink and outcome",
		}, []string{"sink", "result"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.ProviderFetches,
			m.WindowDuration,
			m.ScanDuration,
			m.LastMatches,
			m.LastScanned,
			m.SinkDeliveries,
		)
	}
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveFetch counts one provider fetch.
func (m *Metrics) ObserveFetch(provider string, err error) {
	if m == nil {
		return
	}
	m.ProviderFetches.WithLabelValues(provider, result(err)).Inc()
}

func (m *Metrics) ObserveWindow(d time.Duration) {
	if m == nil {
		return
	}
	m.WindowDuration.Observe(d.Seconds())
}

// ObserveScan records the duration and counts of a finished scan.
func (m *Metrics) ObserveScan(tier string, d time.Duration, matches, scanned int) {
	if m == nil {
		return
	}
	m.ScanDuration.WithLabelValues(tier).Observe(d.Seconds())
	m.LastMatches.WithLabelValues(tier).Set(float64(matches))
	m.LastScanned.WithLabelValues(tier).Set(float64(scanned))
}

func (m *Metrics) ObserveDelivery(sink string, err error) {
	if m == nil {
		return
	}
	m.SinkDeliveries.WithLabelValues(sink, result(err)).Inc()
}

// Serve exposes /metrics for gatherer on port until ctx is cancelled.
func Serve(ctx context.Context, port int, gatherer prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
