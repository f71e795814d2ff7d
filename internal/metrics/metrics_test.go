package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("yahoo", nil)
	m.ObserveWindow(time.Second)
	m.ObserveScan("basic", time.Second, 1, 2)
	m.ObserveDelivery("discord", errors.New("x"))
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveFetch("finnhub", nil)
	m.ObserveFetch("finnhub", nil)
	m.ObserveFetch("finnhub", errors.New("boom"))
	m.ObserveScan("combo", 2*time.Second, 3, 40)
	m.ObserveDelivery("telegram", nil)

	if got := testutil.ToFloat64(m.ProviderFetches.WithLabelValues("finnhub", "ok")); got != 2 {
		t.Errorf("ok fetches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ProviderFetches.WithLabelValues("finnhub", "error")); got != 1 {
		t.Errorf("error fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastMatches.WithLabelValues("combo")); got != 3 {
		t.Errorf("last matches = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.LastScanned.WithLabelValues("combo")); got != 40 {
		t.Errorf("last scanned = %v, want 40", got)
	}
	if got := testutil.ToFloat64(m.SinkDeliveries.WithLabelValues("telegram", "ok")); got != 1 {
		t.Errorf("deliveries = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.ScanDuration); n != 1 {
		t.Errorf("scan duration series = %d, want 1", n)
	}
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	New(reg)
}
