package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.OperationsCreated == nil || m.HTTPRequests == nil || m.CompensationFailures == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.OperationsCreated.Inc()
	m.LimitMutations.WithLabelValues("debit").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	for _, mf := range metricFamilies {
		if !strings.HasPrefix(mf.GetName(), "cambio_") {
			t.Fatalf("unexpected metric name %q", mf.GetName())
		}
	}
}

func TestCompensationFailureCounter(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.CompensationFailures.Inc()
	m.CompensationFailures.Inc()

	if got := testutil.ToFloat64(m.CompensationFailures); got != 2 {
		t.Fatalf("expected 2 compensation failures, got %v", got)
	}
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	_ = New(prometheus.NewRegistry())
	_ = New(prometheus.NewRegistry())
}
