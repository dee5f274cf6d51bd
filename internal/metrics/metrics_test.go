package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric any
	}{
		{"LinesTotal", LinesTotal},
		{"BytesTotal", BytesTotal},
		{"LineGap", LineGap},
		{"TerminationsTotal", TerminationsTotal},
		{"StreamActive", StreamActive},
		{"SinkErrorsTotal", SinkErrorsTotal},
		{"RelaySubscribers", RelaySubscribers},
		{"RelayDroppedTotal", RelayDroppedTotal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestLinesTotalByKind(t *testing.T) {
	before := testutil.ToFloat64(LinesTotal.WithLabelValues(KindHeartbeat))
	LinesTotal.WithLabelValues(KindHeartbeat).Inc()

	if got := testutil.ToFloat64(LinesTotal.WithLabelValues(KindHeartbeat)); got != before+1 {
		t.Errorf("heartbeat count = %v, want %v", got, before+1)
	}
}

func TestMetricOperations(t *testing.T) {
	t.Run("LineGap observe", func(_ *testing.T) {
		// Should not panic
		LineGap.Observe(0.5)
	})

	t.Run("TerminationsTotal increment", func(_ *testing.T) {
		TerminationsTotal.WithLabelValues("timed_out").Add(0)
	})

	t.Run("SinkErrorsTotal increment", func(_ *testing.T) {
		SinkErrorsTotal.WithLabelValues("redis").Add(0)
	})

	t.Run("RelaySubscribers gauge", func(_ *testing.T) {
		RelaySubscribers.Set(0)
	})
}
