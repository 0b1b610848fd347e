package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, name string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		require.Equal(t, dto.MetricType_GAUGE, family.GetType())
		metrics := family.GetMetric()
		require.Len(t, metrics, 1)
		return metrics[0].GetGauge().GetValue()
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestRecordUsageServedSetsWatermark(t *testing.T) {
	ts := time.Date(2024, 3, 1, 8, 19, 0, 0, time.UTC)
	RecordUsageServed(ts)

	got := gaugeValue(t, "litterbox_service_persistence_last_usage_served_timestamp_seconds")
	require.Equal(t, float64(ts.Unix()), got)
}

func TestRecordVisitPersistedIgnoresZeroTime(t *testing.T) {
	ts := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	RecordVisitPersisted(ts)
	RecordVisitPersisted(time.Time{})

	got := gaugeValue(t, "litterbox_service_persistence_last_visit_persisted_timestamp_seconds")
	require.Equal(t, float64(ts.Unix()), got)
}
