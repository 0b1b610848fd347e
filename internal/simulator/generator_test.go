package simulator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateBatchVisitCountsPerDay(t *testing.T) {
	gen := NewGenerator("device-1", 1)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	visits := gen.GenerateBatch(start, 7)

	perDay := make(map[string]int)
	for _, visit := range visits {
		perDay[visit.EnterTime.Format("2006-01-02")]++
	}
	require.Len(t, perDay, 7)
	for day, count := range perDay {
		require.GreaterOrEqual(t, count, 2, "day %s", day)
		require.LessOrEqual(t, count, 4, "day %s", day)
	}
}

func TestGenerateBatchVisitShape(t *testing.T) {
	gen := NewGenerator("device-1", 42)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	visits := gen.GenerateBatch(start, 30)
	require.NotEmpty(t, visits)

	for _, visit := range visits {
		require.NotEmpty(t, visit.EventID)
		require.Equal(t, "device-1", visit.DeviceID)

		duration := visit.ExitTime.Sub(visit.EnterTime)
		require.GreaterOrEqual(t, duration, 30*time.Second)
		require.LessOrEqual(t, duration, 5*time.Minute)

		// Enter reading includes the cat; exit reading only waste.
		require.Greater(t, visit.WeightEnter, visit.WeightExit)
		catWeight := visit.WeightEnter - visit.WeightExit
		require.Greater(t, catWeight, 6.0)
		require.Less(t, catWeight, 14.0)

		// Sensor resolution is 0.1 lb.
		require.InDelta(t, visit.WeightEnter, math.Round(visit.WeightEnter*10)/10, 1e-9)
		require.InDelta(t, visit.WeightExit, math.Round(visit.WeightExit*10)/10, 1e-9)
	}
}

func TestGenerateBatchIsDeterministicForSeed(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	a := NewGenerator("device-1", 7).GenerateBatch(start, 3)
	b := NewGenerator("device-1", 7).GenerateBatch(start, 3)

	require.Equal(t, len(a), len(b))
	for i := range a {
		require.Equal(t, a[i].EnterTime, b[i].EnterTime)
		require.Equal(t, a[i].WeightEnter, b[i].WeightEnter)
	}
}

func TestGenerateBatchOrdersVisitsWithinDay(t *testing.T) {
	gen := NewGenerator("device-1", 99)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	visits := gen.GenerateBatch(start, 1)
	for i := 1; i < len(visits); i++ {
		require.False(t, visits[i].EnterTime.Before(visits[i-1].EnterTime))
	}
}
