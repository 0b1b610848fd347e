// Package simulator generates synthetic litterbox visits and publishes them
// the way a fleet of edge devices would.
package simulator

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"example.com/litterbox/internal/events"
)

// Scale readings are in pounds.
const emptyBoxWeight = 5.0

// timePeriod weights visit starts toward the hours cats actually use a box.
type timePeriod struct {
	startHour int
	endHour   int
	prob      float64
}

var timePeriods = []timePeriod{
	{6, 10, 0.30},  // morning
	{10, 16, 0.20}, // midday
	{16, 20, 0.35}, // evening
	{20, 24, 0.10}, // night early
	{0, 6, 0.05},   // night late
}

// Generator produces visit batches for a single simulated device.
type Generator struct {
	deviceID string
	rng      *rand.Rand
}

// NewGenerator constructs a Generator. A zero seed falls back to the clock.
func NewGenerator(deviceID string, seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		deviceID: deviceID,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// GenerateBatch produces visits for the given number of days starting at
// start's calendar day.
func (g *Generator) GenerateBatch(start time.Time, days int) []events.VisitRecorded {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	var visits []events.VisitRecorded
	for offset := 0; offset < days; offset++ {
		visits = append(visits, g.generateDay(day.AddDate(0, 0, offset))...)
	}
	return visits
}

func (g *Generator) generateDay(day time.Time) []events.VisitRecorded {
	// Cats typically use a litterbox 2 to 4 times per day.
	count := 2 + g.rng.Intn(3)

	enterTimes := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		enterTimes = append(enterTimes, g.visitStart(day))
	}
	sort.Slice(enterTimes, func(i, j int) bool { return enterTimes[i].Before(enterTimes[j]) })

	visits := make([]events.VisitRecorded, 0, count)
	for _, enter := range enterTimes {
		weightEnter, weightExit := g.weights()
		visits = append(visits, events.VisitRecorded{
			EventID:     uuid.NewString(),
			DeviceID:    g.deviceID,
			EnterTime:   enter,
			ExitTime:    enter.Add(g.sessionDuration()),
			WeightEnter: weightEnter,
			WeightExit:  weightExit,
		})
	}
	return visits
}

func (g *Generator) visitStart(day time.Time) time.Time {
	choice := g.rng.Float64()
	cumulative := 0.0
	period := timePeriods[len(timePeriods)-1]
	for _, p := range timePeriods {
		cumulative += p.prob
		if choice <= cumulative {
			period = p
			break
		}
	}

	hour := period.startHour + g.rng.Intn(period.endHour-period.startHour)
	return day.Add(time.Duration(hour)*time.Hour +
		time.Duration(g.rng.Intn(60))*time.Minute +
		time.Duration(g.rng.Intn(60))*time.Second)
}

// sessionDuration draws from a normal distribution around two minutes,
// clamped to the 30s..5m range a real sensor reports.
func (g *Generator) sessionDuration() time.Duration {
	seconds := g.rng.NormFloat64()*60 + 120
	if seconds < 30 {
		seconds = 30
	}
	if seconds > 300 {
		seconds = 300
	}
	return time.Duration(int(seconds)) * time.Second
}

// weights returns enter and exit scale readings. Entering: box + litter +
// cat. Exiting: box + litter + waste. Readings are rounded to the sensor's
// 0.1 lb resolution.
func (g *Generator) weights() (float64, float64) {
	litter := g.uniform(17.6, 33.1)
	cat := g.uniform(6.6, 13.2)

	// 70% of visits are urine only, 25% both, 5% feces only.
	var waste float64
	switch visitType := g.rng.Float64(); {
	case visitType < 0.70:
		waste = g.uniform(0.011, 0.033)
	case visitType < 0.95:
		waste = g.uniform(0.011, 0.033) + g.uniform(0.022, 0.066)
	default:
		waste = g.uniform(0.022, 0.066)
	}

	enter := roundTenth(emptyBoxWeight + litter + cat)
	exit := roundTenth(emptyBoxWeight + litter + waste)
	return enter, exit
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
