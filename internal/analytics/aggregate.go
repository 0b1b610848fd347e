// Package analytics turns raw litterbox visit records into trend summaries.
//
// Everything in this package is pure: identical inputs always produce
// identical outputs, and nothing here performs I/O or holds state.
package analytics

import (
	"sort"
	"time"

	"example.com/litterbox/internal/domain"
)

// DailyBucket is the visit count for one calendar day.
type DailyBucket struct {
	Date       time.Time `json:"date"`
	VisitCount int       `json:"visit_count"`
}

// HourlyDistribution holds visit counts indexed by hour of day (0-23).
type HourlyDistribution [24]int

// Total returns the sum over all 24 slots.
func (h HourlyDistribution) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// SummaryStats are the derived statistics for one aggregation pass.
type SummaryStats struct {
	TotalVisits        int     `json:"total_visits"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
	AvgWeight          float64 `json:"avg_weight"`
	VisitsPerDay       float64 `json:"visits_per_day"`
}

// Report bundles the outputs of a single aggregation pass. All fields are
// rebuilt together from the record set that produced them; none is cached
// independently.
type Report struct {
	Daily  []DailyBucket
	Hourly HourlyDistribution
	Stats  SummaryStats

	// DurationMismatches counts records whose reported duration disagrees
	// with their enter/exit timestamps by more than a minute. The reported
	// values are kept as-is; this only flags the inconsistency.
	DurationMismatches int
}

// Aggregate groups records into daily and hourly buckets and derives summary
// statistics for the window. The window's day span guards visits-per-day
// against empty or inverted ranges.
func Aggregate(records []domain.UsageRecord, window domain.QueryWindow) Report {
	var report Report

	daily := make(map[time.Time]int)
	var totalDuration, totalWeight float64

	for _, rec := range records {
		day := domain.Midnight(rec.EnterTime)
		daily[day]++
		report.Hourly[rec.EnterTime.Hour()]++

		totalDuration += rec.DurationMinutes
		totalWeight += rec.CatWeight

		if mismatched(rec) {
			report.DurationMismatches++
		}
	}

	report.Daily = make([]DailyBucket, 0, len(daily))
	for day, count := range daily {
		report.Daily = append(report.Daily, DailyBucket{Date: day, VisitCount: count})
	}
	sort.Slice(report.Daily, func(i, j int) bool {
		return report.Daily[i].Date.Before(report.Daily[j].Date)
	})

	total := len(records)
	report.Stats.TotalVisits = total
	if total > 0 {
		report.Stats.AvgDurationMinutes = totalDuration / float64(total)
		report.Stats.AvgWeight = totalWeight / float64(total)
	}
	report.Stats.VisitsPerDay = float64(total) / float64(window.DaySpan())

	return report
}

func mismatched(rec domain.UsageRecord) bool {
	elapsed := rec.ExitTime.Sub(rec.EnterTime).Minutes()
	diff := rec.DurationMinutes - elapsed
	if diff < 0 {
		diff = -diff
	}
	return diff > 1
}
