package domain

import "time"

// UsageRecord is a single litterbox visit as served to analytics consumers.
// DurationMinutes and CatWeight are supplied by the upstream source and are
// trusted as given rather than recomputed from the timestamps.
type UsageRecord struct {
	ID              string    `json:"id"`
	EnterTime       time.Time `json:"enter_time"`
	ExitTime        time.Time `json:"exit_time"`
	DurationMinutes float64   `json:"duration_minutes"`
	CatWeight       float64   `json:"cat_weight"`
	DeviceName      string    `json:"device_name"`
	LitterboxName   string    `json:"litterbox_name"`
}

// QueryWindow selects the cat and the inclusive calendar-date range for a
// usage query. Start and End carry no meaningful time-of-day component; the
// fetch layer expands them to [Start 00:00:00, End 23:59:59].
type QueryWindow struct {
	SubjectID string
	Start     time.Time
	End       time.Time
}

// Valid reports whether the window can be fetched at all: a subject must be
// selected and the range must not be inverted.
func (w QueryWindow) Valid() bool {
	return w.SubjectID != "" && !w.Start.After(w.End)
}

// DaySpan returns the inclusive number of calendar days covered by the
// window, never less than 1. Days are counted on the calendar, so a daylight
// saving transition that shortens a day to 23 hours still counts as one day.
func (w QueryWindow) DaySpan() int {
	span := int(midnightUTC(w.End).Sub(midnightUTC(w.Start)).Hours()/24) + 1
	if span < 1 {
		return 1
	}
	return span
}

// midnightUTC maps a timestamp to the start of its calendar day in UTC,
// where every day is exactly 24 hours long.
func midnightUTC(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates a timestamp to the start of its calendar day, keeping
// the original location.
func Midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
