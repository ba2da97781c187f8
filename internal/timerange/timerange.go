// Package timerange resolves symbolic dashboard range tokens into
// concrete time windows in the site's local timezone.
package timerange

import "time"

// Range is a symbolic window selector.
type Range string

// Supported range tokens.
const (
	Today Range = "today"
	Week  Range = "7d"
	Month Range = "30d"
	All   Range = "all"

	// Default is used when input is missing or unrecognized.
	Default = Week
)

// Normalize maps arbitrary input to a supported Range.
func Normalize(raw string) Range {
	switch Range(raw) {
	case Today, Week, Month, All:
		return Range(raw)
	default:
		return Default
	}
}

// Resolver computes window boundaries anchored to local midnight.
// The timezone is injected at construction so that date-bucketing is
// testable without ambient global state.
type Resolver struct {
	loc *time.Location
	now func() time.Time
}

// NewResolver creates a Resolver using the real clock.
func NewResolver(loc *time.Location) *Resolver {
	return NewResolverAt(loc, time.Now)
}

// NewResolverAt creates a Resolver with an injected clock.
func NewResolverAt(loc *time.Location, now func() time.Time) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc, now: now}
}

// Location returns the resolver's timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// StartOf returns the inclusive lower bound of the window as UTC epoch
// seconds. All returns 0, meaning no lower bound. Windows are inclusive
// of today: Week covers today plus the 6 preceding calendar days.
func (r *Resolver) StartOf(rg Range) int64 {
	switch rg {
	case Today:
		return r.midnight(0).Unix()
	case Week:
		return r.midnight(-6).Unix()
	case Month:
		return r.midnight(-29).Unix()
	default:
		return 0
	}
}

// BucketCount returns the number of calendar-day buckets a timeline for
// the range renders. All is capped at 30: the dashboard only draws the
// most recent month even though totals over All are unbounded.
func (r *Resolver) BucketCount(rg Range) int {
	switch rg {
	case Today:
		return 1
	case Week:
		return 7
	default:
		return 30
	}
}

// DayDates returns the local calendar dates (YYYY-MM-DD) of the last n
// days, oldest first, ending on today.
func (r *Resolver) DayDates(n int) []string {
	dates := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		dates = append(dates, r.midnight(-i).Format("2006-01-02"))
	}
	return dates
}

// LocalDate formats a UTC epoch timestamp as a local calendar date.
func (r *Resolver) LocalDate(ts int64) string {
	return time.Unix(ts, 0).In(r.loc).Format("2006-01-02")
}

// LocalTime converts a UTC epoch timestamp to local time.
func (r *Resolver) LocalTime(ts int64) time.Time {
	return time.Unix(ts, 0).In(r.loc)
}

// midnight returns local midnight offset by days from today.
func (r *Resolver) midnight(days int) time.Time {
	now := r.now().In(r.loc)
	m := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)
	if days != 0 {
		m = m.AddDate(0, 0, days)
	}
	return m
}
