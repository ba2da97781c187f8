package timerange

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Range
	}{
		{"today", "today", Today},
		{"week", "7d", Week},
		{"month", "30d", Month},
		{"all", "all", All},
		{"empty defaults", "", Week},
		{"garbage defaults", "14d", Week},
		{"case sensitive", "Today", Week},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolver_StartOf(t *testing.T) {
	t.Parallel()

	// Fixed zone avoids a tzdata dependency in tests.
	loc := time.FixedZone("UTC-5", -5*3600)
	// 2024-03-15 10:30 local time
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, loc)
	r := NewResolverAt(loc, func() time.Time { return now })

	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, loc).Unix()

	tests := []struct {
		name string
		rg   Range
		want int64
	}{
		{"today", Today, midnight},
		{"week", Week, midnight - 6*86400},
		{"month", Month, midnight - 29*86400},
		{"all", All, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.StartOf(tt.rg); got != tt.want {
				t.Errorf("StartOf(%q) = %d, want %d", tt.rg, got, tt.want)
			}
		})
	}
}

func TestResolver_StartOf_TimezoneMatters(t *testing.T) {
	t.Parallel()

	// 2024-03-15 01:00 UTC is still 2024-03-14 in UTC-5.
	now := time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC)

	utc := NewResolverAt(time.UTC, func() time.Time { return now })
	west := NewResolverAt(time.FixedZone("UTC-5", -5*3600), func() time.Time { return now })

	if utc.StartOf(Today) == west.StartOf(Today) {
		t.Error("expected different local midnights across timezones")
	}

	wantWest := time.Date(2024, 3, 14, 0, 0, 0, 0, time.FixedZone("UTC-5", -5*3600)).Unix()
	if got := west.StartOf(Today); got != wantWest {
		t.Errorf("west StartOf(today) = %d, want %d", got, wantWest)
	}
}

func TestResolver_BucketCount(t *testing.T) {
	t.Parallel()

	r := NewResolver(time.UTC)

	tests := []struct {
		rg   Range
		want int
	}{
		{Today, 1},
		{Week, 7},
		{Month, 30},
		{All, 30}, // timeline stays capped even though totals are unbounded
	}

	for _, tt := range tests {
		if got := r.BucketCount(tt.rg); got != tt.want {
			t.Errorf("BucketCount(%q) = %d, want %d", tt.rg, got, tt.want)
		}
	}
}

func TestResolver_DayDates(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	r := NewResolverAt(time.UTC, func() time.Time { return now })

	dates := r.DayDates(3)
	want := []string{"2024-03-13", "2024-03-14", "2024-03-15"}

	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %q, want %q", i, dates[i], want[i])
		}
	}
}

func TestResolver_DayDates_CrossesMonthBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewResolverAt(time.UTC, func() time.Time { return now })

	dates := r.DayDates(2)
	if dates[0] != "2024-02-29" || dates[1] != "2024-03-01" {
		t.Errorf("leap-year month boundary mishandled: %v", dates)
	}
}

func TestResolver_LocalDate(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+7", 7*3600)
	r := NewResolver(loc)

	// 2024-03-14 20:00 UTC = 2024-03-15 03:00 in UTC+7
	ts := time.Date(2024, 3, 14, 20, 0, 0, 0, time.UTC).Unix()
	if got := r.LocalDate(ts); got != "2024-03-15" {
		t.Errorf("LocalDate = %q, want 2024-03-15", got)
	}
}

func TestNewResolverAt_NilLocation(t *testing.T) {
	t.Parallel()

	r := NewResolverAt(nil, time.Now)
	if r.Location() != time.UTC {
		t.Error("nil location should default to UTC")
	}
}
