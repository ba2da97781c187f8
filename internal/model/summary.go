package model

import "time"

// Totals holds event counts for each fixed dashboard range.
// Always computed over the full type-filtered event set, independent of
// the range the caller selected.
type Totals struct {
	Today int `json:"today"`
	Week  int `json:"7d"`
	Month int `json:"30d"`
	All   int `json:"all"`
}

// TopPageEntry is one ranked leaderboard row, grouping events by target
// page when one is associated, else by raw reference string.
type TopPageEntry struct {
	TargetID  int64  `json:"target_id,omitempty"`
	Reference string `json:"reference,omitempty"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Count     int    `json:"count"`
}

// TimelineBucket is one calendar day of the dashboard timeline, in the
// site-local calendar. Days without events still appear with count 0.
type TimelineBucket struct {
	Date  string `json:"date"` // YYYY-MM-DD, site-local
	Count int    `json:"count"`
}

// Summary is the dashboard-ready aggregation payload.
type Summary struct {
	Range       string           `json:"range"`
	Total       int              `json:"total"`
	Totals      Totals           `json:"totals"`
	Top         []TopPageEntry   `json:"top"`
	Timeline    []TimelineBucket `json:"timeline"`
	GeneratedAt time.Time        `json:"generated_at"`
}
