// Package aggregate computes dashboard-ready summaries over the event
// log: range totals, a top-N page leaderboard and a day-bucketed
// timeline. All computation happens fresh on every read; nothing here
// is persisted.
package aggregate

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/fiberpulse/fiberpulse/internal/model"
	"github.com/fiberpulse/fiberpulse/internal/store"
	"github.com/fiberpulse/fiberpulse/internal/timerange"
)

// DefaultTopLimit is the leaderboard size.
const DefaultTopLimit = 10

// unknownTitle labels leaderboard rows whose page cannot be resolved.
const unknownTitle = "Unknown"

// SummaryPostProcessor can adjust a summary before it is returned.
// It replaces ad-hoc output mutation hooks with a typed, discoverable
// extension point.
type SummaryPostProcessor interface {
	Process(ctx context.Context, s *model.Summary)
}

// Aggregator reads the event store and produces summaries.
type Aggregator struct {
	store    store.EventStore
	resolver *timerange.Resolver
	pages    PageResolver
	post     SummaryPostProcessor
}

// New creates an Aggregator.
func New(st store.EventStore, resolver *timerange.Resolver, pages PageResolver) *Aggregator {
	return &Aggregator{
		store:    st,
		resolver: resolver,
		pages:    pages,
	}
}

// SetPostProcessor installs a summary post-processor. Passing nil
// removes it.
func (a *Aggregator) SetPostProcessor(p SummaryPostProcessor) {
	a.post = p
}

// FilterByType keeps only events of the given type. Stored types are
// normalized before comparison, so entries written by older versions
// with odd casing still match.
func FilterByType(events []model.MetricEvent, eventType string) []model.MetricEvent {
	out := make([]model.MetricEvent, 0, len(events))
	for _, ev := range events {
		if model.NormalizeEventType(ev.Type) == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// FilterByRange keeps only events at or after the range's start. The
// unbounded range returns the input unchanged.
func (a *Aggregator) FilterByRange(events []model.MetricEvent, rg timerange.Range) []model.MetricEvent {
	start := a.resolver.StartOf(rg)
	if start == 0 {
		return events
	}

	out := make([]model.MetricEvent, 0, len(events))
	for _, ev := range events {
		if ev.Timestamp >= start {
			out = append(out, ev)
		}
	}
	return out
}

// CountInRange counts events within the range.
func (a *Aggregator) CountInRange(events []model.MetricEvent, rg timerange.Range) int {
	return len(a.FilterByRange(events, rg))
}

// BuildTotals computes the count for every fixed range. It is always
// fed the full type-filtered set, never a range-filtered one: the
// dashboard shows all four totals regardless of the selected range.
func (a *Aggregator) BuildTotals(events []model.MetricEvent) model.Totals {
	return model.Totals{
		Today: a.CountInRange(events, timerange.Today),
		Week:  a.CountInRange(events, timerange.Week),
		Month: a.CountInRange(events, timerange.Month),
		All:   len(events),
	}
}

// pageGroup accumulates one leaderboard group.
type pageGroup struct {
	targetID  int64
	reference string
	count     int
}

// BuildTopPages groups events by target page (or raw reference when no
// page is associated), ranks groups by count descending and returns the
// top limit entries with resolved titles and URLs.
//
// Ties keep the order in which each group first appeared in the event
// sequence. Target-based and reference-based keys live in disjoint
// namespaces so a numeric referrer string cannot collide with a page id.
func (a *Aggregator) BuildTopPages(ctx context.Context, events []model.MetricEvent, limit int) []model.TopPageEntry {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	groups := make(map[string]*pageGroup)
	order := make([]string, 0)

	for _, ev := range events {
		var key string
		if ev.TargetID > 0 {
			key = "id:" + strconv.FormatInt(ev.TargetID, 10)
		} else {
			// An empty reference still forms a valid group.
			key = "ref:" + ev.Reference
		}

		g, ok := groups[key]
		if !ok {
			g = &pageGroup{targetID: ev.TargetID, reference: ev.Reference}
			if ev.TargetID > 0 {
				g.reference = ""
			}
			groups[key] = g
			order = append(order, key)
		}
		g.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]].count > groups[order[j]].count
	})
	if len(order) > limit {
		order = order[:limit]
	}

	top := make([]model.TopPageEntry, 0, len(order))
	for _, key := range order {
		g := groups[key]
		entry := model.TopPageEntry{
			TargetID:  g.targetID,
			Reference: g.reference,
			Title:     unknownTitle,
			Count:     g.count,
		}

		if g.targetID > 0 {
			if page, ok := a.pages.ResolvePage(ctx, g.targetID); ok {
				if page.Title != "" {
					entry.Title = page.Title
				}
				entry.URL = page.URL
			}
		} else {
			entry.URL = g.reference
		}

		top = append(top, entry)
	}
	return top
}

// BuildTimeline buckets events by local calendar day over the range's
// window. Every day appears, oldest first, including days with zero
// events; events outside the window are ignored.
func (a *Aggregator) BuildTimeline(events []model.MetricEvent, rg timerange.Range) []model.TimelineBucket {
	dates := a.resolver.DayDates(a.resolver.BucketCount(rg))

	index := make(map[string]int, len(dates))
	buckets := make([]model.TimelineBucket, len(dates))
	for i, d := range dates {
		buckets[i] = model.TimelineBucket{Date: d}
		index[d] = i
	}

	for _, ev := range events {
		if i, ok := index[a.resolver.LocalDate(ev.Timestamp)]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

// EventsInRange reads the store and applies the same type and range
// filters the dashboard uses. The exporter goes through this path so a
// download always matches what the dashboard showed.
func (a *Aggregator) EventsInRange(ctx context.Context, rg timerange.Range) []model.MetricEvent {
	typed := FilterByType(a.store.GetAll(ctx), model.EventTypeCTAClick)
	return a.FilterByRange(typed, rg)
}

// PrepareSummary reads the event store and assembles the full dashboard
// payload for the requested range token.
func (a *Aggregator) PrepareSummary(ctx context.Context, rawRange string) model.Summary {
	rg := timerange.Normalize(rawRange)

	typed := FilterByType(a.store.GetAll(ctx), model.EventTypeCTAClick)
	windowed := a.FilterByRange(typed, rg)

	s := model.Summary{
		Range:       string(rg),
		Total:       len(windowed),
		Totals:      a.BuildTotals(typed),
		Top:         a.BuildTopPages(ctx, windowed, DefaultTopLimit),
		Timeline:    a.BuildTimeline(windowed, rg),
		GeneratedAt: time.Now().UTC(),
	}

	if a.post != nil {
		a.post.Process(ctx, &s)
	}
	return s
}
