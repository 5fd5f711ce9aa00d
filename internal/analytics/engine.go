package analytics

import (
	"math"
	"sort"
	"time"
)

// Optional insight sections. Base stats are always computed; each section is
// only paid for when requested.
const (
	InsightSources = "sources"
	InsightLinks   = "links"
	InsightDays    = "days"
	InsightHeatmap = "heatmap"
)

const (
	DefaultDays = 7
	MaxDays     = 365
	topLimit    = 5
)

// unknownLabel replaces empty device/browser values in breakdowns.
const unknownLabel = "unknown"

type Period struct {
	Days  int    `json:"days"`
	Since string `json:"since"`
	Until string `json:"until"`
}

type Delta struct {
	TotalClicks    int `json:"totalClicks"`
	UniqueVisitors int `json:"uniqueVisitors"`
}

type DayCount struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
}

type RankedDay struct {
	Date       string `json:"date"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type RankedSource struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Platform   string `json:"platform"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type RankedLink struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Destination string `json:"destination"`
	Total       int    `json:"total"`
	Percentage  int    `json:"percentage"`
}

type HeatmapCell struct {
	Date         string `json:"date"`
	Weekday      int    `json:"weekday"`
	WeekdayLabel string `json:"weekdayLabel"`
	Hour         int    `json:"hour"`
	Total        int    `json:"total"`
}

// Stats is the analytics result for one scope and window.
//
// TotalClicks is the windowed count; no lifetime count is exposed under that
// name, and Delta.TotalClicks compares the same windowed metric against the
// previous window.
type Stats struct {
	TotalClicks    int            `json:"totalClicks"`
	UniqueVisitors int            `json:"uniqueVisitors"`
	Devices        map[string]int `json:"devices"`
	Browsers       map[string]int `json:"browsers"`
	ClicksPerDay   []DayCount     `json:"clicksPerDay"`
	Period         Period         `json:"period"`
	Delta          Delta          `json:"delta"`

	TopSources    []RankedSource `json:"topSources,omitempty"`
	TopLinks      []RankedLink   `json:"topLinks,omitempty"`
	TopDays       []RankedDay    `json:"topDays,omitempty"`
	HourlyHeatmap []HeatmapCell  `json:"hourlyHeatmap,omitempty"`
}

// ClampDays normalizes the requested window length to [1, MaxDays],
// defaulting to DefaultDays for non-positive input.
func ClampDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

// BaseStats aggregates rows over the trailing window of `days` days ending at
// now: windowed total, unique visitors, device/browser breakdowns, a sparse
// per-day series and deltas against the immediately preceding window of equal
// length.
func BaseStats(rows []ClickRow, now time.Time, days int) Stats {
	days = ClampDays(days)
	since := now.AddDate(0, 0, -days)
	previousStart := since.AddDate(0, 0, -days)

	current := windowRows(rows, since, now)
	previous := windowRows(rows, previousStart, since)

	stats := Stats{
		TotalClicks:    len(current),
		UniqueVisitors: uniqueVisitors(current),
		Devices:        breakdown(current, func(r ClickRow) string { return r.Device }),
		Browsers:       breakdown(current, func(r ClickRow) string { return r.Browser }),
		ClicksPerDay:   clicksPerDay(current),
		Period: Period{
			Days:  days,
			Since: since.Format("2006-01-02"),
			Until: now.Format("2006-01-02"),
		},
	}

	stats.Delta = Delta{
		TotalClicks:    DeltaPercent(stats.TotalClicks, len(previous)),
		UniqueVisitors: DeltaPercent(stats.UniqueVisitors, uniqueVisitors(previous)),
	}

	return stats
}

// WithInsights computes BaseStats plus only the requested insight sections.
func WithInsights(rows []ClickRow, now time.Time, days int, insights []string) Stats {
	stats := BaseStats(rows, now, days)

	days = ClampDays(days)
	since := now.AddDate(0, 0, -days)
	window := windowRows(rows, since, now)
	windowTotal := len(window)

	for _, insight := range insights {
		switch insight {
		case InsightSources:
			stats.TopSources = topSources(window, windowTotal)
		case InsightLinks:
			stats.TopLinks = topLinks(window, windowTotal)
		case InsightDays:
			stats.TopDays = topDays(stats.ClicksPerDay, windowTotal)
		case InsightHeatmap:
			stats.HourlyHeatmap = hourlyHeatmap(window)
		}
	}

	return stats
}

// DeltaPercent is the rounded percentage change between two window counts.
// A previous window of zero maps to +100 when anything happened, 0 otherwise.
func DeltaPercent(current, previous int) int {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}

	return int(math.Round(float64(current-previous) / float64(previous) * 100))
}

// windowRows keeps rows with since < ClickedAt <= until, sorted by click time
// so grouped orders stay deterministic.
func windowRows(rows []ClickRow, since, until time.Time) []ClickRow {
	out := make([]ClickRow, 0, len(rows))
	for _, r := range rows {
		if r.ClickedAt.After(since) && !r.ClickedAt.After(until) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ClickedAt.Before(out[j].ClickedAt)
	})
	return out
}

func uniqueVisitors(rows []ClickRow) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.VisitorHash == "" {
			continue
		}
		seen[r.VisitorHash] = struct{}{}
	}
	return len(seen)
}

func breakdown(rows []ClickRow, field func(ClickRow) string) map[string]int {
	out := make(map[string]int)
	for _, r := range rows {
		label := field(r)
		if label == "" {
			label = unknownLabel
		}
		out[label]++
	}
	return out
}

// clicksPerDay builds the sparse per-day series: one entry per calendar day
// with at least one click, ascending by date. Zero-filled series are the
// caller's business.
func clicksPerDay(rows []ClickRow) []DayCount {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.ClickedAt.Format("2006-01-02")]++
	}

	out := make([]DayCount, 0, len(counts))
	for date, total := range counts {
		out = append(out, DayCount{Date: date, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func percentage(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// rankGroups counts rows per key, keeping first-seen order as the tie-break
// among equal counts.
func rankGroups(rows []ClickRow, key func(ClickRow) (uint, bool)) []uint {
	counts := make(map[uint]int)
	order := make([]uint, 0)
	for _, r := range rows {
		id, ok := key(r)
		if !ok {
			continue
		}
		if _, seen := counts[id]; !seen {
			order = append(order, id)
		}
		counts[id]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > topLimit {
		order = order[:topLimit]
	}
	return order
}

func topSources(window []ClickRow, total int) []RankedSource {
	counts := make(map[uint]int)
	latest := make(map[uint]ClickRow)
	for _, r := range window {
		if r.SourceID == 0 {
			continue
		}
		counts[r.SourceID]++
		latest[r.SourceID] = r
	}

	ranked := rankGroups(window, func(r ClickRow) (uint, bool) { return r.SourceID, r.SourceID != 0 })

	out := make([]RankedSource, 0, len(ranked))
	for _, id := range ranked {
		row := latest[id]
		out = append(out, RankedSource{
			ID:         id,
			Name:       row.SourceName,
			Platform:   row.SourcePlatform,
			Total:      counts[id],
			Percentage: percentage(counts[id], total),
		})
	}
	return out
}

func topLinks(window []ClickRow, total int) []RankedLink {
	counts := make(map[uint]int)
	latest := make(map[uint]ClickRow)
	for _, r := range window {
		if r.LinkID == 0 {
			continue
		}
		counts[r.LinkID]++
		latest[r.LinkID] = r
	}

	ranked := rankGroups(window, func(r ClickRow) (uint, bool) { return r.LinkID, r.LinkID != 0 })

	out := make([]RankedLink, 0, len(ranked))
	for _, id := range ranked {
		row := latest[id]
		out = append(out, RankedLink{
			ID:          id,
			Title:       row.LinkTitle,
			Destination: row.LinkDestination,
			Total:       counts[id],
			Percentage:  percentage(counts[id], total),
		})
	}
	return out
}

func topDays(perDay []DayCount, total int) []RankedDay {
	ranked := make([]DayCount, len(perDay))
	copy(ranked, perDay)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Total > ranked[j].Total })

	if len(ranked) > topLimit {
		ranked = ranked[:topLimit]
	}

	out := make([]RankedDay, 0, len(ranked))
	for _, day := range ranked {
		out = append(out, RankedDay{
			Date:       day.Date,
			Total:      day.Total,
			Percentage: percentage(day.Total, total),
		})
	}
	return out
}

// hourlyHeatmap emits one cell per (date, hour) pair with at least one click.
// Hours without clicks produce no cell.
func hourlyHeatmap(window []ClickRow) []HeatmapCell {
	type slot struct {
		date string
		hour int
	}

	counts := make(map[slot]int)
	weekdays := make(map[slot]time.Weekday)
	for _, r := range window {
		s := slot{date: r.ClickedAt.Format("2006-01-02"), hour: r.ClickedAt.Hour()}
		counts[s]++
		weekdays[s] = r.ClickedAt.Weekday()
	}

	out := make([]HeatmapCell, 0, len(counts))
	for s, total := range counts {
		wd := weekdays[s]
		out = append(out, HeatmapCell{
			Date:         s.date,
			Weekday:      int(wd),
			WeekdayLabel: wd.String()[:3],
			Hour:         s.hour,
			Total:        total,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Hour < out[j].Hour
	})
	return out
}
