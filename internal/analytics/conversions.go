package analytics

import (
	"time"
)

// ConversionSummary is the windowed rollup attached to analytics responses.
type ConversionSummary struct {
	Total      int            `json:"total"`
	Revenue    float64        `json:"revenue"`
	Commission float64        `json:"commission"`
	ByStatus   map[string]int `json:"by_status"`
}

// SummarizeConversions rolls up conversions created within [since, until].
func SummarizeConversions(rows []ConversionRow, since, until time.Time) ConversionSummary {
	summary := ConversionSummary{ByStatus: make(map[string]int)}

	for _, r := range rows {
		if r.CreatedAt.Before(since) || r.CreatedAt.After(until) {
			continue
		}
		summary.Total++
		summary.Revenue += r.Revenue
		summary.Commission += r.Commission
		summary.ByStatus[r.Status]++
	}

	return summary
}
