package services

import (
	"context"
	"time"

	"github.com/jeanmiCORNEC/linkforge/internal/analytics"
	"github.com/jeanmiCORNEC/linkforge/internal/features"
	"github.com/jeanmiCORNEC/linkforge/internal/repository"

	"gorm.io/gorm"
)

// StatsResponse is a stats payload plus the optional conversion rollup.
type StatsResponse struct {
	analytics.Stats
	Conversions *analytics.ConversionSummary `json:"conversions,omitempty"`
}

// AnalyticsService feeds scoped click rows into the pure aggregation engine
// and applies the caller's capability scope to the result.
type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		db:  db,
		now: time.Now,
	}
}

// Stats computes windowed analytics for a scope. Insight sections are
// computed only when requested and allowed; deltas are zeroed out for plans
// without access rather than leaking the comparison.
func (s *AnalyticsService) Stats(ctx context.Context, scope repository.ClickScope, days int, insights []string, fs features.Scope) (StatsResponse, error) {
	days = analytics.ClampDays(days)
	now := s.now()

	// The engine compares against the previous window of equal length, so
	// fetch twice the requested range.
	since := now.AddDate(0, 0, -2*days)

	rows, err := repository.ClickRows(s.db.WithContext(ctx), scope, since, now)
	if err != nil {
		return StatsResponse{}, err
	}

	allowed := make([]string, 0, len(insights))
	for _, insight := range insights {
		switch insight {
		case analytics.InsightSources, analytics.InsightLinks, analytics.InsightDays:
			if fs.TopLists {
				allowed = append(allowed, insight)
			}
		case analytics.InsightHeatmap:
			if fs.Heatmap {
				allowed = append(allowed, insight)
			}
		}
	}

	stats := analytics.WithInsights(rows, now, days, allowed)
	if !fs.Deltas {
		stats.Delta = analytics.Delta{}
	}

	resp := StatsResponse{Stats: stats}

	if fs.Conversions {
		windowStart := now.AddDate(0, 0, -days)
		convRows, err := repository.ConversionRows(s.db.WithContext(ctx), scope, windowStart, now)
		if err != nil {
			return StatsResponse{}, err
		}
		summary := analytics.SummarizeConversions(convRows, windowStart, now)
		resp.Conversions = &summary
	}

	return resp, nil
}

// ReconciledRows produces the per-click audit export for a scope and date
// range, each row annotated with at most one matched conversion.
func (s *AnalyticsService) ReconciledRows(ctx context.Context, scope repository.ClickScope, since, until time.Time) ([]analytics.ReconciledRow, error) {
	clicks, err := repository.ClickRows(s.db.WithContext(ctx), scope, since, until)
	if err != nil {
		return nil, err
	}

	conversions, err := repository.ConversionRows(s.db.WithContext(ctx), scope, since, until)
	if err != nil {
		return nil, err
	}

	return analytics.ReconcileWindow(clicks, conversions, since, until), nil
}
