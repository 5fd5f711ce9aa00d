package analytics

import (
	"fmt"
	"sort"
	"time"
)

// StatusClickOnly marks a reconciled row whose click found no conversion.
const StatusClickOnly = "click"

// ReconciledRow is one click annotated with at most one matched conversion.
type ReconciledRow struct {
	ClickID       uint    `json:"click_id"`
	ClickedAt     string  `json:"clicked_at"`
	CampaignID    uint    `json:"campaign_id"`
	CampaignName  string  `json:"campaign_name"`
	SourceID      uint    `json:"source_id"`
	SourceName    string  `json:"source_name"`
	Platform      string  `json:"platform"`
	LinkID        uint    `json:"link_id"`
	LinkTitle     string  `json:"link_title"`
	TrackedLinkID uint    `json:"tracked_link_id"`
	TrackingKey   string  `json:"tracking_key"`
	IPAddress     string  `json:"ip_address"`
	VisitorHash   string  `json:"visitor_hash"`
	Device        string  `json:"device"`
	Browser       string  `json:"browser"`
	OS            string  `json:"os"`
	CountryCode   string  `json:"country_code"`
	Referrer      string  `json:"referrer"`
	OrderID       string  `json:"order_id"`
	ConversionID  uint    `json:"conversion_id"`
	Revenue       float64 `json:"revenue"`
	Commission    float64 `json:"commission"`
	Status        string  `json:"status"`
}

// Reconcile matches clicks to conversions greedily, exactly once each:
// clicks are walked in chronological order; each one first pops the oldest
// unconsumed conversion sharing its (trackedLinkID, visitorHash), then falls
// back to the oldest unconsumed conversion on the same tracked link. A
// consumed conversion disappears from both indexes. Unmatched clicks get the
// "click" sentinel with zero amounts.
//
// The matching is greedy and order-dependent, not a global optimum.
func Reconcile(clicks []ClickRow, conversions []ConversionRow) []ReconciledRow {
	ordered := make([]ClickRow, len(clicks))
	copy(ordered, clicks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ClickedAt.Before(ordered[j].ClickedAt)
	})

	byCreation := make([]ConversionRow, len(conversions))
	copy(byCreation, conversions)
	sort.SliceStable(byCreation, func(i, j int) bool {
		return byCreation[i].CreatedAt.Before(byCreation[j].CreatedAt)
	})

	lookup := make(map[uint]ConversionRow, len(byCreation))
	specific := make(map[string][]uint)
	fallback := make(map[uint][]uint)
	for _, conv := range byCreation {
		lookup[conv.ConversionID] = conv
		if conv.VisitorHash != "" {
			key := specificKey(conv.TrackedLinkID, conv.VisitorHash)
			specific[key] = append(specific[key], conv.ConversionID)
		}
		fallback[conv.TrackedLinkID] = append(fallback[conv.TrackedLinkID], conv.ConversionID)
	}

	used := make(map[uint]bool, len(byCreation))

	rows := make([]ReconciledRow, 0, len(ordered))
	for _, click := range ordered {
		var matched *ConversionRow

		if click.VisitorHash != "" {
			key := specificKey(click.TrackedLinkID, click.VisitorHash)
			if id, ok := shift(specific, key, used); ok {
				conv := lookup[id]
				matched = &conv
			}
		}

		if matched == nil && click.TrackedLinkID != 0 {
			if id, ok := shift(fallback, click.TrackedLinkID, used); ok {
				conv := lookup[id]
				matched = &conv
			}
		}

		row := baseRow(click)
		if matched != nil {
			row.OrderID = matched.OrderID
			row.ConversionID = matched.ConversionID
			row.Revenue = matched.Revenue
			row.Commission = matched.Commission
			row.Status = matched.Status
		}

		rows = append(rows, row)
	}

	return rows
}

// ReconcileWindow bounds both sides to [since, until] before matching.
func ReconcileWindow(clicks []ClickRow, conversions []ConversionRow, since, until time.Time) []ReconciledRow {
	boundedClicks := make([]ClickRow, 0, len(clicks))
	for _, c := range clicks {
		if !c.ClickedAt.Before(since) && !c.ClickedAt.After(until) {
			boundedClicks = append(boundedClicks, c)
		}
	}

	boundedConvs := make([]ConversionRow, 0, len(conversions))
	for _, c := range conversions {
		if !c.CreatedAt.Before(since) && !c.CreatedAt.After(until) {
			boundedConvs = append(boundedConvs, c)
		}
	}

	return Reconcile(boundedClicks, boundedConvs)
}

func baseRow(click ClickRow) ReconciledRow {
	return ReconciledRow{
		ClickID:       click.ClickID,
		ClickedAt:     click.ClickedAt.Format(time.DateTime),
		CampaignID:    click.CampaignID,
		CampaignName:  click.CampaignName,
		SourceID:      click.SourceID,
		SourceName:    click.SourceName,
		Platform:      click.SourcePlatform,
		LinkID:        click.LinkID,
		LinkTitle:     click.LinkTitle,
		TrackedLinkID: click.TrackedLinkID,
		TrackingKey:   click.TrackingKey,
		IPAddress:     click.IPAddress,
		VisitorHash:   click.VisitorHash,
		Device:        click.Device,
		Browser:       click.Browser,
		OS:            click.OS,
		CountryCode:   click.Country,
		Referrer:      click.Referrer,
		Status:        StatusClickOnly,
	}
}

func specificKey(trackedLinkID uint, visitorHash string) string {
	return fmt.Sprintf("%d|%s", trackedLinkID, visitorHash)
}

// shift pops the oldest unconsumed conversion id from the bucket, marking it
// consumed globally so the other index can never hand it out again.
func shift[K comparable](buckets map[K][]uint, key K, used map[uint]bool) (uint, bool) {
	bucket := buckets[key]
	for len(bucket) > 0 {
		id := bucket[0]
		bucket = bucket[1:]
		if used[id] {
			continue
		}
		used[id] = true
		buckets[key] = bucket
		return id, true
	}
	buckets[key] = bucket
	return 0, false
}
