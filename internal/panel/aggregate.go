package panel

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/models"
)

// AggregateResult is the outcome of aggregating one field over one period.
// NoData means no numeric value existed in the window; Value then carries
// the configured no-data message and Date its "N/A" placeholder.
// Suppressed marks fields that are excluded from aggregation entirely.
type AggregateResult struct {
	Value      string
	Date       string
	NoData     bool
	Suppressed bool
}

// BestInPeriod aggregates one field over one rolling period that ends at,
// and excludes, the logical today.
func (e *Engine) BestInPeriod(ctx context.Context, field models.FieldSpec, period models.PeriodSpec) AggregateResult {
	return e.bestInPeriod(ctx, newContentCache(e.store, e.logger), field, period, e.now())
}

func (e *Engine) bestInPeriod(ctx context.Context, cache *contentCache, field models.FieldSpec, period models.PeriodSpec, now time.Time) AggregateResult {
	if !field.InAggregates() {
		return AggregateResult{Suppressed: true}
	}

	today := e.days.LogicalDate(now)
	window := journal.DaysBetween(period.Unit.Back(today, period.Magnitude), today)

	var (
		found    bool
		best     float64
		bestVal  string
		bestDate string
	)
	// Offset 1 is yesterday; today never participates. Scanning newest
	// first with a strictly-greater comparison keeps ties on the most
	// recent day.
	for off := 1; off <= window; off++ {
		day := e.days.DayAt(now, off)
		if day.Path == "" {
			continue
		}
		content, ok := cache.read(day.Path)
		if !ok {
			continue
		}
		val, err := e.ex.Extract(ctx, content, field, day.Path)
		if err != nil {
			e.logger.Warn("panel: aggregate extract failed",
				slog.String("field", field.DisplayName),
				slog.String("error", err.Error()))
			continue
		}
		if !val.Numeric {
			continue
		}
		if !found || val.Num > best {
			found = true
			best = val.Num
			bestVal = val.Display
			bestDate = day.Date.Format(dateLayout)
		}
	}

	if !found {
		return AggregateResult{Value: e.opts.NoDataMessage, Date: "N/A", NoData: true}
	}
	return AggregateResult{Value: bestVal, Date: bestDate}
}
