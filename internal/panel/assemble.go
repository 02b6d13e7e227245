package panel

import (
	"context"
	"time"

	"github.com/starford/dagaz/internal/journal"
	"github.com/starford/dagaz/internal/models"
)

// dateLayout is the compact date used for column headers and best-value
// attribution.
const dateLayout = "Jan 2"

func (e *Engine) assemble(ctx context.Context, cache *contentCache, now time.Time) ([]Column, error) {
	var cols []Column

	// Day columns, most recent first. Days without a journal file are
	// omitted entirely rather than rendered empty.
	labeledOnce := false
	for off := 0; off < e.opts.DaysToShow; off++ {
		day := e.days.DayAt(now, off)
		if day.Path == "" {
			continue
		}
		content, ok := cache.read(day.Path)
		if !ok {
			continue
		}
		showLabels := !labeledOnce || e.opts.ShowFieldNames
		col, err := e.dayColumn(ctx, content, day, off, showLabels)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		labeledOnce = true
	}

	for _, p := range e.opts.Periods {
		col, err := e.periodColumn(ctx, cache, p, now)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (e *Engine) dayColumn(ctx context.Context, content string, day journal.ResolvedDay, offset int, showLabels bool) (Column, error) {
	col := Column{Header: dayHeader(offset, day.Date)}
	for _, f := range e.opts.Fields {
		if f.Kind == models.KindLineBreak {
			col.Rows = append(col.Rows, Row{Spacer: true})
			continue
		}
		val, err := e.ex.Extract(ctx, content, f, day.Path)
		if err != nil {
			return Column{}, err
		}
		display := val.Display
		if val.NoData {
			display = e.opts.NoDataMessage
		}
		row := Row{Value: display}
		if showLabels {
			row.Label = f.DisplayName
		}
		col.Rows = append(col.Rows, row)
	}
	return col, nil
}

func (e *Engine) periodColumn(ctx context.Context, cache *contentCache, period models.PeriodSpec, now time.Time) (Column, error) {
	col := Column{Header: period.Label}
	for _, f := range e.opts.Fields {
		if f.Kind == models.KindLineBreak {
			col.Rows = append(col.Rows, Row{Spacer: true})
			continue
		}
		if !f.InAggregates() {
			continue
		}
		if f.CustomOverride != "" {
			col.Rows = append(col.Rows, Row{Label: f.DisplayName, Value: f.CustomOverride})
			continue
		}
		res := e.bestInPeriod(ctx, cache, f, period, now)
		if res.NoData {
			// Nothing to show; dropping the row keeps columns compact.
			continue
		}
		row := Row{Label: f.DisplayName, Value: res.Value}
		if period.ShowDate {
			row.DateText = res.Date
		}
		col.Rows = append(col.Rows, row)
	}
	return col, nil
}

func dayHeader(offset int, date time.Time) string {
	switch offset {
	case 0:
		return "Today"
	case 1:
		return "Yest"
	default:
		return date.Format(dateLayout)
	}
}
