package report

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/rdtrends/rdtrends/internal/analysis"
	"github.com/rdtrends/rdtrends/internal/model"
)

// Summary holds every aggregate derived from one table.
type Summary struct {
	Trend     []analysis.Series
	Averages  []analysis.SectorValue
	Undefined []string
	Top       []model.Row
	Totals    []analysis.SectorValue
	Shares    []decimal.Decimal
	Aggregate analysis.Aggregate
	Growth    []analysis.Growth
}

// Summarize derives all chart inputs from rows. sel picks the grand-total
// row and defaults to analysis.CombinedTotal when nil.
func Summarize(rows []model.Row, topN int, sel analysis.RowSelector) (*Summary, error) {
	if sel == nil {
		sel = analysis.CombinedTotal
	}
	individual := analysis.Individual(rows)

	s := &Summary{
		Trend: analysis.TrendSeries(rows),
		Top:   analysis.TopByFinalYear(individual, topN),
	}
	s.Averages, s.Undefined = analysis.SectorAverages(individual)
	s.Totals = analysis.SectorTotals(rows)
	s.Shares = analysis.Shares(s.Totals)
	s.Aggregate = analysis.AggregateSeries(rows, individual, sel)

	growth, err := analysis.GrowthRates(s.Aggregate.Values)
	if err != nil {
		return nil, fmt.Errorf("computing growth rates: %w", err)
	}
	s.Growth = growth
	return s, nil
}

// LogAttrs describes the summary for a log record.
func (s *Summary) LogAttrs() []any {
	return []any{
		slog.Int("trend_series", len(s.Trend)),
		slog.Int("sectors", len(s.Averages)),
		slog.Int("top_rows", len(s.Top)),
		slog.String("aggregate_source", string(s.Aggregate.Source)),
	}
}
