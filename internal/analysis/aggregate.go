package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rdtrends/rdtrends/internal/model"
)

var (
	// ErrZeroBase is returned when a growth rate would divide by a zero prior value.
	ErrZeroBase = errors.New("zero prior-year value")
	// ErrMissingValue is returned when a growth rate needs an absent value.
	ErrMissingValue = errors.New("missing value")
)

var hundred = decimal.NewFromInt(100)

// Series is a labelled run of yearly values.
type Series struct {
	Label  string
	Values model.Values
}

// SectorValue pairs a sector label with an aggregate.
type SectorValue struct {
	Sector string
	Value  decimal.Decimal
}

// TrendSeries returns one series per "Total R&D Expenditure" row, labelled by sector.
func TrendSeries(rows []model.Row) []Series {
	totals := TotalRows(rows)
	out := make([]Series, 0, len(totals))
	for _, r := range totals {
		out = append(out, Series{Label: r.Sector, Values: r.Values})
	}
	return out
}

// groupBySector buckets rows by sector label in first-seen order, dropping
// rows without a sector and any sector for which skip returns true.
func groupBySector(rows []model.Row, skip func(string) bool) (order []string, groups map[string][]model.Row) {
	groups = make(map[string][]model.Row)
	for _, r := range rows {
		if !r.HasSector() || (skip != nil && skip(r.Sector)) {
			continue
		}
		if _, seen := groups[r.Sector]; !seen {
			order = append(order, r.Sector)
		}
		groups[r.Sector] = append(groups[r.Sector], r)
	}
	return order, groups
}

// SectorAverages computes the two-stage mean per sector: each row's present
// values are averaged, then the row means are averaged. Sectors with no
// present value at all are returned in undefined instead.
func SectorAverages(rows []model.Row) (avgs []SectorValue, undefined []string) {
	order, groups := groupBySector(rows, func(s string) bool { return s == sectorPlaceholder })
	for _, sector := range order {
		var means []decimal.Decimal
		for _, r := range groups[sector] {
			if m, ok := r.Values.Mean(); ok {
				means = append(means, m)
			}
		}
		if len(means) == 0 {
			undefined = append(undefined, sector)
			continue
		}
		avg := decimal.Sum(means[0], means[1:]...).Div(decimal.NewFromInt(int64(len(means))))
		avgs = append(avgs, SectorValue{Sector: sector, Value: avg})
	}
	return avgs, undefined
}

// SectorTotals sums every yearly value of every "Total R&D Expenditure" row
// per sector. Absent values count as zero.
func SectorTotals(rows []model.Row) []SectorValue {
	order, groups := groupBySector(TotalRows(rows), nil)
	out := make([]SectorValue, 0, len(order))
	for _, sector := range order {
		total := decimal.Zero
		for _, r := range groups[sector] {
			total = total.Add(r.Values.Sum())
		}
		out = append(out, SectorValue{Sector: sector, Value: total})
	}
	return out
}

// Shares converts totals to percentages of their sum. A zero sum yields zero shares.
func Shares(totals []SectorValue) []decimal.Decimal {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t.Value)
	}
	out := make([]decimal.Decimal, len(totals))
	if sum.IsZero() {
		return out
	}
	for i, t := range totals {
		out[i] = t.Value.Div(sum).Mul(hundred)
	}
	return out
}

// TopByFinalYear returns up to n rows with the largest 2009-10 value,
// descending. Ties keep table order. Rows without a 2009-10 value are not ranked.
func TopByFinalYear(rows []model.Row, n int) []model.Row {
	ranked := make([]model.Row, 0, len(rows))
	for _, r := range rows {
		if r.Values[model.FinalYear].Valid {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Values[model.FinalYear].Decimal.GreaterThan(ranked[j].Values[model.FinalYear].Decimal)
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Source tells where an aggregate series came from.
type Source string

const (
	SourceCombinedRow   Source = "combined-total row"
	SourceIndividualSum Source = "sum of individual rows"
)

// Aggregate is the overall yearly series used for growth analysis.
type Aggregate struct {
	Values model.Values
	Source Source
	Label  string
}

// AggregateSeries takes the first row of all matching sel. When none matches
// it sums each year over the individual rows, skipping absent values.
func AggregateSeries(all, individual []model.Row, sel RowSelector) Aggregate {
	for _, r := range all {
		if sel(r) {
			return Aggregate{Values: r.Values, Source: SourceCombinedRow, Label: r.SubSector}
		}
	}

	var sums model.Values
	for y := range sums {
		total := decimal.Zero
		for _, r := range individual {
			if r.Values[y].Valid {
				total = total.Add(r.Values[y].Decimal)
			}
		}
		sums[y] = model.Amount(total)
	}
	return Aggregate{Values: sums, Source: SourceIndividualSum}
}

// Growth is the year-over-year change between two consecutive fiscal years.
type Growth struct {
	From string
	To   string
	Rate decimal.Decimal // percent
}

// Period renders the span as "2005-06-07".
func (g Growth) Period() string {
	return g.From + "-" + g.To[len(g.To)-2:]
}

// GrowthRates computes (v[i]-v[i-1]) / v[i-1] * 100 for each consecutive pair.
// A zero or absent prior value is an error; the rate is not guessed.
func GrowthRates(values model.Values) ([]Growth, error) {
	out := make([]Growth, 0, model.NumYears-1)
	for i := 1; i < model.NumYears; i++ {
		prev, cur := values[i-1], values[i]
		if !prev.Valid || !cur.Valid {
			return nil, fmt.Errorf("growth %s to %s: %w", model.Years[i-1], model.Years[i], ErrMissingValue)
		}
		if prev.Decimal.IsZero() {
			return nil, fmt.Errorf("growth %s to %s: %w", model.Years[i-1], model.Years[i], ErrZeroBase)
		}
		rate := cur.Decimal.Sub(prev.Decimal).Div(prev.Decimal).Mul(hundred)
		out = append(out, Growth{From: model.Years[i-1], To: model.Years[i], Rate: rate})
	}
	return out, nil
}
