package analysis

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdtrends/rdtrends/internal/model"
)

func row(sector, sub string, nums ...float64) model.Row {
	return model.Row{Sector: sector, SubSector: sub, Values: model.ValuesOf(nums...)}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// threeRows is the X / Y / ratio fixture.
func threeRows() []model.Row {
	return []model.Row{
		row("Sector X", "Total R&D Expenditure - Sector X", 10, 20, 30, 40, 50),
		row("Sector Y", "Total R&D Expenditure - Sector Y", 5, 5, 5, 5, 5),
		row("Total ", "Total Ratio", 1, 1, 1, 1, 1),
	}
}

func TestIsAggregateLabel(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"Total R&D Expenditure (A)", true},
		{"GDP at Current Prices", true},
		{"R&D Expenditure as Ratio of GDP (%)", true},
		{"Major Scientific Agencies", false},
		{"total in lower case", false},
		{"R&D Expenditure (A+B+C+D)", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAggregateLabel(tt.label), "IsAggregateLabel(%q)", tt.label)
	}
}

func TestIndividual_ExcludesAggregatesAndMissingLabels(t *testing.T) {
	rows := []model.Row{
		row("A", "Labs", 1),
		row("A", "Total R&D Expenditure (A)", 1),
		row("A", "", 1),
		row("Total ", "GDP", 1),
		row("Total ", "R&D Expenditure (A+B+C+D)", 1),
	}
	got := Individual(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "Labs", got[0].SubSector)
	assert.Equal(t, "R&D Expenditure (A+B+C+D)", got[1].SubSector)
}

func TestTrendSeries_ThreeRowFixture(t *testing.T) {
	series := TrendSeries(threeRows())
	require.Len(t, series, 2)
	assert.Equal(t, "Sector X", series[0].Label)
	assert.Equal(t, "Sector Y", series[1].Label)
}

func TestTotalRows_SkipsMissingLabel(t *testing.T) {
	rows := []model.Row{{Sector: "A"}, row("A", "Total R&D Expenditure (A)", 1)}
	assert.Len(t, TotalRows(rows), 1)
}

func TestSectorAverages_TwoStage(t *testing.T) {
	rows := []model.Row{
		row("A", "one", 10, 10, 10, 10, 10),
		// Only two present values: row mean 30, not diluted by absent years.
		{Sector: "A", SubSector: "two", Values: model.Values{
			model.Amount(dec("20")), {}, {}, {}, model.Amount(dec("40")),
		}},
		row("B", "solo", 1, 2, 3, 4, 5),
		row("Total ", "R&D Expenditure (A+B+C+D)", 100, 100, 100, 100, 100),
		{Sector: "C", SubSector: "empty"},
		{SubSector: "no sector", Values: model.ValuesOf(9, 9, 9, 9, 9)},
	}

	avgs, undefined := SectorAverages(rows)
	require.Len(t, avgs, 2)
	assert.Equal(t, "A", avgs[0].Sector)
	assert.True(t, avgs[0].Value.Equal(dec("20")), "A: got %s", avgs[0].Value)
	assert.Equal(t, "B", avgs[1].Sector)
	assert.True(t, avgs[1].Value.Equal(dec("3")), "B: got %s", avgs[1].Value)
	assert.Equal(t, []string{"C"}, undefined)
}

func TestSectorAverages_SingleRowEqualsRowMean(t *testing.T) {
	r := row("Solo", "only", 3, 6, 9, 12, 15)
	avgs, _ := SectorAverages([]model.Row{r})
	require.Len(t, avgs, 1)

	mean, ok := r.Values.Mean()
	require.True(t, ok)
	assert.True(t, avgs[0].Value.Equal(mean))
	assert.False(t, avgs[0].Value.IsNegative())
}

func TestSectorTotals_ThreeRowFixture(t *testing.T) {
	totals := SectorTotals(threeRows())
	require.Len(t, totals, 2)
	assert.True(t, totals[0].Value.Equal(dec("150")))
	assert.True(t, totals[1].Value.Equal(dec("25")))

	shares := Shares(totals)
	assert.Equal(t, "85.7", shares[0].StringFixed(1))
	assert.Equal(t, "14.3", shares[1].StringFixed(1))
}

func TestSectorTotals_EqualsGrandTotal(t *testing.T) {
	rows := []model.Row{
		row("A", "Total R&D Expenditure (A)", 1, 2, 3, 4, 5),
		row("A", "Total R&D Expenditure (A) revised", 1, 1, 1, 1, 1),
		{Sector: "B", SubSector: "Total R&D Expenditure (B)", Values: model.Values{model.Amount(dec("7.5")), {}, {}, {}, model.Amount(dec("2.5"))}},
		row("C", "Labs", 100, 100, 100, 100, 100),
	}

	grand := decimal.Zero
	for _, r := range TotalRows(rows) {
		grand = grand.Add(r.Values.Sum())
	}

	sum := decimal.Zero
	for _, st := range SectorTotals(rows) {
		sum = sum.Add(st.Value)
	}
	assert.True(t, sum.Equal(grand), "sum %s != grand %s", sum, grand)
	assert.True(t, sum.Equal(dec("30")))
}

func TestShares_ZeroTotal(t *testing.T) {
	shares := Shares([]SectorValue{{Sector: "A"}, {Sector: "B"}})
	for _, s := range shares {
		assert.True(t, s.IsZero())
	}
}

func TestTopByFinalYear(t *testing.T) {
	var rows []model.Row
	for i := 0; i < 12; i++ {
		rows = append(rows, row("S", string(rune('a'+i)), 0, 0, 0, 0, float64(i%4)))
	}
	rows = append(rows, model.Row{Sector: "S", SubSector: "unranked"})

	top := TopByFinalYear(rows, 10)
	require.Len(t, top, 10)

	for i := 1; i < len(top); i++ {
		prev := top[i-1].Values[model.FinalYear].Decimal
		cur := top[i].Values[model.FinalYear].Decimal
		assert.True(t, prev.GreaterThanOrEqual(cur), "not descending at %d", i)
	}
	// Value 3 appears at d, h, l; ties keep table order.
	assert.Equal(t, []string{"d", "h", "l"}, []string{top[0].SubSector, top[1].SubSector, top[2].SubSector})
}

func TestTopByFinalYear_FewerRows(t *testing.T) {
	rows := []model.Row{row("S", "a", 1, 1, 1, 1, 1), row("S", "b", 1, 1, 1, 1, 2)}
	top := TopByFinalYear(rows, 10)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].SubSector)
}

func TestAggregateSeries_CombinedRow(t *testing.T) {
	rows := []model.Row{
		row("A", "Labs", 1, 1, 1, 1, 1),
		row("Total ", "R&D Expenditure (A+B+C+D)", 100, 110, 121, 133.1, 146.41),
		row("Total ", "R&D Expenditure (A+B+C+D) again", 1, 1, 1, 1, 1),
	}
	agg := AggregateSeries(rows, Individual(rows), CombinedTotal)
	assert.Equal(t, SourceCombinedRow, agg.Source)
	assert.True(t, agg.Values[0].Decimal.Equal(dec("100")))
	assert.Equal(t, "R&D Expenditure (A+B+C+D)", agg.Label)
}

func TestAggregateSeries_Fallback(t *testing.T) {
	rows := []model.Row{
		row("A", "Labs", 1, 2, 3, 4, 5),
		{Sector: "B", SubSector: "Units", Values: model.Values{model.Amount(dec("10")), {}, model.Amount(dec("10")), model.Amount(dec("10")), model.Amount(dec("10"))}},
		row("Total ", "Total R&D Expenditure", 1000, 1000, 1000, 1000, 1000),
	}
	agg := AggregateSeries(rows, Individual(rows), CombinedTotal)
	assert.Equal(t, SourceIndividualSum, agg.Source)

	want := []string{"11", "2", "13", "14", "15"}
	for i, w := range want {
		assert.True(t, agg.Values[i].Valid)
		assert.True(t, agg.Values[i].Decimal.Equal(dec(w)), "year %d: got %s", i, agg.Values[i].Decimal)
	}
}

func TestAggregateSeries_CustomSelector(t *testing.T) {
	rows := []model.Row{
		row("All", "Grand total of everything", 1, 2, 3, 4, 5),
	}
	sel := SubSectorMatches(regexp.MustCompile(`^Grand total`))
	agg := AggregateSeries(rows, nil, sel)
	assert.Equal(t, SourceCombinedRow, agg.Source)
}

func TestAggregateSeries_ThreeRowFixtureUsesFallback(t *testing.T) {
	rows := threeRows()
	agg := AggregateSeries(rows, Individual(rows), CombinedTotal)
	assert.Equal(t, SourceIndividualSum, agg.Source)

	_, err := GrowthRates(agg.Values)
	assert.ErrorIs(t, err, ErrZeroBase)
}

func TestGrowthRates(t *testing.T) {
	growth, err := GrowthRates(model.ValuesOf(100, 110, 99, 99, 198))
	require.NoError(t, err)
	require.Len(t, growth, 4)

	assert.Equal(t, "2005-06-07", growth[0].Period())
	assert.Equal(t, "2008-09-10", growth[3].Period())
	assert.True(t, growth[0].Rate.Equal(dec("10")))
	assert.True(t, growth[1].Rate.Equal(dec("-10")))
	assert.True(t, growth[2].Rate.IsZero())
	assert.True(t, growth[3].Rate.Equal(dec("100")))
}

func TestGrowthRates_ReversedDirection(t *testing.T) {
	v0, v1 := dec("80"), dec("120")

	fwd, err := GrowthRates(model.Values{model.Amount(v0), model.Amount(v1), model.Amount(v1), model.Amount(v1), model.Amount(v1)})
	require.NoError(t, err)
	rev, err := GrowthRates(model.Values{model.Amount(v1), model.Amount(v0), model.Amount(v0), model.Amount(v0), model.Amount(v0)})
	require.NoError(t, err)

	assert.True(t, fwd[0].Rate.Equal(v1.Sub(v0).Div(v0).Mul(hundred)))
	assert.True(t, rev[0].Rate.Equal(v0.Sub(v1).Div(v1).Mul(hundred)))
	assert.Equal(t, "50", fwd[0].Rate.String())
	assert.Equal(t, "-33.33", rev[0].Rate.StringFixed(2))
}

func TestGrowthRates_Errors(t *testing.T) {
	_, err := GrowthRates(model.ValuesOf(0, 1, 2, 3, 4))
	assert.ErrorIs(t, err, ErrZeroBase)
	assert.Contains(t, err.Error(), "2005-06")

	missing := model.ValuesOf(1, 2, 3, 4, 5)
	missing[2] = decimal.NullDecimal{}
	_, err = GrowthRates(missing)
	assert.ErrorIs(t, err, ErrMissingValue)
}
