package model

import (
	"github.com/shopspring/decimal"
)

// NumYears is the number of fiscal years carried by every row.
const NumYears = 5

// FinalYear is the index of the last fiscal year (2009-10).
const FinalYear = NumYears - 1

// Years lists the fiscal years in column order.
var Years = [NumYears]string{"2005-06", "2006-07", "2007-08", "2008-09", "2009-10"}

// Column names of the source table.
const (
	ColSector    = "Sectors"
	ColSubSector = "Sub Sectors and Economic Activity"
	yearPrefix   = "Research & Development Expenditure in "
)

// YearColumn returns the header of the expenditure column for year index i.
func YearColumn(i int) string {
	return yearPrefix + Years[i]
}

// YearColumns returns all five expenditure column headers in order.
func YearColumns() []string {
	cols := make([]string, NumYears)
	for i := range cols {
		cols[i] = YearColumn(i)
	}
	return cols
}

// Values holds one amount per fiscal year (Rs Crore). Invalid entries are absent.
type Values [NumYears]decimal.NullDecimal

// Row is one record of the expenditure table.
type Row struct {
	Sector    string // "" = absent
	SubSector string // "" = absent
	Values    Values
}

// HasSector reports whether the sector label is present.
func (r Row) HasSector() bool { return r.Sector != "" }

// HasSubSector reports whether the sub-sector label is present.
func (r Row) HasSubSector() bool { return r.SubSector != "" }

// Present returns the values that are not absent, in year order.
func (v Values) Present() []decimal.Decimal {
	out := make([]decimal.Decimal, 0, NumYears)
	for _, nd := range v {
		if nd.Valid {
			out = append(out, nd.Decimal)
		}
	}
	return out
}

// Sum adds the present values; absent values count as zero.
func (v Values) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, nd := range v {
		if nd.Valid {
			total = total.Add(nd.Decimal)
		}
	}
	return total
}

// Mean averages the present values. ok is false when every value is absent.
func (v Values) Mean() (mean decimal.Decimal, ok bool) {
	present := v.Present()
	if len(present) == 0 {
		return decimal.Zero, false
	}
	return decimal.Sum(present[0], present[1:]...).Div(decimal.NewFromInt(int64(len(present)))), true
}

// Floats converts the values for plotting. Absent values are reported in ok.
func (v Values) Floats() (vals [NumYears]float64, ok [NumYears]bool) {
	for i, nd := range v {
		if nd.Valid {
			vals[i] = nd.Decimal.InexactFloat64()
			ok[i] = true
		}
	}
	return vals, ok
}

// Amount is a shorthand for a present value.
func Amount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ValuesOf builds Values from plain numbers; handy for fixtures.
func ValuesOf(nums ...float64) Values {
	var v Values
	for i := 0; i < len(nums) && i < NumYears; i++ {
		v[i] = Amount(decimal.NewFromFloat(nums[i]))
	}
	return v
}
