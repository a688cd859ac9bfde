package analysis

import (
	"regexp"
	"strings"

	"github.com/rdtrends/rdtrends/internal/model"
)

// aggregateMarkers flag sub-sector labels that roll up other rows.
var aggregateMarkers = []string{"Total", "GDP", "Ratio"}

// totalMarker identifies one "Total R&D Expenditure" row per main sector.
const totalMarker = "Total R&D Expenditure"

// sectorPlaceholder is the literal sector label of the summary block.
const sectorPlaceholder = "Total "

// combinedTotalPattern matches the grand-total row across sectors A to D.
var combinedTotalPattern = regexp.MustCompile(`R&D Expenditure.*A\+B\+C\+D`)

// RowSelector picks rows out of a table.
type RowSelector func(model.Row) bool

// SubSectorContains selects rows whose sub-sector label contains substr.
// Rows without a label never match.
func SubSectorContains(substr string) RowSelector {
	return func(r model.Row) bool {
		return r.HasSubSector() && strings.Contains(r.SubSector, substr)
	}
}

// SubSectorMatches selects rows whose sub-sector label matches re.
func SubSectorMatches(re *regexp.Regexp) RowSelector {
	return func(r model.Row) bool {
		return r.HasSubSector() && re.MatchString(r.SubSector)
	}
}

// CombinedTotal is the default selector for the grand-total row.
var CombinedTotal = SubSectorMatches(combinedTotalPattern)

// IsAggregateLabel reports whether a sub-sector label names a rollup row.
func IsAggregateLabel(label string) bool {
	for _, m := range aggregateMarkers {
		if strings.Contains(label, m) {
			return true
		}
	}
	return false
}

// Select returns the rows matching sel, in table order.
func Select(rows []model.Row, sel RowSelector) []model.Row {
	var out []model.Row
	for _, r := range rows {
		if sel(r) {
			out = append(out, r)
		}
	}
	return out
}

// Individual returns the rows describing a single sub-sector: labelled rows
// whose label carries none of the aggregate markers.
func Individual(rows []model.Row) []model.Row {
	return Select(rows, func(r model.Row) bool {
		return r.HasSubSector() && !IsAggregateLabel(r.SubSector)
	})
}

// TotalRows returns the per-sector "Total R&D Expenditure" rows.
func TotalRows(rows []model.Row) []model.Row {
	return Select(rows, SubSectorContains(totalMarker))
}
