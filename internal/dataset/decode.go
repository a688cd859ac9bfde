package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/shopspring/decimal"

	"github.com/rdtrends/rdtrends/internal/model"
)

// ErrMissingColumn is returned when an expected header is absent.
var ErrMissingColumn = errors.New("missing column")

// naMarkers are the cell values treated as absent. gota rewrites its own NA
// markers to "NaN" on load; the rest cover files exported by other tools.
var naMarkers = map[string]bool{
	"":      true,
	"NaN":   true,
	"NA":    true,
	"N/A":   true,
	"<nil>": true,
}

// IsMissing reports whether a raw cell denotes an absent value.
func IsMissing(cell string) bool {
	return naMarkers[cell]
}

// RequiredColumns lists the headers the decoder needs, in table order.
func RequiredColumns() []string {
	return append([]string{model.ColSector, model.ColSubSector}, model.YearColumns()...)
}

// DecodeRows converts a string-typed DataFrame into typed rows.
func DecodeRows(df dataframe.DataFrame) ([]model.Row, error) {
	cols := make(map[string][]string, len(df.Names()))
	for _, name := range df.Names() {
		cols[name] = df.Col(name).Records()
	}
	for _, name := range RequiredColumns() {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
	}

	sectors := cols[model.ColSector]
	subSectors := cols[model.ColSubSector]

	rows := make([]model.Row, df.Nrow())
	for i := range rows {
		row := model.Row{
			Sector:    label(sectors[i]),
			SubSector: label(subSectors[i]),
		}
		for y := 0; y < model.NumYears; y++ {
			name := model.YearColumn(y)
			v, err := parseAmount(cols[name][i])
			if err != nil {
				// Header is row 1.
				return nil, fmt.Errorf("row %d: column %q: %w", i+2, name, err)
			}
			row.Values[y] = v
		}
		rows[i] = row
	}
	return rows, nil
}

func label(cell string) string {
	if IsMissing(cell) {
		return ""
	}
	return cell
}

func parseAmount(cell string) (decimal.NullDecimal, error) {
	if IsMissing(cell) {
		return decimal.NullDecimal{}, nil
	}
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parsing amount %q: %w", cell, err)
	}
	return model.Amount(d), nil
}
