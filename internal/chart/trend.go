package chart

import (
	"fmt"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rdtrends/rdtrends/internal/analysis"
)

// TrendFile is the output name of the per-sector trend chart.
const TrendFile = "line_plot_rd_trend.png"

// Trend draws one line per sector total across the fiscal years. With no
// series it still writes the titled, empty axes.
func (r *Renderer) Trend(path string, series []analysis.Series) error {
	p, err := trendPlot(series)
	if err != nil {
		return err
	}
	return r.savePlot(path, trendSize, p)
}

func trendPlot(series []analysis.Series) (*figure, error) {
	p := newPlot("Total R&D Expenditure Trend by Sector", "Year", "R&D Expenditure (Rs Crore)")
	gridLines(p, true)
	nominalYears(p)
	p.Legend.Top = true

	for i, s := range series {
		c := cycle(tab10, i)
		line := draw.LineStyle{Color: c, Width: vg.Points(2)}
		if err := addSeries(p, s.Values, s.Label, line, circle(c, vg.Points(3))); err != nil {
			return nil, fmt.Errorf("trend chart: %w", err)
		}
	}
	return p, nil
}
