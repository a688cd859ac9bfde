package chart

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rdtrends/rdtrends/internal/analysis"
)

// GrowthFile is the output name of the overall trend and growth-rate chart.
const GrowthFile = "growth_trends.png"

// GrowthTrends draws the aggregate series and its year-over-year growth side by side.
func (r *Renderer) GrowthTrends(path string, agg analysis.Aggregate, growth []analysis.Growth) error {
	left, err := aggregatePlot(agg)
	if err != nil {
		return err
	}
	right, err := growthPlot(growth)
	if err != nil {
		return err
	}

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      2,
		PadX:      vg.Points(24),
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(6),
	}
	return r.save(path, growthSize, func(dc draw.Canvas) {
		plots := [][]*plot.Plot{{left.Plot, right.Plot}}
		canvases := plot.Align(plots, tiles, dc)
		left.Draw(canvases[0][0])
		right.Draw(canvases[0][1])
	})
}

func aggregatePlot(agg analysis.Aggregate) (*figure, error) {
	p := newPlot("Overall R&D Expenditure Trend", "Year", "R&D Expenditure (Rs Crore)")
	gridLines(p, true)
	nominalYears(p)

	line := draw.LineStyle{Color: blue, Width: vg.Points(3)}
	if err := addSeries(p, agg.Values, "", line, circle(red, vg.Points(4))); err != nil {
		return nil, fmt.Errorf("aggregate chart: %w", err)
	}

	_, points := segments(agg.Values)
	if len(points) == 0 {
		return nil, fmt.Errorf("aggregate chart: %w", ErrNoData)
	}
	labels := make([]string, len(points))
	for i, pt := range points {
		labels[i] = analysis.Thousands(pt.Y)
	}
	l, err := annotate(p, points, labels, labelStyle(10, true), nil)
	if err != nil {
		return nil, fmt.Errorf("aggregate chart: %w", err)
	}
	l.Offset = vg.Point{Y: vg.Points(10)}
	return p, nil
}

func growthPlot(growth []analysis.Growth) (*figure, error) {
	if len(growth) == 0 {
		return nil, fmt.Errorf("growth chart: %w", ErrNoData)
	}

	p := newPlot("Year-over-Year Growth Rates", "Period", "Growth Rate (%)")
	gridLines(p, true)

	periods := make([]string, len(growth))
	tops := make(plotter.XYs, len(growth))
	labels := make([]string, len(growth))
	width := barWidth(growthSize.W/2, len(growth))
	for i, g := range growth {
		rate := g.Rate.InexactFloat64()
		periods[i] = g.Period()
		tops[i] = plotter.XY{X: float64(i), Y: rate}
		labels[i] = fmt.Sprintf("%.1f%%", rate)

		bar, err := plotter.NewBarChart(plotter.Values{rate}, width)
		if err != nil {
			return nil, fmt.Errorf("growth chart: %w", err)
		}
		bar.XMin = float64(i)
		bar.Color = green
		if g.Rate.IsNegative() {
			bar.Color = red
		}
		bar.LineStyle.Width = 0
		p.Add(bar)
	}

	negative := func(i int) bool { return growth[i].Rate.IsNegative() }
	if _, err := annotate(p, tops, labels, labelStyle(10, false), negative); err != nil {
		return nil, fmt.Errorf("growth chart: %w", err)
	}

	nominal(p, periods...)
	return p, nil
}
