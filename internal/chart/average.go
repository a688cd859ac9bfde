package chart

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/rdtrends/rdtrends/internal/analysis"
)

// AverageFile is the output name of the sector average bar chart.
const AverageFile = "bar_plot_avg_expenditure.png"

const (
	sectorLabelLimit = 40
	headroom         = 1.15
)

// Averages draws one bar per sector average, annotated with its value.
func (r *Renderer) Averages(path string, avgs []analysis.SectorValue) error {
	p, err := averagePlot(avgs)
	if err != nil {
		return err
	}
	return r.savePlot(path, barSize, p)
}

func averagePlot(avgs []analysis.SectorValue) (*figure, error) {
	if len(avgs) == 0 {
		return nil, fmt.Errorf("average chart: %w", ErrNoData)
	}

	p := newPlot("Average R&D Expenditure by Sector (2005-06 to 2009-10)", "Sector", "Average R&D Expenditure (Rs Crore)")
	gridLines(p, false)

	names := make([]string, len(avgs))
	heights := make([]float64, len(avgs))
	tops := make(plotter.XYs, len(avgs))
	labels := make([]string, len(avgs))
	for i, a := range avgs {
		names[i] = analysis.SectorLabel(a.Sector, sectorLabelLimit)
		heights[i] = a.Value.InexactFloat64()
		tops[i] = plotter.XY{X: float64(i), Y: heights[i]}
		labels[i] = fmt.Sprintf("Rs %s Cr", analysis.Thousands(heights[i]))
	}

	width := barWidth(barSize.W, len(avgs))
	for i, h := range heights {
		bar, err := plotter.NewBarChart(plotter.Values{h}, width)
		if err != nil {
			return nil, fmt.Errorf("average chart: %w", err)
		}
		bar.XMin = float64(i)
		bar.Color = cycle(barColors, i)
		bar.LineStyle.Width = 0
		p.Add(bar)
	}

	if _, err := annotate(p, tops, labels, labelStyle(10, true), nil); err != nil {
		return nil, fmt.Errorf("average chart: %w", err)
	}

	nominal(p, names...)
	p.Y.Min = 0
	p.Y.Max = upperLimit(heights)
	return p, nil
}

// upperLimit leaves room above the tallest bar for its annotation.
func upperLimit(heights []float64) float64 {
	top := floats.Max(heights) * headroom
	if top <= 0 {
		return 1
	}
	return top
}

// barWidth sizes bars to about 60% of a slot across a figure of width w.
func barWidth(w vg.Length, n int) vg.Length {
	slot := w * 0.7 / vg.Length(n)
	return slot * 0.6
}
