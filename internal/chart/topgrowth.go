package chart

import (
	"fmt"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rdtrends/rdtrends/internal/analysis"
	"github.com/rdtrends/rdtrends/internal/model"
)

// TopFile is the output name of the top sub-sector growth chart.
const TopFile = "line_plot_growth_top_subsectors.png"

const legendLabelLimit = 30

// TopSubSectors draws the ranked rows as styled lines, best first. An empty
// ranking yields empty axes.
func (r *Renderer) TopSubSectors(path string, ranked []model.Row) error {
	p, err := topPlot(ranked)
	if err != nil {
		return err
	}
	return r.savePlot(path, topSize, p)
}

func topPlot(ranked []model.Row) (*figure, error) {
	p := newPlot(fmt.Sprintf("R&D Expenditure Growth: Top %d Sub-sectors", len(ranked)), "Year", "R&D Expenditure (Rs Crore)")
	gridLines(p, true)
	nominalYears(p)
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Font.Size = vg.Points(9)

	for rank, row := range ranked {
		c := cycle(tab10, rank)
		line := draw.LineStyle{Color: c, Width: vg.Points(2.5), Dashes: cycle(dashes, rank)}
		label := analysis.Abbreviate(row.SubSector, legendLabelLimit)
		if err := addSeries(p, row.Values, label, line, circle(c, vg.Points(3))); err != nil {
			return nil, fmt.Errorf("top sub-sector chart: %w", err)
		}
	}
	return p, nil
}
