package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/rdtrends/rdtrends/internal/analysis"
)

// PieFile is the output name of the sector distribution chart.
const PieFile = "pie_chart_sector_distribution.png"

const pieLabelLimit = 15

// Slice geometry, in fractions of the radius.
const (
	pieExplode  = 0.05
	pctDistance = 0.6
	lblDistance = 1.1
	pieExtent   = 1.45
)

// Distribution draws each sector's share of the grand total as an exploded pie.
func (r *Renderer) Distribution(path string, totals []analysis.SectorValue) error {
	p, err := piePlot(totals)
	if err != nil {
		return err
	}
	return r.savePlot(path, pieSize, p)
}

func piePlot(totals []analysis.SectorValue) (*figure, error) {
	if len(totals) == 0 {
		return nil, fmt.Errorf("distribution chart: %w", ErrNoData)
	}
	shares := analysis.Shares(totals)

	pie := &pieChart{StartAngle: math.Pi / 2, Explode: pieExplode}
	var sum float64
	for i, t := range totals {
		v := t.Value.InexactFloat64()
		sum += v
		pie.Values = append(pie.Values, v)
		pie.Labels = append(pie.Labels, analysis.SectorLabel(t.Sector, pieLabelLimit))
		pie.Percents = append(pie.Percents, fmt.Sprintf("%.1f%%", shares[i].InexactFloat64()))
		pie.Colors = append(pie.Colors, cycle(pieColors, i))
	}
	if sum <= 0 {
		return nil, fmt.Errorf("distribution chart: %w", ErrNoData)
	}

	p := newPlot("Sector-wise Distribution of Total R&D Expenditure", "", "")
	p.HideAxes()
	p.Add(pie)
	return p, nil
}

// pieChart is a plot.Plotter drawing wedges around the data origin with a unit radius.
type pieChart struct {
	Values   []float64
	Labels   []string
	Percents []string
	Colors   []color.Color

	// StartAngle is where the first wedge begins, in radians counter-clockwise from 3 o'clock.
	StartAngle float64
	// Explode pushes every wedge out along its bisector by this fraction of the radius.
	Explode float64
}

// Plot implements plot.Plotter.
func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	origin := vg.Point{X: trX(0), Y: trY(0)}
	radius := min(trX(1)-origin.X, trY(1)-origin.Y)

	var total float64
	for _, v := range pc.Values {
		total += v
	}

	inner := labelStyle(10, false)
	inner.YAlign = draw.YCenter
	outer := inner

	angle := pc.StartAngle
	for i, v := range pc.Values {
		sweep := 2 * math.Pi * v / total
		mid := angle + sweep/2
		center := polar(origin, radius*vg.Length(pc.Explode), mid)

		var wedge vg.Path
		wedge.Move(center)
		wedge.Line(polar(center, radius, angle))
		wedge.Arc(center, radius, angle, sweep)
		wedge.Close()
		c.SetColor(pc.Colors[i])
		c.Fill(wedge)

		c.FillText(inner, polar(center, radius*pctDistance, mid), pc.Percents[i])

		if math.Cos(mid) >= 0 {
			outer.XAlign = draw.XLeft
		} else {
			outer.XAlign = draw.XRight
		}
		c.FillText(outer, polar(center, radius*lblDistance, mid), pc.Labels[i])

		angle += sweep
	}
}

// DataRange implements plot.DataRanger with room for the outer labels.
func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -pieExtent, pieExtent, -pieExtent, pieExtent
}

func polar(from vg.Point, r vg.Length, theta float64) vg.Point {
	return vg.Point{
		X: from.X + r*vg.Length(math.Cos(theta)),
		Y: from.Y + r*vg.Length(math.Sin(theta)),
	}
}

var _ plot.Plotter = (*pieChart)(nil)
