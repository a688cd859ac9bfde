// Package chart renders the expenditure charts as PNG images with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/rdtrends/rdtrends/internal/model"
)

// DefaultDPI is the output resolution when none is configured.
const DefaultDPI = 300

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Figure sizes.
var (
	trendSize  = size{12 * vg.Inch, 8 * vg.Inch}
	barSize    = size{10 * vg.Inch, 6 * vg.Inch}
	topSize    = size{14 * vg.Inch, 8 * vg.Inch}
	pieSize    = size{10 * vg.Inch, 8 * vg.Inch}
	growthSize = size{15 * vg.Inch, 6 * vg.Inch}
)

type size struct{ W, H vg.Length }

// Renderer draws charts to PNG files at a fixed resolution.
type Renderer struct {
	DPI int
}

// NewRenderer returns a Renderer at dpi, or DefaultDPI when dpi is not positive.
func NewRenderer(dpi int) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{DPI: dpi}
}

// save draws onto a fresh canvas of sz and writes it to path as PNG.
func (r *Renderer) save(path string, sz size, drawFn func(draw.Canvas)) (err error) {
	c := vgimg.NewWith(vgimg.UseWH(sz.W, sz.H), vgimg.UseDPI(r.DPI))
	drawFn(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// savePlot writes a single plot filling the whole figure.
func (r *Renderer) savePlot(path string, sz size, f *figure) error {
	return r.save(path, sz, f.Draw)
}

// figure is a plot that keeps its layers and legend labels in insertion order.
type figure struct {
	*plot.Plot
	layers []plot.Plotter
	legend []string
}

// Add adds plotters to the plot and records them as layers.
func (f *figure) Add(ps ...plot.Plotter) {
	f.Plot.Add(ps...)
	f.layers = append(f.layers, ps...)
}

func (f *figure) addLegend(label string, thumbs ...plot.Thumbnailer) {
	f.Legend.Add(label, thumbs...)
	f.legend = append(f.legend, label)
}

// newPlot returns a plot with a bold title and labelled axes.
func newPlot(title, xLabel, yLabel string) *figure {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.Title.Padding = vg.Points(8)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return &figure{Plot: p}
}

// gridLines adds faint grid lines; vertical ones only when withX is set.
func gridLines(p *figure, withX bool) {
	g := plotter.NewGrid()
	faint := color.Gray{Y: 200}
	g.Horizontal.Color = faint
	if withX {
		g.Vertical.Color = faint
	} else {
		g.Vertical.Width = 0
	}
	p.Add(g)
}

// nominalYears labels the X axis with the fiscal years, rotated 45 degrees.
func nominalYears(p *figure) {
	nominal(p, model.Years[:]...)
}

// nominal places names at x = 0..n-1 and pads the axis by half a slot.
func nominal(p *figure, names ...string) {
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Min = -0.5
	p.X.Max = float64(len(names)) - 0.5
}

// labelStyle is the annotation text style at the given point size.
func labelStyle(points float64, bold bool) text.Style {
	f := font.From(plot.DefaultFont, vg.Points(points))
	if bold {
		f.Weight = xfont.WeightBold
	}
	return text.Style{
		Color:   color.Black,
		Font:    f,
		XAlign:  draw.XCenter,
		YAlign:  draw.YBottom,
		Handler: plot.DefaultTextHandler,
	}
}

// annotate adds one text label per point, drawn above it unless below is set for that index.
func annotate(p *figure, xys plotter.XYs, labels []string, sty text.Style, below func(int) bool) (*plotter.Labels, error) {
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("building labels: %w", err)
	}
	for i := range l.TextStyle {
		s := sty
		if below != nil && below(i) {
			s.YAlign = draw.YTop
		}
		l.TextStyle[i] = s
	}
	p.Add(l)
	return l, nil
}

// segments splits a yearly series into runs of present values so gaps stay open.
func segments(values model.Values) (runs []plotter.XYs, points plotter.XYs) {
	vals, ok := values.Floats()
	var run plotter.XYs
	for i := range vals {
		if !ok[i] {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		pt := plotter.XY{X: float64(i), Y: vals[i]}
		run = append(run, pt)
		points = append(points, pt)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs, points
}

// addSeries draws one yearly series as line segments with circle markers and
// registers it in the legend when label is not empty.
func addSeries(p *figure, values model.Values, label string, line draw.LineStyle, marker draw.GlyphStyle) error {
	runs, points := segments(values)
	if len(points) == 0 {
		return nil
	}

	var thumbs []plot.Thumbnailer
	for _, run := range runs {
		l, err := plotter.NewLine(run)
		if err != nil {
			return fmt.Errorf("building line %q: %w", label, err)
		}
		l.LineStyle = line
		p.Add(l)
		if len(thumbs) == 0 {
			thumbs = append(thumbs, l)
		}
	}

	s, err := plotter.NewScatter(points)
	if err != nil {
		return fmt.Errorf("building markers %q: %w", label, err)
	}
	s.GlyphStyle = marker
	p.Add(s)
	thumbs = append(thumbs, s)

	if label != "" {
		p.addLegend(label, thumbs...)
	}
	return nil
}

func circle(c color.Color, radius vg.Length) draw.GlyphStyle {
	return draw.GlyphStyle{Color: c, Radius: radius, Shape: draw.CircleGlyph{}}
}
