// Package report runs the expenditure analysis end to end: load the table,
// derive the aggregates and render every chart into the plots directory.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rdtrends/rdtrends/internal/analysis"
	"github.com/rdtrends/rdtrends/internal/chart"
	"github.com/rdtrends/rdtrends/internal/dataset"
	"github.com/rdtrends/rdtrends/internal/logging"
	"github.com/rdtrends/rdtrends/internal/model"
	"github.com/rdtrends/rdtrends/internal/runlog"
)

// Output is one file written by a run.
type Output struct {
	File        string
	Description string
}

// Outputs lists the charts in the order they are produced.
var Outputs = []Output{
	{chart.TrendFile, "Main sectors R&D trends"},
	{chart.AverageFile, "Average expenditure by sector"},
	{chart.TopFile, "Growth of top 10 sub-sectors"},
	{chart.PieFile, "Sector distribution"},
	{chart.GrowthFile, "Overall growth trends and rates"},
}

// Options configures a pipeline run.
type Options struct {
	DataPath string
	PlotsDir string
	DPI      int
	TopN     int
	// Selector picks the grand-total row. Nil means analysis.CombinedTotal.
	Selector analysis.RowSelector
	// Registry resolves input readers. Nil means dataset.DefaultRegistry.
	Registry *dataset.Registry
	// RunLog is the CSV file each run is recorded in. Empty disables it.
	RunLog string
}

// Pipeline renders the full chart set for one input file.
type Pipeline struct {
	opts   Options
	out    io.Writer
	logger *slog.Logger
	charts *chart.Renderer
}

// New returns a Pipeline printing progress to out and logging to logger.
func New(opts Options, out io.Writer, logger *slog.Logger) *Pipeline {
	if opts.Selector == nil {
		opts.Selector = analysis.CombinedTotal
	}
	if opts.Registry == nil {
		opts.Registry = dataset.DefaultRegistry()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		opts:   opts,
		out:    out,
		logger: logger,
		charts: chart.NewRenderer(opts.DPI),
	}
}

// step is one chart stage of a run.
type step struct {
	banner string
	run    func(*state) error
}

// state is what the chart stages share within one run.
type state struct {
	logger     *slog.Logger
	rows       []model.Row
	individual []model.Row
}

// Run executes load, analysis and all chart steps in order and returns the
// paths written. The context is checked between steps.
func (p *Pipeline) Run(ctx context.Context) ([]string, error) {
	logger, runID := logging.WithRunID(p.logger)
	started := time.Now()
	written, err := p.run(ctx, logger, runID)
	p.record(logger, runlog.Entry{
		Timestamp: started,
		RunID:     runID,
		Data:      p.opts.DataPath,
		Files:     len(written),
	}, err)
	return written, err
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, runID string) ([]string, error) {
	logger.Info("starting run", slog.String("data", p.opts.DataPath), slog.String("plots", p.opts.PlotsDir))

	p.printf("Starting R&D Expenditure Analysis...\n")
	if err := p.prepareDirs(); err != nil {
		return nil, err
	}

	ds, err := dataset.LoadWith(p.opts.Registry, p.opts.DataPath)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	if err := ds.Describe(p.out); err != nil {
		return nil, fmt.Errorf("describing dataset: %w", err)
	}

	st := &state{logger: logger, rows: ds.Rows, individual: analysis.Individual(ds.Rows)}
	var written []string
	for i, s := range p.steps() {
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("run %s interrupted: %w", runID, err)
		}
		if i == 0 {
			p.printf("\n")
		}
		p.printf("%s\n", s.banner)
		if err := s.run(st); err != nil {
			return written, err
		}
		path := p.outPath(Outputs[i].File)
		written = append(written, path)
		logger.Debug("chart written", slog.String("path", path))
	}

	logger.Info("run complete", slog.Int("rows", len(st.rows)), slog.Int("individual_rows", len(st.individual)), slog.Int("files", len(written)))
	p.printCompletion()
	return written, nil
}

// record appends the run to the run log. Failing to record never fails the run.
func (p *Pipeline) record(logger *slog.Logger, e runlog.Entry, runErr error) {
	if p.opts.RunLog == "" {
		return
	}
	e.Status = runlog.StatusOK
	if runErr != nil {
		e.Status = runlog.StatusFailed
		e.Error = runErr.Error()
	}
	if err := runlog.Append(p.opts.RunLog, e); err != nil {
		logging.LogError(logger, "recording run", err, slog.String("path", p.opts.RunLog))
	}
}

func (p *Pipeline) steps() []step {
	return []step{
		{"Creating Line Plot: Total R&D Expenditure Trend...", p.trend},
		{"Creating Bar Plot: Average R&D Expenditure by Sector...", p.averages},
		{"Creating Line Plot: R&D Expenditure Growth for Top Sub-sectors...", p.topSubSectors},
		{"Creating Pie Chart: Sector-wise Distribution...", p.distribution},
		{"Creating Growth Trends Analysis...", p.growth},
	}
}

func (p *Pipeline) prepareDirs() error {
	dirs := []string{p.opts.PlotsDir, filepath.Dir(p.opts.DataPath)}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	return nil
}

func (p *Pipeline) trend(st *state) error {
	series := analysis.TrendSeries(st.rows)
	if len(series) == 0 {
		st.logger.Warn("no sector totals found, trend chart is empty")
	}
	if err := p.charts.Trend(p.outPath(chart.TrendFile), series); err != nil {
		return fmt.Errorf("rendering trend chart: %w", err)
	}
	return nil
}

func (p *Pipeline) averages(st *state) error {
	avgs, undefined := analysis.SectorAverages(st.individual)
	for _, sector := range undefined {
		st.logger.Warn("sector has no values, omitted from averages", slog.String("sector", sector))
	}
	if err := p.charts.Averages(p.outPath(chart.AverageFile), avgs); err != nil {
		return fmt.Errorf("rendering average chart: %w", err)
	}

	p.printf("\nAverage R&D Expenditure by Sector (Rs Crore):\n")
	for _, a := range avgs {
		p.printf("%s: Rs %s Crore\n", a.Sector, analysis.Thousands(a.Value.InexactFloat64()))
	}
	return nil
}

func (p *Pipeline) topSubSectors(st *state) error {
	top := analysis.TopByFinalYear(st.individual, p.opts.TopN)
	if len(top) == 0 {
		st.logger.Warn("no sub-sector has a final-year value, top chart is empty")
	}
	if err := p.charts.TopSubSectors(p.outPath(chart.TopFile), top); err != nil {
		return fmt.Errorf("rendering top sub-sector chart: %w", err)
	}
	return nil
}

func (p *Pipeline) distribution(st *state) error {
	if err := p.charts.Distribution(p.outPath(chart.PieFile), analysis.SectorTotals(st.rows)); err != nil {
		return fmt.Errorf("rendering distribution chart: %w", err)
	}
	return nil
}

func (p *Pipeline) growth(st *state) error {
	agg := analysis.AggregateSeries(st.rows, st.individual, p.opts.Selector)
	st.logger.Debug("aggregate series", slog.String("source", string(agg.Source)), slog.String("label", agg.Label))

	growth, err := analysis.GrowthRates(agg.Values)
	if err != nil {
		return fmt.Errorf("computing growth rates: %w", err)
	}
	for _, g := range growth {
		p.printf("Growth from %s to %s: %s%%\n", g.From, g.To, g.Rate.StringFixed(2))
	}
	if err := p.charts.GrowthTrends(p.outPath(chart.GrowthFile), agg, growth); err != nil {
		return fmt.Errorf("rendering growth chart: %w", err)
	}
	return nil
}

func (p *Pipeline) printCompletion() {
	p.printf("\nAnalysis completed!\n")
	p.printf("\nAll plots have been saved in the '%s' directory:\n", p.opts.PlotsDir)
	for i, o := range Outputs {
		p.printf("%d. %s - %s\n", i+1, o.File, o.Description)
	}
}

func (p *Pipeline) outPath(file string) string {
	return filepath.Join(p.opts.PlotsDir, file)
}

func (p *Pipeline) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}
