package report

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdtrends/rdtrends/internal/analysis"
	"github.com/rdtrends/rdtrends/internal/chart"
	"github.com/rdtrends/rdtrends/internal/dataset"
	"github.com/rdtrends/rdtrends/internal/logging"
	"github.com/rdtrends/rdtrends/internal/model"
	"github.com/rdtrends/rdtrends/internal/runlog"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", name)
}

func newTestPipeline(t *testing.T, data string) (*Pipeline, *bytes.Buffer, string) {
	t.Helper()
	plots := filepath.Join(t.TempDir(), "plots")
	var out bytes.Buffer
	p := New(Options{DataPath: data, PlotsDir: plots, DPI: 40, TopN: 10}, &out, logging.Discard())
	return p, &out, plots
}

func TestRun_Sample(t *testing.T) {
	p, out, plots := newTestPipeline(t, fixture("rds_sample.csv"))

	written, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, written, len(Outputs))

	for i, o := range Outputs {
		assert.Equal(t, filepath.Join(plots, o.File), written[i])
		info, err := os.Stat(written[i])
		require.NoError(t, err, o.File)
		assert.Positive(t, info.Size())
	}

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Starting R&D Expenditure Analysis...\n"))
	assert.Contains(t, text, "Dataset shape: (14, 7)")
	assert.Contains(t, text, "Creating Line Plot: Total R&D Expenditure Trend...")
	assert.Contains(t, text, "Creating Growth Trends Analysis...")
	assert.Contains(t, text, "(A) Central Government: Rs 6,795 Crore")
	assert.Contains(t, text, "(B) State Governments: Rs 1,900 Crore")
	assert.Contains(t, text, "(D) Industrial Sector: Rs 3,383 Crore")
	assert.NotContains(t, text, "Total : Rs")
	assert.Contains(t, text, "Growth from 2005-06 to 2006-07: 13.70%")
	assert.Contains(t, text, "Growth from 2008-09 to 2009-10: 15.52%")
	assert.Contains(t, text, "5. growth_trends.png - Overall growth trends and rates")

	// Banners appear in pipeline order.
	order := []string{
		"Creating Line Plot: Total R&D Expenditure Trend...",
		"Creating Bar Plot: Average R&D Expenditure by Sector...",
		"Creating Line Plot: R&D Expenditure Growth for Top Sub-sectors...",
		"Creating Pie Chart: Sector-wise Distribution...",
		"Creating Growth Trends Analysis...",
		"Analysis completed!",
	}
	last := -1
	for _, banner := range order {
		idx := strings.Index(text, banner)
		require.Greater(t, idx, last, banner)
		last = idx
	}
}

func TestRun_ThreeRowsHasNoIndividualRows(t *testing.T) {
	p, out, _ := newTestPipeline(t, fixture("rds_three_rows.csv"))

	// Every sub-sector label is an aggregate, so the averages have nothing to draw.
	written, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, chart.ErrNoData)
	assert.Equal(t, []string{filepath.Join(p.opts.PlotsDir, chart.TrendFile)}, written)
	assert.NotContains(t, out.String(), "Analysis completed!")
}

func TestRun_MissingInput(t *testing.T) {
	p, _, plots := newTestPipeline(t, filepath.Join(t.TempDir(), "data", "absent.csv"))

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.DirExists(t, plots, "plots directory is created before loading")
}

func TestRun_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	p, _, _ := newTestPipeline(t, path)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, dataset.ErrUnknownFormat)
}

func TestRun_Cancelled(t *testing.T) {
	p, _, _ := newTestPipeline(t, fixture("rds_sample.csv"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}

func TestRun_CustomSelector(t *testing.T) {
	p, out, _ := newTestPipeline(t, fixture("rds_sample.csv"))
	p.opts.Selector = analysis.SubSectorContains("Total R&D Expenditure (A)")

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	// 10300 -> 11550 is 12.14%.
	assert.Contains(t, out.String(), "Growth from 2005-06 to 2006-07: 12.14%")
}

func TestRun_RecordsRunLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "plots", runlog.FileName)
	opts := Options{PlotsDir: filepath.Join(dir, "plots"), DPI: 40, TopN: 10, RunLog: logPath}

	opts.DataPath = fixture("rds_sample.csv")
	_, err := New(opts, io.Discard, logging.Discard()).Run(context.Background())
	require.NoError(t, err)

	opts.DataPath = filepath.Join(dir, "absent.csv")
	_, err = New(opts, io.Discard, logging.Discard()).Run(context.Background())
	require.Error(t, err)

	entries, err := runlog.Read(logPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, runlog.StatusOK, entries[0].Status)
	assert.Equal(t, len(Outputs), entries[0].Files)
	assert.Empty(t, entries[0].Error)
	assert.NotEqual(t, entries[0].RunID, entries[1].RunID)

	assert.Equal(t, runlog.StatusFailed, entries[1].Status)
	assert.Zero(t, entries[1].Files)
	assert.Contains(t, entries[1].Error, "loading dataset")
}

func TestRun_NoRunLogByDefault(t *testing.T) {
	p, _, plots := newTestPipeline(t, fixture("rds_sample.csv"))
	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(plots, runlog.FileName))
}

func TestRun_WarningsCarryRunID(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "table.csv")
	header := "Sectors,Sub Sectors and Economic Activity," + strings.Join(model.YearColumns(), ",")
	table := header + "\n" +
		"(A) Central Government,Major Scientific Agencies,9100,10200,11800,13500,15600\n" +
		"(E) Unreported,Survey Pending,,,,,\n"
	require.NoError(t, os.WriteFile(data, []byte(table), 0o644))

	var logs bytes.Buffer
	logger, err := logging.New(&logs, "info")
	require.NoError(t, err)
	p := New(Options{DataPath: data, PlotsDir: filepath.Join(dir, "plots"), DPI: 40, TopN: 10}, io.Discard, logger)

	// No total rows: the trend chart is drawn empty and the pie has nothing to draw.
	written, err := p.Run(context.Background())
	require.ErrorIs(t, err, chart.ErrNoData)
	require.Len(t, written, 3)
	assert.FileExists(t, written[0])

	warnings := 0
	for _, line := range strings.Split(logs.String(), "\n") {
		if !strings.Contains(line, "level=WARN") {
			continue
		}
		warnings++
		assert.Contains(t, line, "run_id=", line)
	}
	assert.Equal(t, 2, warnings)
	assert.Contains(t, logs.String(), "trend chart is empty")
	assert.Contains(t, logs.String(), `sector="(E) Unreported"`)
}
