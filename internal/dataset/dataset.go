package dataset

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/go-gota/gota/dataframe"

	"github.com/rdtrends/rdtrends/internal/model"
)

const previewRows = 5

// ColumnStat summarises one column for diagnostics.
type ColumnStat struct {
	Name    string
	Kind    string // "text" or "numeric"
	NonNull int
	Missing int
}

// Dataset is the loaded table: typed rows plus the frame they were decoded from.
type Dataset struct {
	Path  string
	Rows  []model.Row
	frame dataframe.DataFrame
}

// Load reads the dataset at path with the default readers.
func Load(path string) (*Dataset, error) {
	return LoadWith(DefaultRegistry(), path)
}

// LoadWith reads the dataset at path using the reader registered for its extension.
func LoadWith(reg *Registry, path string) (*Dataset, error) {
	rd, err := reg.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	df, err := rd.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return FromFrame(path, df)
}

// FromFrame decodes an already-loaded DataFrame.
func FromFrame(path string, df dataframe.DataFrame) (*Dataset, error) {
	rows, err := DecodeRows(df)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &Dataset{Path: path, Rows: rows, frame: df}, nil
}

// Shape returns the row and column counts of the source table.
func (d *Dataset) Shape() (rows, cols int) {
	return d.frame.Nrow(), d.frame.Ncol()
}

// Columns returns per-column non-null and missing counts in header order.
func (d *Dataset) Columns() []ColumnStat {
	numeric := make(map[string]bool, model.NumYears)
	for _, c := range model.YearColumns() {
		numeric[c] = true
	}

	names := d.frame.Names()
	stats := make([]ColumnStat, 0, len(names))
	for _, name := range names {
		st := ColumnStat{Name: name, Kind: "text"}
		if numeric[name] {
			st.Kind = "numeric"
		}
		for _, cell := range d.frame.Col(name).Records() {
			if IsMissing(cell) {
				st.Missing++
			} else {
				st.NonNull++
			}
		}
		stats = append(stats, st)
	}
	return stats
}

// Describe prints shape, column info, a preview and missing-value counts.
func (d *Dataset) Describe(w io.Writer) error {
	nrow, ncol := d.Shape()
	stats := d.Columns()

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Dataset Info:")
	fmt.Fprintf(tw, "%d entries, %d columns\n", nrow, ncol)
	fmt.Fprintln(tw, " #\tColumn\tNon-Null Count\tKind")
	for i, st := range stats {
		fmt.Fprintf(tw, " %d\t%s\t%d non-null\t%s\n", i, st.Name, st.NonNull, st.Kind)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nFirst %d rows:\n", previewRows)
	fmt.Fprintln(w, d.preview().String())
	fmt.Fprintf(w, "\nDataset shape: (%d, %d)\n", nrow, ncol)

	fmt.Fprintln(w, "\nMissing values:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, st := range stats {
		fmt.Fprintf(tw, "%s\t%d\n", st.Name, st.Missing)
	}
	return tw.Flush()
}

func (d *Dataset) preview() dataframe.DataFrame {
	n := d.frame.Nrow()
	if n > previewRows {
		n = previewRows
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return d.frame.Subset(idx)
}
