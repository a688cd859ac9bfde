package dataset

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownFormat is returned when no reader is registered for a file extension.
var ErrUnknownFormat = errors.New("unknown dataset format")

// Reader converts a tabular file into a string-typed DataFrame with a header row.
type Reader interface {
	Read(r io.Reader) (dataframe.DataFrame, error)
	Format() string
}

// Registry holds readers keyed by format name (the file extension without the dot).
type Registry struct {
	readers map[string]Reader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register adds a reader. Panics on duplicate format.
func (r *Registry) Register(rd Reader) {
	key := strings.ToLower(rd.Format())
	if _, ok := r.readers[key]; ok {
		panic("duplicate reader format: " + key)
	}
	r.readers[key] = rd
}

// Get returns the reader for format, or nil.
func (r *Registry) Get(format string) Reader {
	return r.readers[strings.ToLower(format)]
}

// ForPath picks the reader matching the extension of path.
func (r *Registry) ForPath(path string) (Reader, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	rd := r.Get(ext)
	if rd == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Base(path))
	}
	return rd, nil
}

// DefaultRegistry returns a registry with the CSV and XLSX readers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVReader{})
	r.Register(&XLSXReader{})
	return r
}

// loadOptions keep every column as text; numbers are decoded later with exact decimals.
func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	}
}

// CSVReader reads comma-separated files with a header row.
type CSVReader struct{}

// Format returns the reader name.
func (c *CSVReader) Format() string { return "csv" }

// Read loads the whole CSV into a DataFrame. A leading byte-order mark is dropped.
func (c *CSVReader) Read(r io.Reader) (dataframe.DataFrame, error) {
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	df := dataframe.ReadCSV(r, loadOptions()...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reading CSV: %w", df.Err)
	}
	return df, nil
}

// XLSXReader reads the first worksheet of an Excel workbook.
type XLSXReader struct {
	Sheet string // empty = first sheet
}

// Format returns the reader name.
func (x *XLSXReader) Format() string { return "xlsx" }

// Read loads the worksheet into a DataFrame. Short rows are padded to the header width.
func (x *XLSXReader) Read(r io.Reader) (dataframe.DataFrame, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataframe.DataFrame{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q is empty", sheet)
	}

	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for i, row := range rows {
		if len(row) > width {
			return dataframe.DataFrame{}, fmt.Errorf("row %d: expected at most %d fields, got %d", i+1, width, len(row))
		}
		padded := make([]string, width)
		copy(padded, row)
		records = append(records, padded)
	}

	df := dataframe.LoadRecords(records, loadOptions()...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("loading sheet %q: %w", sheet, df.Err)
	}
	return df, nil
}
