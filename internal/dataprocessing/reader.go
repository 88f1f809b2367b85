package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// utf8BOM is written by spreadsheet tools at the start of CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Format identifies the container of a raw export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format from the file extension; anything that is
// not an Excel workbook is read as CSV.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// ReadOptions configures how raw rows are read.
type ReadOptions struct {
	// Sheet selects the worksheet of an Excel export. Empty means the first sheet.
	Sheet string
}

// ReadFile reads every row of the export at path, header included.
func ReadFile(path string, opts ReadOptions) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	rows, err := Read(f, FormatFromPath(path), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	slog.Debug("Raw export read",
		slog.String("file_path", path),
		slog.Int("rows", len(rows)))

	return rows, nil
}

// Read reads every row from r in the given format.
func Read(r io.Reader, format Format, opts ReadOptions) ([][]string, error) {
	switch format {
	case FormatXLSX:
		return ReadXLSX(r, opts.Sheet)
	case FormatCSV:
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ReadCSV reads all records of a CSV stream. Rows may have differing cell
// counts and a leading UTF-8 BOM is dropped.
func ReadCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return rows, nil
}

// ReadXLSX reads all rows of one worksheet of an Excel workbook.
func ReadXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
