package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// YahooExport is a small raw Yahoo gainers export: a header followed by
// rows covering the plain, shifted, placeholder, short and invalid cases.
func YahooExport() [][]string {
	return [][]string{
		{"#", "Symbol", "Name", "Market Cap", "Price"},
		{"1", "AAPL", "Apple Inc.", "3T", "150.25 +2.50 (+1.69%)"},
		{"", "2", "MSFT", "Microsoft", "2.9T", "310.00 -1.20 (-0.39%)"},
		{"3", "NVDA", "NVIDIA", "2T", "(N/A) 450.10"},
		{"4", "BAD"},
		{"5", "ZERO", "Zero Corp", "1M", "0"},
		{"6", "BLANK", "Blank Corp", "1M", ""},
	}
}

// WriteCSV writes rows to dir/name and returns the path.
func WriteCSV(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	return path
}

// ReadCSV reads every row of the CSV file at path.
func ReadCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

// WriteXLSX writes rows to the first sheet of a new workbook at dir/name and
// returns the path.
func WriteXLSX(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}
