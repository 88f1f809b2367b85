package gainers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gainerscli/internal/dataprocessing"
	apperrors "gainerscli/internal/errors"
	"gainerscli/internal/shared/testutil"
)

var fixedNow = time.Date(2025, 3, 7, 9, 5, 2, 0, time.UTC)

func newTestProcessor(t *testing.T, source Source, out *bytes.Buffer) Processor {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewFactoryFor(source, FactoryConfig{
		Logger: logger,
		Out:    out,
		Now:    func() time.Time { return fixedNow },
	}).Processor()
}

func TestProcessor_NormalizeCSV(t *testing.T) {
	input := testutil.WriteCSV(t, t.TempDir(), "yahoo_raw.csv", testutil.YahooExport())

	records, stats, err := newTestProcessor(t, SourceYahoo, &bytes.Buffer{}).Normalize(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, NormalizedRecord{"MSFT", "310.00", "-1.20", "-0.39"}, records[1])
	assert.Equal(t, Stats{Read: 6, Accepted: 3, Short: 1, Invalid: 2}, stats)
}

func TestProcessor_NormalizeXLSX(t *testing.T) {
	input := testutil.WriteXLSX(t, t.TempDir(), "wsj_raw.xlsx", [][]string{
		{"#", "Symbol", "Name", "Volume", "Price"},
		{"1", "XYZ", "Xyz Corp", "1M", "12.10 +0.40 (3.42%)"},
		{"2", "ABC", "Abc Inc", "2M", "8.00"},
	})

	records, _, err := newTestProcessor(t, SourceWSJ, &bytes.Buffer{}).Normalize(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, []NormalizedRecord{
		{"XYZ", "12.10", "+0.40", "3.42"},
		{"ABC", "8.00", "0", "0"},
	}, records)
}

func TestProcessor_NormalizeMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")

	_, _, err := newTestProcessor(t, SourceYahoo, &bytes.Buffer{}).Normalize(context.Background(), path)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Contains(t, err.Error(), path)
}

func TestProcessor_NormalizeReader(t *testing.T) {
	body := "#,Symbol,Name,Cap,Price\n1,AAPL,Apple,3T,\"1,050.25 +2.50 (0.24%)\"\n"

	records, stats, err := newTestProcessor(t, SourceYahoo, &bytes.Buffer{}).
		NormalizeReader(context.Background(), strings.NewReader(body), dataprocessing.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []NormalizedRecord{{"AAPL", "1050.25", "+2.50", "0.24"}}, records)
	assert.Equal(t, 1, stats.Accepted)

	_, _, err = newTestProcessor(t, SourceYahoo, &bytes.Buffer{}).
		NormalizeReader(context.Background(), strings.NewReader("not a workbook"), dataprocessing.FormatXLSX)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestProcessor_SaveWithTimestamp(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	p := newTestProcessor(t, SourceWSJ, &out)

	records := []NormalizedRecord{
		{"XYZ", "12.10", "+0.40", "3.42"},
		{"ABC", "8.00", "0", "0"},
	}
	path, err := p.SaveWithTimestamp(records, filepath.Join(dir, "reports", "gainers"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "reports", "gainers_wsj_20250307_090502.csv"), path)
	assert.Equal(t, [][]string{
		{"symbol", "price", "price_change", "price_percent_change"},
		{"XYZ", "12.10", "+0.40", "3.42"},
		{"ABC", "8.00", "0", "0"},
	}, testutil.ReadCSV(t, path))
	assert.Contains(t, out.String(), "Saved WSJ normalized data to "+path)
}

func TestProcessor_SaveWithTimestamp_EmptyWritesHeaderOnly(t *testing.T) {
	base := filepath.Join(t.TempDir(), "gainers")
	path, err := newTestProcessor(t, SourceYahoo, &bytes.Buffer{}).SaveWithTimestamp(nil, base)
	require.NoError(t, err)

	assert.Equal(t, [][]string{Header}, testutil.ReadCSV(t, path))
}

func TestProcessor_SaveWithTimestamp_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := newTestProcessor(t, SourceYahoo, &bytes.Buffer{}).
		SaveWithTimestamp(nil, filepath.Join(blocker, "sub", "gainers"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
