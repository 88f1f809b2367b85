package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gainerscli/internal/infrastructure"
	"gainerscli/internal/shared/testutil"
)

// runCLI runs the command with an empty config file so the working
// directory's config never leaks into the test.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("telemetry:\n  metric_exporter: none\n"), 0644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"-config", cfgPath}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Get(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "yahoo_raw.csv", testutil.YahooExport())
	outputBase := filepath.Join(dir, "yahoo_output")

	code, stdout, stderr := runCLI(t, "get", "yahoo", input, outputBase)
	require.Equal(t, exitOK, code, stderr)

	assert.Contains(t, stdout, "Downloading Yahoo gainers data from: https://finance.yahoo.com/gainers")
	assert.Contains(t, stdout, "Saved Yahoo normalized data to")

	matches, err := filepath.Glob(outputBase + "_yahoo_*.csv")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	rows := testutil.ReadCSV(t, matches[0])
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"symbol", "price", "price_change", "price_percent_change"}, rows[0])
}

func TestRun_GetWithWorkersFlag(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "wsj_raw.csv", testutil.YahooExport())

	code, stdout, stderr := runCLI(t, "-workers", "4", "get", "wsj", input, filepath.Join(dir, "wsj_output"))
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Downloading WSJ gainers data from: https://www.wsj.com/market-data/stocks/us/gainers")
}

func TestRun_GetUnrecognizedSource(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "raw.csv", testutil.YahooExport())

	code, stdout, stderr := runCLI(t, "get", "invalid", input, filepath.Join(dir, "out"))
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, `unrecognized gainer type "invalid"`)
	assert.NotContains(t, stdout, "Downloading")
}

func TestRun_GetMissingInput(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := runCLI(t, "get", "yahoo", filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out"))
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "missing.csv")

	matches, err := filepath.Glob(filepath.Join(dir, "out_*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRun_GetWrongArgCount(t *testing.T) {
	code, _, stderr := runCLI(t, "get", "yahoo")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "Usage: gainers get")
}

func TestRun_Normalize(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "raw_gainers.csv", testutil.YahooExport())

	code, stdout, stderr := runCLI(t, "normalize", input)
	require.Equal(t, exitOK, code, stderr)

	output := filepath.Join(dir, "raw_gainers_norm.csv")
	assert.Equal(t, "Normalized file created: "+output+"\n", stdout)
	assert.Len(t, testutil.ReadCSV(t, output), 4)
}

func TestRun_NormalizeNoValidRows(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteCSV(t, dir, "raw.csv", [][]string{
		{"#", "Symbol", "Name", "Cap", "Price"},
		{"1", "ZERO", "Zero", "1M", "0"},
	})

	code, stdout, _ := runCLI(t, "normalize", input)
	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "No valid rows were processed"))
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"scrape"}, exitUsage},
		{"bad flag", []string{"-nope"}, exitUsage},
		{"help", []string{"help"}, exitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, &stdout, &stderr)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stdout.String()+stderr.String(), "Usage:")
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	code, _, stderr := runCLI(t, "-log-level", "loud", "normalize", "x.csv")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "config validation failed")
}
