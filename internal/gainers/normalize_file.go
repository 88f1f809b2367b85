package gainers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"gainerscli/internal/dataprocessing"
	apperrors "gainerscli/internal/errors"
	"gainerscli/internal/exporter"
	"gainerscli/internal/files"
	"gainerscli/internal/validation"
)

// NormalizeFile normalizes a single raw export outside the per-source
// pipeline and writes the result next to it as "<name>_norm<ext>" (Excel
// inputs become "<name>_norm.csv"). The returned path is empty when no row
// survived, in which case nothing is written.
func NormalizeFile(ctx context.Context, n *Normalizer, input string, readOpts dataprocessing.ReadOptions) (string, Stats, error) {
	validator := validation.NewFileValidator(n.logger)
	if err := validator.ValidateFile(input); err != nil {
		return "", Stats{}, err
	}

	table, err := dataprocessing.ReadFile(input, readOpts)
	if err != nil {
		return "", Stats{}, apperrors.NewParsingError(fmt.Sprintf("failed to read %s", input), err)
	}

	records, stats, err := n.NormalizeTable(ctx, table)
	if err != nil {
		return "", stats, err
	}
	if len(records) == 0 {
		return "", stats, nil
	}

	output := files.NormalizedPath(input)
	if dataprocessing.FormatFromPath(output) == dataprocessing.FormatXLSX {
		output = strings.TrimSuffix(output, filepath.Ext(output)) + ".csv"
	}

	if err := exporter.NewCSVWriter(n.logger).WriteSimpleCSV(output, Header, CSVRows(records)); err != nil {
		return "", stats, apperrors.NewStorageError(fmt.Sprintf("failed to write %s", output), err)
	}

	n.logger.InfoContext(ctx, "Normalized file created",
		slog.String("input", input),
		slog.String("output", output),
		slog.Int("accepted", stats.Accepted))
	return output, stats, nil
}
