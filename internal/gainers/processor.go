package gainers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gainerscli/internal/dataprocessing"
	apperrors "gainerscli/internal/errors"
	"gainerscli/internal/exporter"
	"gainerscli/internal/files"
	"gainerscli/internal/validation"
)

// Processor normalizes a provider's raw export and persists the result.
type Processor interface {
	Source() Source
	// Normalize reads a raw CSV or XLSX export from disk.
	Normalize(ctx context.Context, inputFile string) ([]NormalizedRecord, Stats, error)
	// NormalizeReader reads a raw export from r.
	NormalizeReader(ctx context.Context, r io.Reader, format dataprocessing.Format) ([]NormalizedRecord, Stats, error)
	// SaveWithTimestamp writes records to "<outputBase>_<label>_<timestamp>.csv"
	// and returns the path written.
	SaveWithTimestamp(records []NormalizedRecord, outputBase string) (string, error)
}

type sourceProcessor struct {
	source     Source
	normalizer *Normalizer
	readOpts   dataprocessing.ReadOptions
	validator  *validation.FileValidator
	writer     *exporter.CSVWriter
	now        func() time.Time
	out        io.Writer
	logger     *slog.Logger
}

func (p *sourceProcessor) Source() Source { return p.source }

func (p *sourceProcessor) Normalize(ctx context.Context, inputFile string) ([]NormalizedRecord, Stats, error) {
	if err := p.validator.ValidateFile(inputFile); err != nil {
		return nil, Stats{}, err
	}

	table, err := dataprocessing.ReadFile(inputFile, p.readOpts)
	if err != nil {
		return nil, Stats{}, apperrors.NewParsingError(fmt.Sprintf("failed to read %s", inputFile), err)
	}

	records, stats, err := p.normalizer.NormalizeTable(ctx, table)
	if err != nil {
		return nil, stats, err
	}

	p.logger.InfoContext(ctx, "Normalized gainers file",
		slog.String("source", p.source.Label()),
		slog.String("input", inputFile),
		slog.Int("rows_read", stats.Read),
		slog.Int("accepted", stats.Accepted),
		slog.Int("short", stats.Short),
		slog.Int("invalid", stats.Invalid))
	return records, stats, nil
}

func (p *sourceProcessor) NormalizeReader(ctx context.Context, r io.Reader, format dataprocessing.Format) ([]NormalizedRecord, Stats, error) {
	table, err := dataprocessing.Read(r, format, p.readOpts)
	if err != nil {
		return nil, Stats{}, apperrors.NewParsingError("failed to read gainers export", err)
	}
	return p.normalizer.NormalizeTable(ctx, table)
}

func (p *sourceProcessor) SaveWithTimestamp(records []NormalizedRecord, outputBase string) (string, error) {
	path := files.TimestampedPath(outputBase, p.source.Label(), p.now())

	if err := p.validator.ValidateOutputDirectory(path); err != nil {
		return "", err
	}
	if err := p.writer.WriteSimpleCSV(path, Header, CSVRows(records)); err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to save %s", path), err)
	}

	fmt.Fprintf(p.out, "Saved %s normalized data to %s\n", p.source.DisplayName(), path)
	return path, nil
}
