package gainers

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gainerscli/internal/infrastructure"
)

// Result summarizes one pipeline run.
type Result struct {
	Source     Source
	OutputPath string
	Stats      Stats
	Duration   time.Duration
}

// Runner drives download, normalize and save for one source.
type Runner struct {
	downloader Downloader
	processor  Processor
	inputFile  string
	outputBase string
	logger     *slog.Logger
	metrics    *infrastructure.GainerMetrics
}

// NewRunner wires a runner from a factory's components.
func NewRunner(f *Factory, inputFile, outputBase string) *Runner {
	return &Runner{
		downloader: f.Downloader(),
		processor:  f.Processor(),
		inputFile:  inputFile,
		outputBase: outputBase,
		logger:     f.cfg.Logger,
		metrics:    f.cfg.Metrics,
	}
}

// Process runs the pipeline. It stops at the first failing step; nothing is
// written when normalization fails.
func (r *Runner) Process(ctx context.Context) (Result, error) {
	source := r.processor.Source()
	start := time.Now()

	ctx, span := infrastructure.StartSpan(ctx, "gainers.process",
		trace.WithAttributes(
			attribute.String("gainers.source", source.Label()),
			attribute.String("gainers.input", r.inputFile),
		))
	defer span.End()

	result := Result{Source: source}
	err := r.process(ctx, &result)
	result.Duration = time.Since(start)
	r.metrics.RecordRun(ctx, source.Label(), result.Duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		r.logger.ErrorContext(ctx, "Gainers run failed",
			slog.String("source", source.Label()),
			slog.String("error", err.Error()))
		return result, err
	}

	span.SetAttributes(
		attribute.Int("gainers.rows_read", result.Stats.Read),
		attribute.Int("gainers.rows_accepted", result.Stats.Accepted),
	)
	r.logger.InfoContext(ctx, "Gainers run completed",
		slog.String("source", source.Label()),
		slog.String("output", result.OutputPath),
		slog.Int("accepted", result.Stats.Accepted),
		slog.Duration("duration", result.Duration))
	return result, nil
}

func (r *Runner) process(ctx context.Context, result *Result) error {
	if err := r.step(ctx, "gainers.download", func(ctx context.Context) error {
		return r.downloader.Download(ctx)
	}); err != nil {
		return err
	}

	var records []NormalizedRecord
	if err := r.step(ctx, "gainers.normalize", func(ctx context.Context) error {
		var err error
		records, result.Stats, err = r.processor.Normalize(ctx, r.inputFile)
		return err
	}); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.step(ctx, "gainers.save", func(ctx context.Context) error {
		var err error
		result.OutputPath, err = r.processor.SaveWithTimestamp(records, r.outputBase)
		return err
	})
}

func (r *Runner) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := infrastructure.StartSpan(ctx, name)
	defer span.End()

	if err := fn(ctx); err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}
	return nil
}
