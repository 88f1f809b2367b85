package gainers

import (
	"io"
	"log/slog"
	"os"
	"time"

	"gainerscli/internal/dataprocessing"
	"gainerscli/internal/exporter"
	"gainerscli/internal/infrastructure"
	"gainerscli/internal/validation"
)

// FactoryConfig carries the dependencies shared by the components a Factory
// builds. Zero values fall back to slog.Default, os.Stdout and time.Now.
type FactoryConfig struct {
	Logger  *slog.Logger
	Out     io.Writer
	Now     func() time.Time
	Read    dataprocessing.ReadOptions
	Metrics *infrastructure.GainerMetrics
	// Normalizer options applied after the source label and metrics.
	Normalizer []NormalizerOption
}

// Factory produces a matched Downloader and Processor for one source.
type Factory struct {
	source Source
	cfg    FactoryConfig
}

// NewFactory resolves choice ("yahoo" or "wsj") and returns its factory.
// An unknown choice fails with ErrUnrecognizedSource naming it.
func NewFactory(choice string, cfg FactoryConfig) (*Factory, error) {
	source, err := ParseSource(choice)
	if err != nil {
		return nil, err
	}
	return NewFactoryFor(source, cfg), nil
}

// NewFactoryFor returns the factory for an already resolved source.
func NewFactoryFor(source Source, cfg FactoryConfig) *Factory {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Factory{source: source, cfg: cfg}
}

// Source returns the factory's source.
func (f *Factory) Source() Source { return f.source }

// Downloader returns the source's downloader.
func (f *Factory) Downloader() Downloader {
	return &simulatedDownloader{
		source: f.source,
		out:    f.cfg.Out,
		logger: f.cfg.Logger,
	}
}

// Processor returns the source's processor.
func (f *Factory) Processor() Processor {
	opts := append([]NormalizerOption{
		WithLogger(f.cfg.Logger),
		WithSourceLabel(f.source.Label()),
		WithMetrics(f.cfg.Metrics),
	}, f.cfg.Normalizer...)

	return &sourceProcessor{
		source:     f.source,
		normalizer: NewNormalizer(opts...),
		readOpts:   f.cfg.Read,
		validator:  validation.NewFileValidator(f.cfg.Logger),
		writer:     exporter.NewCSVWriter(f.cfg.Logger),
		now:        f.cfg.Now,
		out:        f.cfg.Out,
		logger:     f.cfg.Logger,
	}
}
