// Command gainers normalizes top-gainers exports from Yahoo Finance and the
// Wall Street Journal.
//
// Usage:
//
//	gainers [global flags] get <yahoo|wsj> <input_file> <output_file>
//	gainers [global flags] normalize [-sheet name] <input_file>
//	gainers [global flags] serve [-port n]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"gainerscli/internal/app"
	"gainerscli/internal/config"
	"gainerscli/internal/dataprocessing"
	apperrors "gainerscli/internal/errors"
	"gainerscli/internal/gainers"
	"gainerscli/internal/infrastructure"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// globalOptions are the flags accepted before the subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	workers    int
}

// env is what every subcommand runs with.
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
	metrics   *infrastructure.GainerMetrics
	stdout    io.Writer
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gainers [global flags] get <yahoo|wsj> <input_file> <output_file>")
	fmt.Fprintln(w, "  gainers [global flags] normalize [-sheet name] <input_file>")
	fmt.Fprintln(w, "  gainers [global flags] serve [-port n]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprintln(w, "  -config string     path to a YAML config file")
	fmt.Fprintln(w, "  -log-level string  debug, info, warn or error")
	fmt.Fprintln(w, "  -workers int       goroutines normalizing rows")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gainers", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }

	var opts globalOptions
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level override")
	fs.IntVar(&opts.workers, "workers", 0, "normalization workers override")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		usage(stderr)
		return exitUsage
	}

	var cmd func(context.Context, *env, []string, io.Writer) int
	switch rest[0] {
	case "get":
		cmd = runGet
	case "normalize":
		cmd = runNormalize
	case "serve":
		cmd = runServe
	case "help", "-h", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(stderr)
		return exitUsage
	}

	e, err := setup(opts, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer func() {
		if err := e.providers.Shutdown(context.Background()); err != nil {
			e.logger.Error("Failed to shut down telemetry", slog.String("error", err.Error()))
		}
		infrastructure.CloseLogFile()
	}()

	ctx = infrastructure.WithTraceID(ctx, uuid.New().String())
	return cmd(ctx, e, rest[1:], stderr)
}

func setup(opts globalOptions, stdout, stderr io.Writer) (*env, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.workers > 0 {
		cfg.Normalize.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, stderr, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := infrastructure.CreateGainerMetrics(providers.Meter)
	if err != nil {
		providers.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	return &env{
		cfg:       cfg,
		logger:    logger,
		providers: providers,
		metrics:   metrics,
		stdout:    stdout,
	}, nil
}

func runGet(ctx context.Context, e *env, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sheet := fs.String("sheet", e.cfg.Normalize.Sheet, "worksheet of an .xlsx input")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 3 {
		fmt.Fprintln(stderr, "Usage: gainers get <yahoo|wsj> <input_file> <output_file>")
		return exitUsage
	}
	choice, input, output := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	cfg := app.FactoryConfig(e.cfg, e.logger, e.metrics, e.stdout)
	cfg.Read.Sheet = *sheet

	factory, err := gainers.NewFactory(choice, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	if _, err := gainers.NewRunner(factory, input, output).Process(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

func runNormalize(ctx context.Context, e *env, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sheet := fs.String("sheet", e.cfg.Normalize.Sheet, "worksheet of an .xlsx input")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: gainers normalize [-sheet name] <input_file>")
		return exitUsage
	}

	// The standalone normalizer always drops zero prices.
	opts := append(app.NormalizerOptions(e.cfg.Normalize),
		gainers.WithLogger(e.logger),
		gainers.WithMetrics(e.metrics),
		gainers.WithSourceLabel("file"),
		gainers.WithValidity(gainers.RejectEmptyOrZero),
	)

	output, stats, err := gainers.NormalizeFile(ctx, gainers.NewNormalizer(opts...), fs.Arg(0),
		dataprocessing.ReadOptions{Sheet: *sheet})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if output == "" {
		fmt.Fprintf(e.stdout, "No valid rows were processed (%d rows read).\n", stats.Read)
		return exitOK
	}
	fmt.Fprintf(e.stdout, "Normalized file created: %s\n", output)
	return exitOK
}

func runServe(ctx context.Context, e *env, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	port := fs.Int("port", e.cfg.Server.Port, "listen port")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	e.cfg.Server.Port = *port

	application, err := app.NewApplication(e.cfg, e.logger, e.providers)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.ErrorContext(ctx, "Application error", slog.String("error", err.Error()))
		return exitError
	}
	return exitOK
}
