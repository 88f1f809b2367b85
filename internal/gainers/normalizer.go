package gainers

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"gainerscli/internal/dataprocessing"
	"gainerscli/internal/infrastructure"
	"gainerscli/internal/pricing"
)

// Validity decides whether a parsed price is good enough to keep a row.
type Validity int

const (
	// RejectEmptyOrZero drops rows whose price is empty or exactly "0".
	RejectEmptyOrZero Validity = iota
	// RejectEmpty drops rows whose price is empty.
	RejectEmpty
)

// Accepts reports whether price passes the predicate.
func (v Validity) Accepts(price string) bool {
	if price == "" {
		return false
	}
	if v == RejectEmptyOrZero && price == "0" {
		return false
	}
	return true
}

// Outcome labels what happened to a single row.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeShort    Outcome = "short"
	OutcomeInvalid  Outcome = "invalid"
)

// Stats counts the rows seen by one NormalizeRows call.
// Read always equals Accepted + Short + Invalid.
type Stats struct {
	Read     int `json:"read"`
	Accepted int `json:"accepted"`
	Short    int `json:"short"`
	Invalid  int `json:"invalid"`
}

// Normalizer turns raw gainer rows into NormalizedRecords.
type Normalizer struct {
	columns      Columns
	validity     Validity
	priceOptions pricing.Options
	workers      int
	source       string
	logger       *slog.Logger
	metrics      *infrastructure.GainerMetrics
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithColumns overrides the positional column contract.
func WithColumns(c Columns) NormalizerOption {
	return func(n *Normalizer) { n.columns = c }
}

// WithValidity sets the price validity predicate.
func WithValidity(v Validity) NormalizerOption {
	return func(n *Normalizer) { n.validity = v }
}

// WithPriceOptions sets the defaults used for missing change fields.
func WithPriceOptions(o pricing.Options) NormalizerOption {
	return func(n *Normalizer) { n.priceOptions = o }
}

// WithWorkers sets how many goroutines normalize a batch. Values below one
// fall back to sequential processing.
func WithWorkers(workers int) NormalizerOption {
	return func(n *Normalizer) {
		if workers > 0 {
			n.workers = workers
		}
	}
}

// WithLogger sets the logger for per-row diagnostics.
func WithLogger(logger *slog.Logger) NormalizerOption {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithMetrics records row outcomes on m.
func WithMetrics(m *infrastructure.GainerMetrics) NormalizerOption {
	return func(n *Normalizer) { n.metrics = m }
}

// WithSourceLabel sets the source attribute used in logs and metrics.
func WithSourceLabel(label string) NormalizerOption {
	return func(n *Normalizer) { n.source = label }
}

// NewNormalizer builds a Normalizer using DefaultColumns, RejectEmptyOrZero
// and sequential processing unless told otherwise.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		columns:      DefaultColumns(),
		validity:     RejectEmptyOrZero,
		priceOptions: pricing.DefaultOptions(),
		workers:      1,
		source:       "unknown",
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NormalizeRow normalizes a single row. The boolean is false when the row
// was skipped.
func (n *Normalizer) NormalizeRow(row RawRow) (NormalizedRecord, bool) {
	rec, outcome := n.normalize(row)
	return rec, outcome == OutcomeAccepted
}

func (n *Normalizer) normalize(row RawRow) (NormalizedRecord, Outcome) {
	// Some exports prepend an empty cell that shifts every column right.
	if len(row) > 0 && row[0] == "" {
		row = row[1:]
	}
	if len(row) < n.columns.MinCells || n.columns.Symbol >= len(row) || n.columns.Price >= len(row) {
		return NormalizedRecord{}, OutcomeShort
	}

	token := pricing.ParseWith(strings.TrimSpace(row[n.columns.Price]), n.priceOptions)
	if token.Empty() || !n.validity.Accepts(token.Price) {
		return NormalizedRecord{}, OutcomeInvalid
	}

	return NormalizedRecord{
		Symbol:             strings.TrimSpace(row[n.columns.Symbol]),
		Price:              token.Price,
		PriceChange:        token.Change,
		PricePercentChange: token.Percent,
	}, OutcomeAccepted
}

type rowResult struct {
	record  NormalizedRecord
	outcome Outcome
}

// NormalizeRows normalizes a batch of data rows (no header) and returns the
// accepted records in input order.
func (n *Normalizer) NormalizeRows(ctx context.Context, rows []RawRow) ([]NormalizedRecord, Stats, error) {
	results := make([]rowResult, len(rows))

	if n.workers <= 1 || len(rows) < 2 {
		for i, row := range rows {
			if err := ctx.Err(); err != nil {
				return nil, Stats{}, err
			}
			results[i].record, results[i].outcome = n.normalize(row)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(n.workers)

		chunk := (len(rows) + n.workers - 1) / n.workers
		for start := 0; start < len(rows); start += chunk {
			end := min(start+chunk, len(rows))
			g.Go(func() error {
				for i := start; i < end; i++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					results[i].record, results[i].outcome = n.normalize(rows[i])
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, Stats{}, err
		}
	}

	stats := Stats{Read: len(rows)}
	records := make([]NormalizedRecord, 0, len(rows))
	for i, res := range results {
		switch res.outcome {
		case OutcomeAccepted:
			stats.Accepted++
			records = append(records, res.record)
		case OutcomeShort:
			stats.Short++
			n.logger.DebugContext(ctx, "Skipping malformed row",
				slog.Int("row", i),
				slog.Int("cells", len(rows[i])))
		case OutcomeInvalid:
			stats.Invalid++
			n.logger.DebugContext(ctx, "Skipping row with invalid price",
				slog.Int("row", i))
		}
	}

	n.metrics.RecordRows(ctx, n.source, string(OutcomeAccepted), stats.Accepted)
	n.metrics.RecordRows(ctx, n.source, string(OutcomeShort), stats.Short)
	n.metrics.RecordRows(ctx, n.source, string(OutcomeInvalid), stats.Invalid)

	if stats.Accepted == 0 {
		n.logger.WarnContext(ctx, "No valid rows were processed",
			slog.String("source", n.source),
			slog.Int("rows_read", stats.Read))
	}

	return records, stats, nil
}

// NormalizeTable treats the first row as the header and normalizes the rest.
// Header names are checked for symbol and price only to warn about
// unexpected layouts; extraction stays positional.
func (n *Normalizer) NormalizeTable(ctx context.Context, table [][]string) ([]NormalizedRecord, Stats, error) {
	if len(table) == 0 {
		n.logger.WarnContext(ctx, "Input contains no rows", slog.String("source", n.source))
		return []NormalizedRecord{}, Stats{}, nil
	}

	headers := dataprocessing.NormalizeHeaders(table[0])
	if missing := dataprocessing.MissingHeaders(headers, "symbol", "price"); len(missing) > 0 {
		n.logger.WarnContext(ctx, "Header is missing expected columns",
			slog.String("source", n.source),
			slog.Any("missing", missing),
			slog.Any("headers", headers))
	}

	data := make([]RawRow, len(table)-1)
	for i, row := range table[1:] {
		data[i] = RawRow(row)
	}
	return n.NormalizeRows(ctx, data)
}
