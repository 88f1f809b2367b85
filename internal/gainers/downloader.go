package gainers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Downloader fetches a provider's raw gainers export.
type Downloader interface {
	Source() Source
	Download(ctx context.Context) error
}

// simulatedDownloader announces the fetch but leaves retrieval to whoever
// placed the raw export on disk.
type simulatedDownloader struct {
	source Source
	out    io.Writer
	logger *slog.Logger
}

func (d *simulatedDownloader) Source() Source { return d.source }

func (d *simulatedDownloader) Download(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Fprintf(d.out, "Downloading %s gainers data from: %s\n", d.source.DisplayName(), d.source.URL())
	d.logger.InfoContext(ctx, "Downloading gainers data",
		slog.String("source", d.source.Label()),
		slog.String("url", d.source.URL()))
	return nil
}
