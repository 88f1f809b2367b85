// Package gainers normalizes top-gainers exports from Yahoo Finance and the
// Wall Street Journal into a single four-column CSV layout.
//
// A Factory pairs a Downloader with a Processor for one source; a Runner
// chains them and saves the result under a timestamped name. NormalizeFile
// covers the one-off case of cleaning a single export in place.
package gainers
