// Package exporter writes normalized gainers data as CSV.
//
// CSVWriter writes whole files (optionally with a
// UTF-8 BOM for Excel); Write encodes onto any io.Writer and is what the
// HTTP transport uses to stream a response body.
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteSimpleCSV("out/gainers.csv", header, rows)
package exporter
