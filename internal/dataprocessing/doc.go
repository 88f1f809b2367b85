// Package dataprocessing reads raw gainers exports into rows of cells.
//
// Exports arrive either as CSV or as Excel workbooks:
//
//	rows, err := dataprocessing.ReadFile("data/raw_gainers.csv", dataprocessing.ReadOptions{})
//
// The first row is the source's header. NormalizeHeaders turns it into the
// output column vocabulary (symbol, price, price_change, price_percent_change)
// and is only used to check that an export looks like what the caller
// expects; row extraction is positional and happens in package gainers.
package dataprocessing
