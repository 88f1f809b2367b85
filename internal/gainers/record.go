package gainers

// RawRow is one line of a raw export, cell by cell.
type RawRow []string

// Header is the column row of every normalized gainers file.
var Header = []string{"symbol", "price", "price_change", "price_percent_change"}

// NormalizedRecord is one accepted gainer.
type NormalizedRecord struct {
	Symbol             string `json:"symbol"`
	Price              string `json:"price"`
	PriceChange        string `json:"price_change"`
	PricePercentChange string `json:"price_percent_change"`
}

// CSVRow returns the record's cells in Header order.
func (r NormalizedRecord) CSVRow() []string {
	return []string{r.Symbol, r.Price, r.PriceChange, r.PricePercentChange}
}

// CSVRows converts records for the exporter.
func CSVRows(records []NormalizedRecord) [][]string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.CSVRow()
	}
	return rows
}

// Columns is the positional contract of a raw export, counted after any
// spurious leading blank cell has been dropped.
type Columns struct {
	Symbol   int
	Price    int
	MinCells int
}

// DefaultColumns is the layout shared by the Yahoo and WSJ exports:
// index, symbol, name, market cap, price.
func DefaultColumns() Columns {
	return Columns{Symbol: 1, Price: 4, MinCells: 5}
}
