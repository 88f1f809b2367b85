package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeaders(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{
			name: "clean export headers",
			raw:  []string{"Symbol", "Price", "Change", "Change %"},
			want: []string{"symbol", "price", "price_change", "price_percent_change"},
		},
		{
			name: "leading blank column dropped",
			raw:  []string{"", "#", " Symbol ", "Name", "Market Cap", "Price"},
			want: []string{"#", "symbol", "name", "market_cap", "price"},
		},
		{
			name: "already normalized output is stable",
			raw:  []string{"symbol", "price", "price_change", "price_percent_change"},
			want: []string{"symbol", "price", "price_change", "price_percent_change"},
		},
		{
			name: "empty",
			raw:  nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeaders(tt.raw))
		})
	}
}

func TestMissingHeaders(t *testing.T) {
	headers := NormalizeHeaders([]string{"#", "Symbol", "Name", "Market Cap", "Price"})

	assert.Empty(t, MissingHeaders(headers, "symbol", "price"))
	assert.Equal(t, []string{"price_change"}, MissingHeaders(headers, "symbol", "price_change"))
}
