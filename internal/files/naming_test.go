package files

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"data/raw_gainers.csv", "data/raw_gainers_norm.csv"},
		{"raw.xlsx", "raw_norm.xlsx"},
		{"noext", "noext_norm"},
		{filepath.Join("a.b", "raw.csv"), filepath.Join("a.b", "raw_norm.csv")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizedPath(tt.input))
		})
	}
}

func TestTimestampedPath(t *testing.T) {
	at := time.Date(2025, 3, 7, 9, 5, 2, 0, time.UTC)

	assert.Equal(t, "out/gainers_yahoo_20250307_090502.csv", TimestampedPath("out/gainers", "yahoo", at))
	assert.Equal(t, "wsj_output_wsj_20250307_090502.csv", TimestampedPath("wsj_output", "wsj", at))
}
