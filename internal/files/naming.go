package files

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is the timestamp embedded in saved gainers files.
const TimestampLayout = "20060102_150405"

// NormalizedPath returns the path the standalone normalizer writes for input:
// the same name with "_norm" before the extension.
func NormalizedPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_norm" + ext
}

// TimestampedPath returns "<base>_<label>_<YYYYMMDD_HHMMSS>.csv".
func TimestampedPath(base, label string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.csv", base, label, at.Format(TimestampLayout))
}
