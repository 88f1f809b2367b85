package dataprocessing

import "strings"

// headerMapping renames normalized source headers to the output column names.
var headerMapping = map[string]string{
	"symbol":   "symbol",
	"price":    "price",
	"change":   "price_change",
	"change_%": "price_percent_change",
}

// NormalizeHeaders drops a leading blank header cell, lower-cases and trims
// every name, replaces spaces with underscores and maps known names onto the
// output columns. Unknown names pass through in their normalized form.
func NormalizeHeaders(raw []string) []string {
	if len(raw) > 0 && raw[0] == "" {
		raw = raw[1:]
	}

	headers := make([]string, len(raw))
	for i, h := range raw {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if mapped, ok := headerMapping[name]; ok {
			name = mapped
		}
		headers[i] = name
	}
	return headers
}

// MissingHeaders returns the names in required that headers does not contain.
func MissingHeaders(headers []string, required ...string) []string {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
