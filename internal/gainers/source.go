package gainers

import (
	"errors"
	"fmt"
)

// Source identifies a gainers provider.
type Source int

const (
	SourceYahoo Source = iota + 1
	SourceWSJ
)

// ErrUnrecognizedSource is returned for a source name outside Sources().
var ErrUnrecognizedSource = errors.New("unrecognized gainer type")

type sourceSpec struct {
	label   string
	display string
	url     string
}

var sourceSpecs = map[Source]sourceSpec{
	SourceYahoo: {label: "yahoo", display: "Yahoo", url: "https://finance.yahoo.com/gainers"},
	SourceWSJ:   {label: "wsj", display: "WSJ", url: "https://www.wsj.com/market-data/stocks/us/gainers"},
}

// Sources lists every supported source in a stable order.
func Sources() []Source {
	return []Source{SourceYahoo, SourceWSJ}
}

// ParseSource maps a selector such as "yahoo" or "wsj" to its Source.
// Matching is exact.
func ParseSource(name string) (Source, error) {
	for _, s := range Sources() {
		if sourceSpecs[s].label == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnrecognizedSource, name)
}

// Label is the lower-case selector, also used in saved file names.
func (s Source) Label() string { return sourceSpecs[s].label }

// DisplayName is the human-readable provider name.
func (s Source) DisplayName() string { return sourceSpecs[s].display }

// URL is the page the provider's gainers list is published on.
func (s Source) URL() string { return sourceSpecs[s].url }

func (s Source) String() string {
	if spec, ok := sourceSpecs[s]; ok {
		return spec.label
	}
	return fmt.Sprintf("Source(%d)", int(s))
}
