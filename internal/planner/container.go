package planner

import (
	"fmt"

	"github.com/streamforge/reencoder/internal/catalog"
	"github.com/streamforge/reencoder/internal/config"
)

// identifyContainer implements spec §4.4(b): the first declared
// source_formats entry whose catalog NameMatches accepts the probed
// format name.
func identifyContainer(opts *config.Options, formatName string) (*catalog.Format, error) {
	for _, declared := range opts.SourceFormats {
		f := catalog.FindFormat(declared)
		if f == nil {
			continue
		}
		if f.NameMatches(formatName) {
			return f, nil
		}
	}
	if len(opts.SourceFormats) == 0 {
		if f := catalog.FindFormat(formatName); f != nil {
			return f, nil
		}
	}
	return nil, &FormatError{Reason: fmt.Sprintf("unsupported source format %q", formatName)}
}
