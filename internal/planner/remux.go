package planner

import (
	"github.com/streamforge/reencoder/internal/catalog"
	"github.com/streamforge/reencoder/internal/config"
	"github.com/streamforge/reencoder/internal/model"
)

// remuxNecessity holds the two booleans spec §4.4(f) computes: whether
// a remux is needed at all, and whether it's needed for a reason that
// isn't just an optional fidelity tweak (used later to decide whether
// the size-compare pass may fall back to the original file).
type remuxNecessity struct {
	Required           bool
	GuaranteedRequired bool
}

// computeRemuxNecessity implements spec §4.4(f). anyStreamReencode and
// anyStreamGuaranteedReencode summarize stage (h)'s per-stream
// decisions: whether any stream would be reencoded at all, and whether
// any of those reencodes is for a guaranteed (not merely optional)
// reason.
func computeRemuxNecessity(fi *model.FileInfo, opts *config.Options, validation validationResult, anyStreamReencode, anyStreamGuaranteedReencode bool) remuxNecessity {
	sourceInResultFormats := false
	for _, name := range opts.ResultFormats {
		f := catalog.FindFormat(name)
		if f != nil && f.NameMatches(fi.FormatName) {
			sourceInResultFormats = true
			break
		}
	}

	required := validation.AnyOptionalReencode ||
		!sourceInResultFormats ||
		opts.MetadataStrippingMode == config.MetadataRequired ||
		opts.ForceProgressiveDownload ||
		anyStreamReencode

	guaranteedRequired := !sourceInResultFormats ||
		opts.MetadataStrippingMode == config.MetadataRequired ||
		opts.ForceProgressiveDownload ||
		anyStreamGuaranteedReencode

	return remuxNecessity{
		Required:           required,
		GuaranteedRequired: guaranteedRequired,
	}
}
