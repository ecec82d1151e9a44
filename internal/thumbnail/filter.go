package thumbnail

import (
	"fmt"
	"strconv"

	"github.com/streamforge/reencoder/internal/model"
)

// defaultMaxDimension is ffmpeg's own per-side limit for most filters;
// spec §4.5 names it as the thumbnail pipeline's hard cap.
const defaultMaxDimension = 32767

// bytesPerPixelOpaque and bytesPerPixelAlpha approximate the PNG
// encoder's working set per pixel for the byte-budget iteration below;
// exactness doesn't matter, only that the budget check converges.
const (
	bytesPerPixelOpaque = 3
	bytesPerPixelAlpha  = 4
)

// hasAlphaHint reports whether pixFmt suggests the source carries an
// alpha channel worth preserving through the HDR→SDR remap.
func hasAlphaHint(pixFmt string) bool {
	switch pixFmt {
	case "yuva420p", "yuva422p", "yuva444p", "rgba", "bgra", "argb", "abgr", "ya8", "pal8":
		return true
	default:
		return false
	}
}

// fitPixelByteBudget halves (w, h) together until w*h*bytesPerPixel
// fits within budget, or until either side hits 1. budget <= 0 means
// unbounded.
func fitPixelByteBudget(width, height, bytesPerPixel, budget int) (int, int) {
	if budget <= 0 {
		return width, height
	}
	w, h := width, height
	for w*h*bytesPerPixel > budget && w > 1 && h > 1 {
		w /= 2
		h /= 2
	}
	return w, h
}

func clampDimension(n, max int) int {
	if max <= 0 {
		max = defaultMaxDimension
	}
	if n > max {
		return max
	}
	return n
}

// computeDimensions applies spec §4.5's target-dimension rules: clamp
// to the per-side maximum, then iterate reduction until the pixel-byte
// budget is satisfied.
func computeDimensions(width, height int, alpha bool, maxDimension, byteBudget int) (int, int) {
	w := clampDimension(width, maxDimension)
	h := clampDimension(height, maxDimension)

	bpp := bytesPerPixelOpaque
	if alpha {
		bpp = bytesPerPixelAlpha
	}
	return fitPixelByteBudget(w, h, bpp, byteBudget)
}

// hdrToSDRFilter mirrors the planner's fixed tonemap chain (spec
// §4.4h/§4.5): linearize, convert to a float RGB working space, reset
// to BT.709 primaries, Mobius tonemap, BT.709 transfer/matrix at PC
// range, then convert to the chosen output pixel format.
func hdrToSDRFilter(outPixFmt string) string {
	return fmt.Sprintf(
		"zscale=transfer=linear,format=gbrpf32le,zscale=primaries=bt709,tonemap=tonemap=mobius,zscale=transfer=bt709:matrix=bt709:range=pc,format=%s",
		outPixFmt,
	)
}

// planFilters assembles the filter chain for one thumbnail extraction:
// optional HDR→SDR remap (with an alpha-preserving output pixel format
// when the source hints at one), the byte-budget-fitted scale, and an
// optional square-pixel correction.
func planFilters(v *model.VideoStream, opts filterOptions) string {
	var filter string

	alpha := hasAlphaHint(v.PixFmt)
	if opts.RemapHDRToSDR && v.IsHDR() {
		outPixFmt := "rgb24"
		if alpha {
			outPixFmt = "rgba"
		}
		filter = hdrToSDRFilter(outPixFmt)
	}

	w, h := computeDimensions(v.Width, v.Height, alpha, opts.MaxDimension, opts.PixelByteBudget)
	if w != v.Width || h != v.Height {
		filter = appendFilter(filter, "scale="+strconv.Itoa(w)+":"+strconv.Itoa(h))
	}

	if opts.ForceSquarePixels {
		filter = appendFilter(filter, "setsar=1")
	}

	return filter
}

func appendFilter(existing, add string) string {
	if existing == "" {
		return add
	}
	return existing + "," + add
}

// filterOptions is the narrow slice of config.ThumbnailOptions the
// filter-planning stage needs.
type filterOptions struct {
	RemapHDRToSDR     bool
	ForceSquarePixels bool
	MaxDimension      int
	PixelByteBudget   int
}
