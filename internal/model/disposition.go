package model

// Disposition is the bitset ffprobe reports per stream under the
// "disposition" object. Bit identity matches ffprobe's own ordering so
// that parsing can OR flags directly as they're read.
type Disposition uint32

const (
	DispositionDefault Disposition = 1 << iota
	DispositionDub
	DispositionOriginal
	DispositionComment
	DispositionLyrics
	DispositionKaraoke
	DispositionForced
	DispositionHearingImpaired
	DispositionVisualImpaired
	DispositionCleanEffects
	DispositionAttachedPic
	DispositionTimedThumbnails
	DispositionNonDiegetic
	DispositionCaptions
	DispositionDescriptions
	DispositionMetadata
	DispositionDependent
	DispositionMultilayer
	DispositionStillImage
)

// badThumbnailCandidateMask is the OR of dispositions that make a video
// stream an unsuitable thumbnail source even when no better candidate
// exists, per spec §3.
const badThumbnailCandidateMask = DispositionDub |
	DispositionComment |
	DispositionLyrics |
	DispositionKaraoke |
	DispositionForced |
	DispositionHearingImpaired |
	DispositionVisualImpaired |
	DispositionCleanEffects |
	DispositionNonDiegetic |
	DispositionCaptions |
	DispositionDescriptions |
	DispositionMetadata |
	DispositionDependent |
	DispositionMultilayer

func (d Disposition) Has(flag Disposition) bool { return d&flag != 0 }

func (d Disposition) IsAttachedPic() bool       { return d.Has(DispositionAttachedPic) }
func (d Disposition) IsTimedThumbnails() bool   { return d.Has(DispositionTimedThumbnails) }
func (d Disposition) IsStillImage() bool        { return d.Has(DispositionStillImage) }
func (d Disposition) IsDefault() bool           { return d.Has(DispositionDefault) }
func (d Disposition) IsBadThumbnailCandidate() bool {
	return d&badThumbnailCandidateMask != 0
}
