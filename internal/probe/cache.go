package probe

import (
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/streamforge/reencoder/internal/metrics"
	"github.com/streamforge/reencoder/internal/model"
)

// Cache is an embedded key/value store holding probe results keyed by
// path|size|mtime|probe-binary-path, so repeated probes of an unchanged
// file within a process lifetime skip invoking the toolchain.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens (creating if necessary) a badger database rooted at
// dir. ttl of zero disables expiry.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Close releases the underlying badger database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the cached FileInfo for key, if present.
func (c *Cache) Get(key string) (*model.FileInfo, bool) {
	if c == nil {
		return nil, false
	}
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			metrics.ProbeCacheLookups.WithLabelValues("error").Inc()
		} else {
			metrics.ProbeCacheLookups.WithLabelValues("miss").Inc()
		}
		return nil, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		metrics.ProbeCacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}
	metrics.ProbeCacheLookups.WithLabelValues("hit").Inc()
	return env.toFileInfo(), true
}

// Put stores fi under key, subject to the cache's configured TTL.
func (c *Cache) Put(key string, fi *model.FileInfo) error {
	if c == nil {
		return nil
	}
	env := newCacheEnvelope(fi)
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// cacheEnvelope is the JSON-serializable mirror of model.FileInfo; the
// Stream sum type doesn't marshal through encoding/json directly
// (interface values need a discriminator), so each stream is stored
// with an explicit "kind" tag.
type cacheEnvelope struct {
	FormatName string            `json:"format_name"`
	Duration   *float64          `json:"duration"`
	Streams    []cacheStreamEnvelope `json:"streams"`
}

type cacheStreamEnvelope struct {
	Kind   string          `json:"kind"`
	Common model.Common    `json:"common"`
	Video  *videoFields    `json:"video,omitempty"`
	Audio  *audioFields    `json:"audio,omitempty"`
	Subtitle *subtitleFields `json:"subtitle,omitempty"`
	Unrecognized *unrecognizedFields `json:"unrecognized,omitempty"`
}

type videoFields struct {
	Width, Height  int
	FPSNum, FPSDen int
	SARNum, SARDen int
	PixFmt         string
	ColorRange     string
	ColorTransfer  string
	ColorPrimaries string
	ColorSpace     string
	FieldOrder     string
	BitsPerSample  int
	Duration       *float64
	AlphaMode      string
	Title          string
}

type audioFields struct {
	Channels      int
	SampleRate    *int
	ChannelLayout string
	Title         string
	Duration      *float64
}

type subtitleFields struct {
	Title string
}

type unrecognizedFields struct {
	CodecType string
}

func newCacheEnvelope(fi *model.FileInfo) cacheEnvelope {
	env := cacheEnvelope{FormatName: fi.FormatName, Duration: fi.Duration}
	for _, s := range fi.Streams {
		switch v := s.(type) {
		case *model.VideoStream:
			env.Streams = append(env.Streams, cacheStreamEnvelope{
				Kind: "video", Common: v.C,
				Video: &videoFields{
					Width: v.Width, Height: v.Height, FPSNum: v.FPSNum, FPSDen: v.FPSDen,
					SARNum: v.SARNum, SARDen: v.SARDen, PixFmt: v.PixFmt, ColorRange: v.ColorRange,
					ColorTransfer: v.ColorTransfer, ColorPrimaries: v.ColorPrimaries, ColorSpace: v.ColorSpace,
					FieldOrder: v.FieldOrder, BitsPerSample: v.BitsPerSample, Duration: v.DurationSeconds,
					AlphaMode: v.AlphaMode, Title: v.Title,
				},
			})
		case *model.AudioStream:
			env.Streams = append(env.Streams, cacheStreamEnvelope{
				Kind: "audio", Common: v.C,
				Audio: &audioFields{
					Channels: v.Channels, SampleRate: v.SampleRate, ChannelLayout: v.ChannelLayout,
					Title: v.Title, Duration: v.DurationSeconds,
				},
			})
		case *model.SubtitleStream:
			env.Streams = append(env.Streams, cacheStreamEnvelope{
				Kind: "subtitle", Common: v.C,
				Subtitle: &subtitleFields{Title: v.Title},
			})
		case *model.UnrecognizedStream:
			env.Streams = append(env.Streams, cacheStreamEnvelope{
				Kind: "unrecognized", Common: v.C,
				Unrecognized: &unrecognizedFields{CodecType: v.CodecType},
			})
		}
	}
	return env
}

func (env cacheEnvelope) toFileInfo() *model.FileInfo {
	fi := &model.FileInfo{FormatName: env.FormatName, Duration: env.Duration}
	for _, se := range env.Streams {
		switch se.Kind {
		case "video":
			f := se.Video
			fi.Streams = append(fi.Streams, &model.VideoStream{
				C: se.Common, Width: f.Width, Height: f.Height, FPSNum: f.FPSNum, FPSDen: f.FPSDen,
				SARNum: f.SARNum, SARDen: f.SARDen, PixFmt: f.PixFmt, ColorRange: f.ColorRange,
				ColorTransfer: f.ColorTransfer, ColorPrimaries: f.ColorPrimaries, ColorSpace: f.ColorSpace,
				FieldOrder: f.FieldOrder, BitsPerSample: f.BitsPerSample, DurationSeconds: f.Duration,
				AlphaMode: f.AlphaMode, Title: f.Title,
			})
		case "audio":
			f := se.Audio
			fi.Streams = append(fi.Streams, &model.AudioStream{
				C: se.Common, Channels: f.Channels, SampleRate: f.SampleRate,
				ChannelLayout: f.ChannelLayout, Title: f.Title, DurationSeconds: f.Duration,
			})
		case "subtitle":
			fi.Streams = append(fi.Streams, &model.SubtitleStream{C: se.Common, Title: se.Subtitle.Title})
		case "unrecognized":
			fi.Streams = append(fi.Streams, &model.UnrecognizedStream{C: se.Common, CodecType: se.Unrecognized.CodecType})
		}
	}
	return fi
}
