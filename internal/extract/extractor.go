package extract

import (
	"context"
)

// Extractor resolves search queries and video URLs into structured metadata.
// Implementations wrap a third-party extraction library; callers never see
// library types.
type Extractor interface {
	// Search runs a search target such as "ytsearch10:lofi beats" and returns
	// lightweight entries in library order.
	Search(ctx context.Context, query string, opts Options) (*SearchResult, error)
	// Resolve fetches full metadata, including formats, for a single video URL.
	Resolve(ctx context.Context, url string, opts Options) (*VideoInfo, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}

// Options is the per-call extraction configuration.
type Options struct {
	Quiet         bool
	NoWarnings    bool
	ExtractFlat   bool
	DefaultSearch string
	Format        string
}

const (
	searchProvider = "ytsearch10"
	audioFormat    = "bestaudio/best"
)

// SearchOptions returns the configuration used for keyword search: flat
// extraction of up to 10 results.
func SearchOptions() Options {
	return Options{
		Quiet:         true,
		NoWarnings:    true,
		ExtractFlat:   true,
		DefaultSearch: searchProvider,
	}
}

// StreamOptions returns the configuration used for stream resolution:
// best audio, else best overall.
func StreamOptions() Options {
	return Options{
		Quiet:      true,
		NoWarnings: true,
		Format:     audioFormat,
	}
}

// SearchResult is the flat result of a search. Nil elements stand for null
// entries reported by the library.
type SearchResult struct {
	Entries []*Entry `json:"entries"`
}

// Entry is one flat search entry. Optional fields are nil when the library
// did not report them.
type Entry struct {
	ID       string   `json:"id"`
	Title    *string  `json:"title"`
	Duration *float64 `json:"duration"`
	Channel  *string  `json:"channel"`
	Uploader *string  `json:"uploader"`
}

// VideoInfo is the full metadata of a single video.
type VideoInfo struct {
	ID        string   `json:"id"`
	Title     *string  `json:"title"`
	Duration  *float64 `json:"duration"`
	Thumbnail *string  `json:"thumbnail"`
	Formats   []Format `json:"formats"`
}

// Format is one media variant. A codec value of "none" means the stream does
// not carry that track.
type Format struct {
	ACodec *string `json:"acodec"`
	VCodec *string `json:"vcodec"`
	URL    *string `json:"url"`
}

// CodecNone marks an absent audio or video track.
const CodecNone = "none"
