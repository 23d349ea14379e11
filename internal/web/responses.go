package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lvcoi/tubestream/internal/extract"
)

const (
	defaultSearchTitle = "Unknown Title"
	defaultStreamTitle = "Unknown"
	defaultChannel     = "Unknown"
)

// errNoAudioURL belongs to the extraction tier but gets its own response body.
var errNoAudioURL error = &extract.Error{Op: extract.OpResolve, Err: errors.New("no playable format URL")}

// SearchResultItem is one entry of a /search response.
type SearchResultItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
	Channel   string  `json:"channel"`
}

type searchResponse struct {
	Results []SearchResultItem `json:"results"`
}

// StreamInfo is the /stream response.
type StreamInfo struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Thumbnail string  `json:"thumbnail"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type errorDetailsResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// searchItems converts adapter entries, skipping null ones. The result is
// never nil so it encodes as [].
func searchItems(result *extract.SearchResult) []SearchResultItem {
	items := []SearchResultItem{}
	if result == nil {
		return items
	}
	for _, entry := range result.Entries {
		if entry == nil {
			continue
		}
		items = append(items, newSearchResultItem(entry))
	}
	return items
}

func newSearchResultItem(e *extract.Entry) SearchResultItem {
	item := SearchResultItem{
		ID:        e.ID,
		Title:     defaultSearchTitle,
		Thumbnail: extract.ThumbnailURL(e.ID),
		Channel:   defaultChannel,
	}
	if e.Title != nil {
		item.Title = *e.Title
	}
	if e.Duration != nil {
		item.Duration = *e.Duration
	}
	switch {
	case e.Channel != nil:
		item.Channel = *e.Channel
	case e.Uploader != nil:
		item.Channel = *e.Uploader
	}
	return item
}

func newStreamInfo(videoID string, info *extract.VideoInfo, audioURL string) StreamInfo {
	out := StreamInfo{
		URL:       audioURL,
		Title:     defaultStreamTitle,
		Thumbnail: extract.ThumbnailURL(videoID),
	}
	if info.Title != nil {
		out.Title = *info.Title
	}
	if info.Duration != nil {
		out.Duration = *info.Duration
	}
	if info.Thumbnail != nil {
		out.Thumbnail = *info.Thumbnail
	}
	return out
}

// SelectAudioURL picks the stream URL to play: the first audio-only format
// in adapter order, else the last format of any kind. It fails when there
// are no formats or the chosen one has no URL.
func SelectAudioURL(formats []extract.Format) (string, error) {
	var chosen *extract.Format
	for i := range formats {
		if audioOnly(formats[i]) {
			chosen = &formats[i]
			break
		}
	}
	if chosen == nil && len(formats) > 0 {
		chosen = &formats[len(formats)-1]
	}
	if chosen == nil || chosen.URL == nil || *chosen.URL == "" {
		return "", errNoAudioURL
	}
	return *chosen.URL, nil
}

// audioOnly treats a missing acodec as present and a missing vcodec as not
// "none".
func audioOnly(f extract.Format) bool {
	hasAudio := f.ACodec == nil || *f.ACodec != extract.CodecNone
	noVideo := f.VCodec != nil && *f.VCodec == extract.CodecNone
	return hasAudio && noVideo
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSONErrorDetails(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorDetailsResponse{Error: message, Details: details})
}
