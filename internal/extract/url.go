package extract

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	watchURLPrefix   = "https://www.youtube.com/watch?v="
	thumbnailURLBase = "https://img.youtube.com/vi/"

	// maxSearchResults bounds "ytsearchall:" since only the first results page is read.
	maxSearchResults = 50
)

var (
	videoIDRegex      = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	searchTargetRegex = regexp.MustCompile(`^ytsearch(\d*|all):`)
)

// ValidVideoID reports whether id is an 11 character YouTube video id.
func ValidVideoID(id string) bool {
	return videoIDRegex.MatchString(id)
}

// WatchURL returns the canonical watch URL for a video id.
func WatchURL(id string) string {
	return watchURLPrefix + id
}

// ThumbnailURL returns the medium quality thumbnail URL for a video id.
func ThumbnailURL(id string) string {
	return thumbnailURLBase + id + "/mqdefault.jpg"
}

// SearchTarget builds the search-engine style target passed to Search, e.g.
// "ytsearch10:lofi beats".
func SearchTarget(opts Options, query string) string {
	provider := opts.DefaultSearch
	if provider == "" {
		provider = searchProvider
	}
	return provider + ":" + query
}

// parseSearchTarget splits "ytsearchN:text" into N and text. Targets without a
// prefix fall back to the default search provider in opts.
func parseSearchTarget(target string, opts Options) (int, string) {
	if m := searchTargetRegex.FindStringSubmatch(target); m != nil {
		return searchCount(m[1]), target[len(m[0]):]
	}
	if m := searchTargetRegex.FindStringSubmatch(opts.DefaultSearch + ":"); m != nil {
		return searchCount(m[1]), target
	}
	return 1, target
}

func searchCount(raw string) int {
	switch raw {
	case "":
		return 1
	case "all":
		return maxSearchResults
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 1
	}
	if n > maxSearchResults {
		return maxSearchResults
	}
	return n
}

// parseClockDuration converts "1:02:03" or "4:05" into seconds.
func parseClockDuration(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	total := 0
	for _, part := range strings.Split(raw, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return float64(total), true
}
