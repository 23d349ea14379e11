package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

const (
	defaultResultsURL   = "https://www.youtube.com/results"
	ytInitialDataMarker = "var ytInitialData = "
	videosOnlyFilter    = "EgIQAQ==" // sp= value restricting results to videos
	maxResultsPageBytes = 4 << 20
	browserUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

var errNoInitialData = errors.New("ytInitialData not found in results page")

// Search scrapes the YouTube results page for a "ytsearchN:" target and
// returns up to N video entries in page order.
func (n *Native) Search(ctx context.Context, query string, opts Options) (*SearchResult, error) {
	limit, text := parseSearchTarget(query, opts)

	page, err := n.fetchResultsPage(ctx, text)
	if err != nil {
		return nil, wrapError(OpSearch, query, err)
	}
	data, err := initialData(page)
	if err != nil {
		return nil, wrapError(OpSearch, query, err)
	}
	return &SearchResult{Entries: videoRenderers(data, limit)}, nil
}

func (n *Native) fetchResultsPage(ctx context.Context, text string) ([]byte, error) {
	params := url.Values{}
	params.Set("search_query", text)
	params.Set("sp", videosOnlyFilter)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching results page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results page status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResultsPageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading results page: %w", err)
	}
	return body, nil
}

// initialData cuts the ytInitialData object literal out of a results page.
func initialData(page []byte) ([]byte, error) {
	idx := bytes.Index(page, []byte(ytInitialDataMarker))
	if idx < 0 {
		return nil, errNoInitialData
	}
	obj := objectPrefix(page[idx+len(ytInitialDataMarker):])
	if obj == nil || !gjson.ValidBytes(obj) {
		return nil, errNoInitialData
	}
	return obj, nil
}

// objectPrefix returns the complete JSON object at the start of b by tracking
// brace depth outside string literals.
func objectPrefix(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inString, escaped := false, false
	for i, c := range b {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// videoRenderers walks ytInitialData in document order and converts up to
// limit videoRenderer objects into entries.
func videoRenderers(data []byte, limit int) []*Entry {
	entries := make([]*Entry, 0, limit)
	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		if len(entries) >= limit {
			return
		}
		if v.IsObject() {
			if vr := v.Get("videoRenderer"); vr.IsObject() && vr.Get("videoId").String() != "" {
				entries = append(entries, entryFromRenderer(vr))
				return
			}
		}
		if v.IsObject() || v.IsArray() {
			v.ForEach(func(_, child gjson.Result) bool {
				walk(child)
				return len(entries) < limit
			})
		}
	}
	walk(gjson.ParseBytes(data))
	return entries
}

func entryFromRenderer(vr gjson.Result) *Entry {
	entry := &Entry{ID: vr.Get("videoId").String()}
	if title := vr.Get("title.runs.0.text"); title.Exists() {
		s := title.String()
		entry.Title = &s
	} else if title := vr.Get("title.simpleText"); title.Exists() {
		s := title.String()
		entry.Title = &s
	}
	if owner := vr.Get("ownerText.runs.0.text"); owner.Exists() {
		s := owner.String()
		entry.Channel = &s
	}
	if byline := vr.Get("longBylineText.runs.0.text"); byline.Exists() {
		s := byline.String()
		entry.Uploader = &s
	}
	if seconds, ok := parseClockDuration(vr.Get("lengthText.simpleText").String()); ok {
		entry.Duration = &seconds
	}
	return entry
}
