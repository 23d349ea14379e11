package extract

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// HTTPDoer executes raw HTTP requests. *http.Client satisfies this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// VideoClient is the part of *youtube.Client the native backend depends on.
type VideoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

var _ VideoClient = (*youtube.Client)(nil)

// Native extracts metadata in-process with kkdai/youtube and scrapes the
// YouTube results page for search.
type Native struct {
	client    VideoClient
	http      HTTPDoer
	searchURL string
}

// NewNative returns a kkdai/youtube backed Extractor whose HTTP requests are
// retried up to maxRetries times on transient failures.
func NewNative(maxRetries int) *Native {
	httpClient := newHTTPClient(maxRetries)
	return &Native{
		client:    &youtube.Client{HTTPClient: httpClient},
		http:      httpClient,
		searchURL: defaultResultsURL,
	}
}

// Name returns "native".
func (n *Native) Name() string { return "native" }

// Resolve fetches a video with kkdai/youtube and deciphers every format URL
// up front so format selection does not depend on the backend.
func (n *Native) Resolve(ctx context.Context, url string, _ Options) (*VideoInfo, error) {
	video, err := n.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, wrapError(OpResolve, url, err)
	}

	info := &VideoInfo{ID: video.ID}
	if video.Title != "" {
		title := video.Title
		info.Title = &title
	}
	if video.Duration > 0 {
		seconds := video.Duration.Seconds()
		info.Duration = &seconds
	}
	if thumb := bestThumbnailURL(video.Thumbnails); thumb != "" {
		info.Thumbnail = &thumb
	}

	info.Formats = make([]Format, 0, len(video.Formats))
	for i := range video.Formats {
		f := &video.Formats[i]
		acodec, vcodec := codecsFromMimeType(f.MimeType)
		format := Format{ACodec: &acodec, VCodec: &vcodec}
		// Formats whose signature cannot be deciphered keep a nil URL.
		if streamURL, err := n.client.GetStreamURLContext(ctx, video, f); err == nil && streamURL != "" {
			format.URL = &streamURL
		} else if err != nil && ctx.Err() != nil {
			return nil, wrapError(OpResolve, url, ctx.Err())
		}
		info.Formats = append(info.Formats, format)
	}
	return info, nil
}

// codecsFromMimeType maps a YouTube MIME type such as
// `video/mp4; codecs="avc1.64001F, mp4a.40.2"` onto audio and video codec
// names, using "none" for a missing track.
func codecsFromMimeType(mimeType string) (acodec, vcodec string) {
	acodec, vcodec = CodecNone, CodecNone
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return acodec, vcodec
	}
	var codecs []string
	for _, c := range strings.Split(params["codecs"], ",") {
		if c = strings.TrimSpace(c); c != "" {
			codecs = append(codecs, c)
		}
	}

	switch {
	case strings.HasPrefix(mediaType, "audio/"):
		if len(codecs) > 0 {
			acodec = codecs[0]
		}
	case strings.HasPrefix(mediaType, "video/"):
		if len(codecs) > 0 {
			vcodec = codecs[0]
		}
		if len(codecs) > 1 {
			acodec = codecs[1]
		}
	}
	return acodec, vcodec
}

func bestThumbnailURL(thumbnails youtube.Thumbnails) string {
	bestURL := ""
	var bestArea uint
	for _, thumb := range thumbnails {
		area := thumb.Width * thumb.Height
		if area >= bestArea {
			bestArea = area
			bestURL = thumb.URL
		}
	}
	return bestURL
}

var _ Extractor = (*Native)(nil)
