package web

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lvcoi/tubestream/internal/extract"
	"github.com/lvcoi/tubestream/internal/metrics"
)

const (
	msgNoQuery        = "No query provided"
	msgInvalidVideoID = "Invalid video ID"
	msgSearchFailed   = "Error during search"
	msgStreamFailed   = "Error fetching video info"
	msgUnexpected     = "Unexpected error"
	msgNoAudioURL     = "Could not extract audio URL"
)

var errNoMetadata = errors.New("extractor returned no metadata")

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(s.assets, "index.html")
	if err != nil {
		http.Error(w, "missing index", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.opts.ServiceName,
		"backend": s.extractor.Name(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		log := s.requestLog(r)
		log.Debug().Msg("search rejected: empty query")
		writeJSONError(w, http.StatusBadRequest, msgNoQuery)
		return
	}

	log := s.requestLog(r).With().Str("query", query).Logger()
	log.Info().Msg("searching")

	opts := extract.SearchOptions()
	result, err := s.search(r.Context(), extract.SearchTarget(opts, query), opts)
	if err != nil {
		s.writeFailure(w, log, err, msgSearchFailed)
		return
	}

	items := searchItems(result)
	log.Debug().Int("results", len(items)).Msg("search complete")
	writeJSON(w, http.StatusOK, searchResponse{Results: items})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if !extract.ValidVideoID(videoID) {
		log := s.requestLog(r)
		log.Debug().Str("video_id", videoID).Msg("stream rejected: invalid video id")
		writeJSONError(w, http.StatusBadRequest, msgInvalidVideoID)
		return
	}

	log := s.requestLog(r).With().Str("video_id", videoID).Logger()
	log.Info().Msg("extracting video info")

	info, audioURL, err := s.resolveAudio(r.Context(), videoID)
	switch {
	case errors.Is(err, errNoAudioURL):
		log.Error().Int("formats", len(info.Formats)).Msg("could not extract audio URL")
		writeJSONError(w, http.StatusInternalServerError, msgNoAudioURL)
		return
	case err != nil:
		s.writeFailure(w, log, err, msgStreamFailed)
		return
	}

	writeJSON(w, http.StatusOK, newStreamInfo(videoID, info, audioURL))
}

func (s *Server) search(ctx context.Context, target string, opts extract.Options) (*extract.SearchResult, error) {
	start := time.Now()
	result, err := s.extractor.Search(ctx, target, opts)
	s.observe(extract.OpSearch, start, err)
	return result, err
}

// resolveAudio fetches video metadata and picks the playable URL. A video
// without one is recorded as a failed extraction.
func (s *Server) resolveAudio(ctx context.Context, videoID string) (*extract.VideoInfo, string, error) {
	start := time.Now()
	info, err := s.extractor.Resolve(ctx, extract.WatchURL(videoID), extract.StreamOptions())
	if err == nil && info == nil {
		err = errNoMetadata
	}
	var audioURL string
	if err == nil {
		audioURL, err = SelectAudioURL(info.Formats)
	}
	s.observe(extract.OpResolve, start, err)
	return info, audioURL, err
}

func (s *Server) observe(op string, start time.Time, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case extract.IsExtractionError(err):
		outcome = metrics.OutcomeExtraction
	default:
		outcome = metrics.OutcomeUnexpected
	}
	metrics.RecordExtraction(op, s.extractor.Name(), outcome, time.Since(start).Seconds())
}

// writeFailure maps an adapter failure onto the two 500 response shapes:
// extraction errors carry the operation specific message, everything else is
// reported as unexpected.
func (s *Server) writeFailure(w http.ResponseWriter, log zerolog.Logger, err error, extractionMsg string) {
	if extract.IsExtractionError(err) {
		log.Error().Err(err).Str("backend", s.extractor.Name()).Msg(extractionMsg)
		writeJSONErrorDetails(w, http.StatusInternalServerError, extractionMsg, err.Error())
		return
	}
	log.Error().Err(err).Str("backend", s.extractor.Name()).Msg("unexpected error")
	writeJSONErrorDetails(w, http.StatusInternalServerError, msgUnexpected, err.Error())
}

func (s *Server) requestLog(r *http.Request) zerolog.Logger {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return s.log.With().Str("request_id", id).Logger()
	}
	return s.log
}
