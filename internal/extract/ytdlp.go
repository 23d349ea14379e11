package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// YTDLP runs the yt-dlp binary through go-ytdlp and decodes its single JSON
// document output.
type YTDLP struct {
	executable string
}

// NewYTDLP returns a yt-dlp backed Extractor. An empty executable uses the
// binary resolved by go-ytdlp (PATH or its install cache).
func NewYTDLP(executable string) *YTDLP {
	return &YTDLP{executable: executable}
}

// InstallYTDLP downloads or locates a yt-dlp binary and returns its path.
func InstallYTDLP(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("install yt-dlp: %w", err)
	}
	return resolved.Executable, nil
}

// Name returns "ytdlp".
func (y *YTDLP) Name() string { return "ytdlp" }

// Search runs a flat yt-dlp search for a "ytsearchN:" target.
func (y *YTDLP) Search(ctx context.Context, query string, opts Options) (*SearchResult, error) {
	out, err := y.run(ctx, OpSearch, query, opts)
	if err != nil {
		return nil, err
	}
	return decodeSearchResult(out)
}

// Resolve dumps the metadata and formats of a single video URL.
func (y *YTDLP) Resolve(ctx context.Context, url string, opts Options) (*VideoInfo, error) {
	out, err := y.run(ctx, OpResolve, url, opts)
	if err != nil {
		return nil, err
	}
	return decodeVideoInfo(out)
}

func (y *YTDLP) command(opts Options) *ytdlp.Command {
	cmd := ytdlp.New().DumpSingleJSON().SkipDownload()
	if y.executable != "" {
		cmd = cmd.SetExecutable(y.executable)
	}
	if opts.Quiet {
		cmd = cmd.Quiet()
	}
	if opts.NoWarnings {
		cmd = cmd.NoWarnings()
	}
	if opts.ExtractFlat {
		cmd = cmd.FlatPlaylist()
	}
	if opts.DefaultSearch != "" {
		cmd = cmd.DefaultSearch(opts.DefaultSearch)
	}
	if opts.Format != "" {
		cmd = cmd.Format(opts.Format)
	}
	return cmd
}

// run executes yt-dlp. Only a process that ran and exited non-zero is an
// extraction failure; a missing or misconfigured binary is not.
func (y *YTDLP) run(ctx context.Context, op, target string, opts Options) ([]byte, error) {
	res, err := y.command(opts).Run(ctx, target)
	if err != nil {
		if _, ok := ytdlp.IsExitCodeError(err); ok && res != nil && res.ExitCode > 0 {
			if msg := lastErrorLine(res.Stderr); msg != "" {
				err = errors.New(msg)
			}
			return nil, wrapError(op, target, err)
		}
		return nil, fmt.Errorf("run yt-dlp: %w", err)
	}
	return []byte(res.Stdout), nil
}

// lastErrorLine picks the final "ERROR:" line yt-dlp printed, which carries
// the human readable reason (e.g. "Video unavailable").
func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}
	return ""
}

func decodeSearchResult(data []byte) (*SearchResult, error) {
	var result SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode yt-dlp search output: %w", err)
	}
	return &result, nil
}

func decodeVideoInfo(data []byte) (*VideoInfo, error) {
	var info VideoInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp video output: %w", err)
	}
	return &info, nil
}

var _ Extractor = (*YTDLP)(nil)
