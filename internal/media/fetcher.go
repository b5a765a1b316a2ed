package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
)

// TempPrefix marks hidden work files in output directories.
const TempPrefix = ".ytmd-"

const watchURL = "https://www.youtube.com/watch?v="

// Fetcher downloads the media container for one track.
type Fetcher interface {
	// Fetch writes the best combined stream for trackID to "{destStem}.<ext>".
	// trackID may be a bare id or a watch URL.
	Fetch(ctx context.Context, trackID, destStem string) (models.IntermediateContainer, error)
}

// NewFetcher builds the backend named by backend ([shared.FetcherYTDLP] or [shared.FetcherNative]).
func NewFetcher(backend string, tools shared.ToolsConfig, creds *shared.Credentials, logger *log.Logger) (Fetcher, error) {
	switch backend {
	case "", shared.FetcherYTDLP:
		return NewYTDLPFetcher(tools.YTDLP, creds, logger), nil
	case shared.FetcherNative:
		return NewNativeFetcher(creds, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown fetcher %q", shared.ErrInvalidConfig, backend)
	}
}

func notFound(trackID string, err error) error {
	return &shared.FetchError{Kind: shared.FetchNotFound, TrackID: trackID, Err: err}
}

func networkFailure(trackID string, err error) error {
	return &shared.FetchError{Kind: shared.FetchNetwork, TrackID: trackID, Err: err}
}

// skippedExts are never taken for a fetched container: partial downloads and finished audio.
var skippedExts = map[string]bool{
	"part": true, "ytdl": true, "tmp": true, "temp": true,
	models.FormatMP3.Ext(): true, models.FormatM4A.Ext(): true,
}

// findContainer returns the newest "{destStem}.<ext>" file, ignoring partial
// downloads, finished audio and hidden work files.
func findContainer(destStem string) (string, error) {
	dir, base := filepath.Split(destStem)
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var (
		found  string
		newest int64
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, TempPrefix) {
			continue
		}
		ext, ok := strings.CutPrefix(name, base+".")
		if !ok || ext == "" || strings.Contains(ext, ".") || skippedExts[strings.ToLower(ext)] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); found == "" || mod > newest {
			found, newest = filepath.Join(dir, name), mod
		}
	}

	if found == "" {
		return "", fmt.Errorf("no container written for %s", destStem)
	}
	return found, nil
}
