package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lrstanley/go-ytdlp"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
)

// notFoundMarkers are yt-dlp messages meaning the id does not resolve to a playable video.
var notFoundMarkers = []string{
	"Video unavailable",
	"is not a valid URL",
	"Incomplete YouTube ID",
	"This video is not available",
	"Private video",
	"HTTP Error 404",
	"does not exist",
}

// YTDLPFetcher downloads with the yt-dlp binary.
type YTDLPFetcher struct {
	executable string
	headers    http.Header
	logger     *log.Logger
}

// NewYTDLPFetcher creates a fetcher using the yt-dlp at executable ("" uses yt-dlp from PATH).
func NewYTDLPFetcher(executable string, creds *shared.Credentials, logger *log.Logger) *YTDLPFetcher {
	return &YTDLPFetcher{executable: executable, headers: creds.Header(), logger: logger}
}

func (f *YTDLPFetcher) command(destStem string) *ytdlp.Command {
	dl := ytdlp.New().
		Format("best").
		Output(destStem + ".%(ext)s").
		ForceOverwrites().
		NoPlaylist()

	if f.executable != "" {
		dl.SetExecutable(f.executable)
	}
	for key, values := range f.headers {
		for _, v := range values {
			dl.AddHeaders(key + ":" + v)
		}
	}
	return dl
}

func (f *YTDLPFetcher) Fetch(ctx context.Context, trackID, destStem string) (models.IntermediateContainer, error) {
	id := models.NormalizeTrackID(trackID)
	if id == "" {
		return models.IntermediateContainer{}, notFound(trackID, fmt.Errorf("empty video id"))
	}

	if err := os.MkdirAll(filepath.Dir(destStem), 0755); err != nil {
		return models.IntermediateContainer{}, networkFailure(id, fmt.Errorf("create directory: %w", err))
	}

	f.logger.Debug("yt-dlp download", "id", id, "dest", destStem)
	res, err := f.command(destStem).Run(ctx, watchURL+id)
	if err != nil {
		var stderr string
		if res != nil {
			stderr = res.Stderr
		}
		return models.IntermediateContainer{}, classifyYTDLPError(ctx, id, err, stderr)
	}

	path, err := findContainer(destStem)
	if err != nil {
		return models.IntermediateContainer{}, networkFailure(id, err)
	}
	return models.IntermediateContainer{Path: path}, nil
}

func classifyYTDLPError(ctx context.Context, id string, err error, stderr string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return networkFailure(id, errors.Join(ctxErr, err))
	}

	msg := err.Error() + "\n" + stderr
	for _, marker := range notFoundMarkers {
		if strings.Contains(msg, marker) {
			return notFound(id, fmt.Errorf("yt-dlp: %s", firstErrorLine(msg)))
		}
	}
	return networkFailure(id, fmt.Errorf("yt-dlp: %w", err))
}

// firstErrorLine picks the first "ERROR:" line yt-dlp printed, else the first line.
func firstErrorLine(msg string) string {
	lines := strings.Split(strings.TrimSpace(msg), "\n")
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "ERROR:") {
			return strings.TrimSpace(line)
		}
	}
	return strings.TrimSpace(lines[0])
}
