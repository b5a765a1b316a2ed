package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kkdai/youtube/v2"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
)

// NativeFetcher downloads streams directly with kkdai/youtube, no external binary needed.
type NativeFetcher struct {
	client *youtube.Client
	logger *log.Logger
}

// NewNativeFetcher creates a fetcher whose requests carry the credential headers.
func NewNativeFetcher(creds *shared.Credentials, logger *log.Logger) *NativeFetcher {
	httpClient := &http.Client{
		Transport: &headerTransport{base: http.DefaultTransport, headers: creds.Header()},
	}
	return &NativeFetcher{client: &youtube.Client{HTTPClient: httpClient}, logger: logger}
}

func (f *NativeFetcher) Fetch(ctx context.Context, trackID, destStem string) (models.IntermediateContainer, error) {
	id := models.NormalizeTrackID(trackID)
	if id == "" {
		return models.IntermediateContainer{}, notFound(trackID, fmt.Errorf("empty video id"))
	}

	video, err := f.client.GetVideoContext(ctx, id)
	if err != nil {
		return models.IntermediateContainer{}, classifyYouTubeError(id, err)
	}

	format := bestCombinedFormat(video.Formats)
	if format == nil {
		return models.IntermediateContainer{}, notFound(id, fmt.Errorf("no combined audio and video format"))
	}

	f.logger.Debug("native download", "id", id, "mime", format.MimeType, "bitrate", format.Bitrate)

	stream, _, err := f.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return models.IntermediateContainer{}, classifyYouTubeError(id, err)
	}
	defer stream.Close()

	path := destStem + "." + extFromMime(format.MimeType)
	if err := writeStream(path, stream); err != nil {
		return models.IntermediateContainer{}, networkFailure(id, err)
	}
	return models.IntermediateContainer{Path: path}, nil
}

// writeStream copies r to path; a partial file is left behind on error.
func writeStream(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("download stream: %w", err)
	}
	return out.Close()
}

// bestCombinedFormat returns the highest-bitrate format carrying both audio and video.
func bestCombinedFormat(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels == 0 || f.Width == 0 {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}

// extFromMime maps a stream MIME type such as `video/mp4; codecs="avc1"` to a file extension.
func extFromMime(mimeType string) string {
	media, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		media = strings.TrimSpace(strings.Split(mimeType, ";")[0])
	}
	_, sub, _ := strings.Cut(media, "/")
	switch sub {
	case "":
		return "bin"
	case "3gpp":
		return "3gp"
	case "x-matroska":
		return "mkv"
	default:
		return sub
	}
}

func classifyYouTubeError(id string, err error) error {
	switch {
	case errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrLoginRequired),
		errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return notFound(id, err)
	}

	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return notFound(id, err)
	}
	return networkFailure(id, err)
}

// headerTransport adds fixed headers to requests that do not already set them.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for key, values := range t.headers {
		if req.Header.Get(key) != "" {
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return t.base.RoundTrip(req)
}
