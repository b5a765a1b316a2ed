package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/desertthunder/ytmd/internal/media"
	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/naming"
	"github.com/desertthunder/ytmd/internal/shared"
	"github.com/desertthunder/ytmd/internal/tagging"
)

// DefaultFrameIndex skips frame 0, which is frequently black.
const DefaultFrameIndex = 1

// Processor turns one track record into one tagged audio file.
type Processor interface {
	// Process writes "{stem}.<ext>" and returns its path.
	Process(ctx context.Context, track models.TrackRecord, stem string) (string, error)
}

// TrackProcessor implements [Processor] with a fetcher, an ffmpeg-style extractor and a tag writer.
type TrackProcessor struct {
	fetcher    media.Fetcher
	extractor  media.Extractor
	tagger     tagging.TagWriter
	cover      *media.CoverProcessor
	frameIndex int
	logger     *log.Logger
}

// NewTrackProcessor creates a processor writing tagger.Format() files.
//
// A negative frameIndex falls back to [DefaultFrameIndex]; cover may be nil.
func NewTrackProcessor(fetcher media.Fetcher, extractor media.Extractor, tagger tagging.TagWriter, cover *media.CoverProcessor, frameIndex int, logger *log.Logger) *TrackProcessor {
	if frameIndex < 0 {
		frameIndex = DefaultFrameIndex
	}
	return &TrackProcessor{
		fetcher:    fetcher,
		extractor:  extractor,
		tagger:     tagger,
		cover:      cover,
		frameIndex: frameIndex,
		logger:     logger,
	}
}

// Format is the audio format of produced files.
func (p *TrackProcessor) Format() models.AudioFormat {
	return p.tagger.Format()
}

// Process fetches, extracts, encodes and tags one track at stem.
//
// The finished file only appears under its final name once fully tagged. On failure
// the fetched container is left in place and the error is a [shared.TrackError].
func (p *TrackProcessor) Process(ctx context.Context, track models.TrackRecord, stem string) (string, error) {
	logger := p.logger.With("track_id", track.ID)
	format := p.tagger.Format()

	container, err := p.fetcher.Fetch(ctx, track.ID, stem)
	if err != nil {
		return "", trackError(track, err)
	}
	logger.Debug("fetched container", "path", container.Path)

	c := p.extractor.Open(container)

	cover, err := c.ExtractFrame(ctx, p.frameIndex)
	if err != nil {
		return "", trackError(track, err)
	}

	if p.cover.Enabled() {
		processed, err := p.cover.Process(cover)
		if err != nil {
			logger.Warn("cover post-processing failed, keeping raw frame", "error", err)
		} else {
			cover = processed
		}
	}

	tmp := filepath.Join(filepath.Dir(stem), media.TempPrefix+uuid.NewString()+"."+format.Ext())
	if err := c.ExtractAudio(ctx, format, tmp); err != nil {
		return "", trackError(track, err)
	}

	if err := p.tagger.WriteTags(tmp, track, cover); err != nil {
		os.Remove(tmp)
		return "", trackError(track, err)
	}

	final := naming.Path(stem, format.Ext())
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", trackError(track, fmt.Errorf("failed to move audio into place: %w", err))
	}

	if err := os.Remove(container.Path); err != nil {
		logger.Warn("failed to remove container", "path", container.Path, "error", err)
	}

	logger.Debug("wrote audio", "path", final)
	return final, nil
}

func trackError(track models.TrackRecord, err error) error {
	return &shared.TrackError{TrackID: track.ID, Title: track.Title, Err: err}
}
