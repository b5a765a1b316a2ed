package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/naming"
	"github.com/desertthunder/ytmd/internal/shared"
	"github.com/desertthunder/ytmd/internal/tagging"
)

// Ledger remembers finished downloads across runs.
type Ledger interface {
	// Completed returns the path of a previous download of trackID that still exists.
	// Hits outside the current output directory or format are ignored.
	Completed(trackID string) (string, bool)
	// Record stores a finished download.
	Record(track models.TrackRecord, path string, format models.AudioFormat) error
}

// IteratorConfig controls layout and failure handling of a run.
type IteratorConfig struct {
	OutputDir       string
	AlbumSubfolders bool
	ContinueOnError bool
	Workers         int
}

// TrackFailure pairs a record with the error that stopped it.
type TrackFailure struct {
	Track models.TrackRecord
	Err   error
}

// RunResult summarises a [PlaylistIterator.Run].
type RunResult struct {
	Playlist  string
	Total     int
	Processed int
	Skipped   int
	Failed    int
	Files     []string
	Failures  []TrackFailure
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFailed
)

// PlaylistIterator feeds playlist records to a [Processor].
type PlaylistIterator struct {
	processor Processor
	tagger    tagging.TagWriter
	ledger    Ledger
	reserver  *naming.Reserver
	cfg       IteratorConfig
	logger    *log.Logger
}

// NewPlaylistIterator creates an iterator; ledger may be nil.
//
// tagger decides the output extension and reads embedded source ids of existing files.
func NewPlaylistIterator(processor Processor, tagger tagging.TagWriter, ledger Ledger, cfg IteratorConfig, logger *log.Logger) *PlaylistIterator {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &PlaylistIterator{
		processor: processor,
		tagger:    tagger,
		ledger:    ledger,
		reserver:  naming.NewReserver(),
		cfg:       cfg,
		logger:    logger,
	}
}

// Run processes every record of playlist.
//
// Without ContinueOnError the first failure stops the run and is returned; tracks already
// in flight finish first. The result is always returned, also alongside an error.
func (it *PlaylistIterator) Run(ctx context.Context, playlist *models.PlaylistRecord, progress chan<- ProgressUpdate) (*RunResult, error) {
	if playlist == nil {
		return nil, fmt.Errorf("%w: nil playlist", shared.ErrInvalidArgument)
	}

	total := len(playlist.Tracks)
	result := &RunResult{Playlist: playlist.Title, Total: total}
	sendProgress(progress, startRunUpdate(playlist))
	it.logger.Info("starting run", "playlist", playlist.Title, "tracks", total, "workers", it.cfg.Workers)

	var mu sync.Mutex
	ids := newClaims()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(it.cfg.Workers)

	for i, track := range playlist.Tracks {
		if gctx.Err() != nil {
			break
		}
		step := i + 1

		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			path, res, err := it.runTrack(gctx, step, total, track, ids, progress)
			if err != nil && gctx.Err() != nil && errors.Is(err, gctx.Err()) {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			switch res {
			case outcomeProcessed:
				result.Processed++
				result.Files = append(result.Files, path)
			case outcomeSkipped:
				result.Skipped++
			case outcomeFailed:
				result.Failed++
				result.Failures = append(result.Failures, TrackFailure{Track: track, Err: err})
				if !it.cfg.ContinueOnError {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	sendProgress(progress, finishRunUpdate(result))
	it.logger.Info("run finished", "processed", result.Processed, "skipped", result.Skipped, "failed", result.Failed)
	return result, err
}

func (it *PlaylistIterator) runTrack(ctx context.Context, step, total int, track models.TrackRecord, ids *claims, progress chan<- ProgressUpdate) (string, outcome, error) {
	logger := it.logger.With("track_id", track.ID)

	if track.ID == "" {
		logger.Warn("skipping track without video id", "title", track.Title)
		sendProgress(progress, skipTrackUpdate(step, total, track, "unavailable"))
		return "", outcomeSkipped, nil
	}

	if !ids.claim(track.ID) {
		logger.Info("duplicate track in playlist", "title", track.Title)
		sendProgress(progress, skipTrackUpdate(step, total, track, "duplicate"))
		return "", outcomeSkipped, nil
	}

	stem := it.Stem(track)
	ext := it.tagger.Format().Ext()

	if path, ok := it.alreadyDownloaded(track.ID, stem, ext); ok {
		logger.Info("already downloaded", "path", path)
		sendProgress(progress, skipTrackUpdate(step, total, track, "already downloaded"))
		return path, outcomeSkipped, nil
	}

	if err := os.MkdirAll(filepath.Dir(stem), 0755); err != nil {
		err = trackError(track, fmt.Errorf("failed to create output directory: %w", err))
		sendProgress(progress, trackFailedUpdate(step, total, track, err))
		return "", outcomeFailed, err
	}

	reserved := it.reserver.Reserve(stem, ext)
	defer it.reserver.Release(reserved, ext)

	logger.Info("processing", "title", track.Title, "stem", reserved)
	sendProgress(progress, processTrackUpdate(step, total, track))

	path, err := it.processor.Process(ctx, track, reserved)
	if err != nil {
		if ctx.Err() != nil {
			return "", outcomeFailed, ctx.Err()
		}
		logger.Error("track failed", "error", err)
		sendProgress(progress, trackFailedUpdate(step, total, track, err))
		return "", outcomeFailed, err
	}

	if it.ledger != nil {
		if err := it.ledger.Record(track, path, it.tagger.Format()); err != nil {
			logger.Warn("failed to record download", "error", err)
		}
	}

	logger.Info("done", "path", path)
	sendProgress(progress, trackDoneUpdate(step, total, track, path))
	return path, outcomeProcessed, nil
}

// Stem returns the output path of track without extension, before collision handling.
//
// A title that sanitizes to nothing usable falls back to the track id.
func (it *PlaylistIterator) Stem(track models.TrackRecord) string {
	name := naming.Sanitize(track.Title)
	if !naming.IsUsable(name) {
		name = naming.Sanitize(track.ID)
	}

	dir := it.cfg.OutputDir
	if it.cfg.AlbumSubfolders && track.AlbumName() != "" {
		if album := naming.Sanitize(track.AlbumName()); naming.IsUsable(album) {
			dir = filepath.Join(dir, album)
		}
	}
	return filepath.Join(dir, name)
}

func (it *PlaylistIterator) alreadyDownloaded(trackID, stem, ext string) (string, bool) {
	for _, candidate := range naming.Occupied(stem, ext) {
		path := naming.Path(candidate, ext)
		if id, err := it.tagger.TrackID(path); err == nil && id == trackID {
			return path, true
		}
	}

	if it.ledger == nil {
		return "", false
	}
	path, ok := it.ledger.Completed(trackID)
	if !ok || !inLayout(path, stem, ext) {
		return "", false
	}
	return path, true
}

// inLayout reports whether a recorded path belongs to the current run's layout:
// same directory as stem and same audio extension.
func inLayout(path, stem, ext string) bool {
	return filepath.Clean(filepath.Dir(path)) == filepath.Clean(filepath.Dir(stem)) &&
		strings.EqualFold(filepath.Ext(path), "."+ext)
}

// claims tracks the video ids started during one run.
type claims struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newClaims() *claims {
	return &claims{ids: make(map[string]struct{})}
}

// claim returns false if id was already claimed.
func (c *claims) claim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[id]; ok {
		return false
	}
	c.ids[id] = struct{}{}
	return true
}
