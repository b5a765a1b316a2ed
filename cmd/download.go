package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytmd/internal/formatter"
	"github.com/desertthunder/ytmd/internal/media"
	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/repositories"
	"github.com/desertthunder/ytmd/internal/services"
	"github.com/desertthunder/ytmd/internal/shared"
	"github.com/desertthunder/ytmd/internal/tagging"
	"github.com/desertthunder/ytmd/internal/tasks"
	"github.com/desertthunder/ytmd/internal/ui"
)

// DownloadTrack downloads one track. Single tracks never go into album folders.
func (r *Runner) DownloadTrack(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id or URL", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("looking up track", "id", id)
	track, err := services.LookupTrack(ctx, r.youtube(ctx, config), id)
	if err != nil {
		return err
	}

	playlist := &models.PlaylistRecord{ID: track.ID, Title: track.Title, Tracks: []models.TrackRecord{track}}
	return r.download(ctx, config, playlist, false)
}

// DownloadPlaylist downloads every track of a playlist.
func (r *Runner) DownloadPlaylist(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id or URL", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("fetching playlist", "id", id, "limit", config.Download.PlaylistLimit)
	playlist, err := r.youtube(ctx, config).GetPlaylist(ctx, id, config.Download.PlaylistLimit)
	if err != nil {
		return authHint(err)
	}

	if cmd.Bool("dry-run") {
		return r.writePlain("%s", formatter.PlaylistToText(playlist))
	}
	return r.download(ctx, config, playlist, config.Download.AlbumSubfolders)
}

// DownloadLiked downloads the liked songs of the authenticated account.
func (r *Runner) DownloadLiked(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("fetching liked songs", "limit", config.Download.PlaylistLimit)
	playlist, err := r.youtube(ctx, config).GetLikedSongs(ctx, config.Download.PlaylistLimit)
	if err != nil {
		return authHint(err)
	}

	if cmd.Bool("dry-run") {
		return r.writePlain("%s", formatter.PlaylistToText(playlist))
	}
	return r.download(ctx, config, playlist, config.Download.AlbumSubfolders)
}

func authHint(err error) error {
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return fmt.Errorf("%w (run \"ytmd auth --curl '<copied request>'\" to store browser headers)", err)
	}
	return err
}

func (r *Runner) download(ctx context.Context, config *shared.Config, playlist *models.PlaylistRecord, subfolders bool) error {
	iterator, closeFn, err := r.newIterator(config, subfolders)
	if err != nil {
		return err
	}
	defer closeFn()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("%s\n", ui.Progress(update))
		}
	}()

	result, err := iterator.Run(ctx, playlist, progressCh)
	close(progressCh)
	<-done

	if result != nil {
		r.writePlainln("%s", ui.Summary(result))
	}
	return err
}

// newIterator wires the pipeline for config. The returned func releases the ledger database.
func (r *Runner) newIterator(config *shared.Config, subfolders bool) (*tasks.PlaylistIterator, func(), error) {
	format, err := models.ParseAudioFormat(config.Download.AudioFormat)
	if err != nil {
		return nil, nil, err
	}
	tagger, err := tagging.ForFormat(format)
	if err != nil {
		return nil, nil, err
	}

	fetcher := r.fetcher
	if fetcher == nil {
		if fetcher, err = media.NewFetcher(config.Download.Fetcher, config.Tools, r.credentials(config), r.logger); err != nil {
			return nil, nil, err
		}
	}

	extractor := r.extractor
	if extractor == nil {
		extractor = media.NewFFmpeg(config.Tools.FFmpeg, media.ExecRunner)
	}

	cover := media.NewCoverProcessor(config.Cover.Square, config.Cover.MaxSize)
	processor := tasks.NewTrackProcessor(fetcher, extractor, tagger, cover, config.Cover.FrameIndex, r.logger)

	closeFn := func() {}
	var ledger tasks.Ledger
	if config.Database.Enabled {
		db, err := shared.OpenDatabase(config.Database)
		if err != nil {
			r.logger.Warn("download history disabled", "error", err)
		} else {
			ledger = repositories.NewLedger(repositories.NewDownloadRepository(db))
			closeFn = func() { db.Close() }
		}
	}

	iterator := tasks.NewPlaylistIterator(processor, tagger, ledger, tasks.IteratorConfig{
		OutputDir:       shared.ExpandHome(config.Download.OutputDir),
		AlbumSubfolders: subfolders,
		ContinueOnError: config.Download.ContinueOnError,
		Workers:         config.Download.Workers,
	}, r.logger)

	return iterator, closeFn, nil
}
