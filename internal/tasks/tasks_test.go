package tasks

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
	"github.com/desertthunder/ytmd/internal/tagging"
	tu "github.com/desertthunder/ytmd/internal/testing"
)

func testLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

type failingTagger struct {
	tagging.TagWriter
}

func (f failingTagger) WriteTags(path string, track models.TrackRecord, cover models.CoverImage) error {
	return &shared.TagError{Kind: shared.TagWriteFailure, Path: path, Err: errors.New("disk full")}
}

type memoryLedger struct {
	mu      sync.Mutex
	paths   map[string]string
	records []string
}

func (l *memoryLedger) Completed(trackID string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.paths[trackID]
	return p, ok
}

func (l *memoryLedger) Record(track models.TrackRecord, path string, format models.AudioFormat) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, track.ID+"="+filepath.Base(path))
	return nil
}

type pipeline struct {
	fetcher   *tu.FakeFetcher
	extractor *tu.FakeExtractor
	processor *TrackProcessor
}

func newPipeline(tagger tagging.TagWriter) *pipeline {
	p := &pipeline{fetcher: &tu.FakeFetcher{}, extractor: &tu.FakeExtractor{}}
	p.processor = NewTrackProcessor(p.fetcher, p.extractor, tagger, nil, DefaultFrameIndex, testLogger())
	return p
}

var testTrack = models.TrackRecord{
	ID:      "abc123",
	Title:   "Test Track",
	Artists: []models.Artist{{Name: "A"}, {Name: "B"}},
	Album:   &models.Album{Name: "My Album"},
}

func TestTrackProcessor(t *testing.T) {
	t.Run("writes a tagged file and removes the container", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())

		path, err := p.processor.Process(context.Background(), testTrack, filepath.Join(dir, "Test Track"))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}

		if path != filepath.Join(dir, "Test Track.mp3") {
			t.Errorf("unexpected path %s", path)
		}
		if files := tu.ListFiles(t, dir); !slices.Equal(files, []string{"Test Track.mp3"}) {
			t.Errorf("expected only the audio file, got %v", files)
		}

		id, err := tagging.NewID3Writer().TrackID(path)
		if err != nil || id != "abc123" {
			t.Errorf("TrackID() = %q, %v", id, err)
		}
		if got := p.extractor.FrameIndexes(); !slices.Equal(got, []int{1}) {
			t.Errorf("expected frame 1 to be extracted, got %v", got)
		}
	})

	t.Run("negative frame index uses default", func(t *testing.T) {
		p := NewTrackProcessor(&tu.FakeFetcher{}, &tu.FakeExtractor{}, tagging.NewID3Writer(), nil, -1, testLogger())
		if p.frameIndex != DefaultFrameIndex {
			t.Errorf("expected frame index %d, got %d", DefaultFrameIndex, p.frameIndex)
		}
		if p.Format() != models.FormatMP3 {
			t.Errorf("expected mp3, got %s", p.Format())
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		p.fetcher.Fail = map[string]error{
			"abc123": &shared.FetchError{Kind: shared.FetchNotFound, TrackID: "abc123", Err: errors.New("video unavailable")},
		}

		_, err := p.processor.Process(context.Background(), testTrack, filepath.Join(dir, "Test Track"))

		var trackErr *shared.TrackError
		if !errors.As(err, &trackErr) {
			t.Fatalf("expected TrackError, got %v", err)
		}
		if trackErr.TrackID != "abc123" || trackErr.Title != "Test Track" {
			t.Errorf("unexpected track error %+v", trackErr)
		}
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("encode failure keeps the container", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		p.extractor.AudioErr = &shared.ExtractionError{Kind: shared.ExtractEncodeFailure, Err: errors.New("boom")}

		_, err := p.processor.Process(context.Background(), testTrack, filepath.Join(dir, "Test Track"))
		if !errors.Is(err, shared.ErrEncodeFailure) {
			t.Fatalf("expected ErrEncodeFailure, got %v", err)
		}

		if files := tu.ListFiles(t, dir); !slices.Equal(files, []string{"Test Track.webm"}) {
			t.Errorf("expected only the container, got %v", files)
		}
	})

	t.Run("bad container on frame extraction", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		p.extractor.FrameErr = &shared.ExtractionError{Kind: shared.ExtractBadContainer, Err: errors.New("invalid data")}

		_, err := p.processor.Process(context.Background(), testTrack, filepath.Join(dir, "Test Track"))
		if !errors.Is(err, shared.ErrBadContainer) {
			t.Fatalf("expected ErrBadContainer, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "Test Track.webm"))
	})

	t.Run("tag failure removes temporary audio", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(failingTagger{tagging.NewID3Writer()})

		_, err := p.processor.Process(context.Background(), testTrack, filepath.Join(dir, "Test Track"))
		if !errors.Is(err, shared.ErrTagWrite) {
			t.Fatalf("expected ErrTagWrite, got %v", err)
		}

		if files := tu.ListFiles(t, dir); !slices.Equal(files, []string{"Test Track.webm"}) {
			t.Errorf("expected only the container, got %v", files)
		}
	})
}

func newIterator(p *pipeline, ledger Ledger, cfg IteratorConfig) *PlaylistIterator {
	return NewPlaylistIterator(p.processor, tagging.NewID3Writer(), ledger, cfg, testLogger())
}

func TestPlaylistIterator(t *testing.T) {
	t.Run("flat layout", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir})

		result, err := it.Run(context.Background(), &models.PlaylistRecord{Title: "P", Tracks: []models.TrackRecord{testTrack}}, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if result.Processed != 1 || result.Skipped != 0 || result.Failed != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		if files := tu.ListFiles(t, dir); !slices.Equal(files, []string{"Test Track.mp3"}) {
			t.Errorf("expected flat layout, got %v", files)
		}
	})

	t.Run("album subfolder", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir, AlbumSubfolders: true})

		if _, err := it.Run(context.Background(), &models.PlaylistRecord{Tracks: []models.TrackRecord{testTrack}}, nil); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		tu.AssertDirExists(t, filepath.Join(dir, "My Album"))
		tu.AssertFileExists(t, filepath.Join(dir, "My Album", "Test Track.mp3"))
	})

	t.Run("album subfolder without album", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir, AlbumSubfolders: true})

		track := testTrack
		track.Album = nil
		if _, err := it.Run(context.Background(), &models.PlaylistRecord{Tracks: []models.TrackRecord{track}}, nil); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "Test Track.mp3"))
	})

	t.Run("collision keeps the existing file", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, "Test Track.mp3")
		if err := os.WriteFile(existing, []byte("someone else's song"), 0644); err != nil {
			t.Fatal(err)
		}

		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir})

		result, err := it.Run(context.Background(), &models.PlaylistRecord{Tracks: []models.TrackRecord{testTrack}}, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "Test Track 1.mp3"))
		if got := tu.MustReadFile(t, existing); got != "someone else's song" {
			t.Errorf("existing file was modified: %q", got)
		}
		if result.Files[0] != filepath.Join(dir, "Test Track 1.mp3") {
			t.Errorf("unexpected files %v", result.Files)
		}
	})

	t.Run("second run skips everything", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir})

		playlist := &models.PlaylistRecord{Tracks: []models.TrackRecord{
			testTrack,
			{ID: "def456", Title: "Test Track"},
			{ID: "ghi789", Title: "Other"},
		}}

		first, err := it.Run(context.Background(), playlist, nil)
		if err != nil {
			t.Fatalf("first Run() error = %v", err)
		}
		if first.Processed != 3 {
			t.Fatalf("expected 3 processed, got %+v", first)
		}
		before := tu.ListFiles(t, dir)

		second, err := it.Run(context.Background(), playlist, nil)
		if err != nil {
			t.Fatalf("second Run() error = %v", err)
		}
		if second.Processed != 0 || second.Skipped != 3 {
			t.Errorf("expected everything skipped, got %+v", second)
		}
		if after := tu.ListFiles(t, dir); !slices.Equal(before, after) {
			t.Errorf("second run changed files: %v -> %v", before, after)
		}
		if n := len(p.fetcher.Fetched()); n != 3 {
			t.Errorf("expected 3 fetches in total, got %d", n)
		}
	})

	t.Run("skips records without id", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir})

		result, err := it.Run(context.Background(), &models.PlaylistRecord{Tracks: []models.TrackRecord{{Title: "Gone"}, testTrack}}, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Skipped != 1 || result.Processed != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if slices.Contains(p.fetcher.Fetched(), "") {
			t.Error("empty id must never be fetched")
		}
	})

	t.Run("aborts on first failure by default", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		p.fetcher.Fail = map[string]error{
			"two": &shared.FetchError{Kind: shared.FetchNetwork, TrackID: "two", Err: errors.New("reset")},
		}
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir})

		playlist := &models.PlaylistRecord{Tracks: []models.TrackRecord{
			{ID: "one", Title: "One"}, {ID: "two", Title: "Two"}, {ID: "three", Title: "Three"},
		}}
		result, err := it.Run(context.Background(), playlist, nil)

		var trackErr *shared.TrackError
		if !errors.As(err, &trackErr) || trackErr.TrackID != "two" {
			t.Fatalf("expected TrackError for two, got %v", err)
		}
		if !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork, got %v", err)
		}
		if result.Processed != 1 || result.Failed != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if slices.Contains(p.fetcher.Fetched(), "three") {
			t.Error("run should stop before the third track")
		}
	})

	t.Run("continue on error", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		p.fetcher.Fail = map[string]error{
			"two": &shared.FetchError{Kind: shared.FetchNotFound, TrackID: "two", Err: errors.New("unavailable")},
		}
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir, ContinueOnError: true})

		playlist := &models.PlaylistRecord{Tracks: []models.TrackRecord{
			{ID: "one", Title: "One"}, {ID: "two", Title: "Two"}, {ID: "three", Title: "Three"},
		}}
		result, err := it.Run(context.Background(), playlist, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if result.Processed != 2 || result.Failed != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(result.Failures) != 1 || result.Failures[0].Track.ID != "two" {
			t.Errorf("unexpected failures %+v", result.Failures)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "Three.mp3"))
	})

	t.Run("parallel workers never share a name", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir, Workers: 4})

		playlist := &models.PlaylistRecord{Tracks: []models.TrackRecord{
			{ID: "a", Title: "Same"}, {ID: "b", Title: "Same"}, {ID: "c", Title: "Same"}, {ID: "d", Title: "Same"},
		}}
		result, err := it.Run(context.Background(), playlist, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if result.Processed != 4 {
			t.Fatalf("expected 4 processed, got %+v", result)
		}

		files := tu.ListFiles(t, dir)
		slices.Sort(files)
		want := []string{"Same 1.mp3", "Same 2.mp3", "Same 3.mp3", "Same.mp3"}
		if !slices.Equal(files, want) {
			t.Errorf("expected %v, got %v", want, files)
		}
	})

	t.Run("ledger", func(t *testing.T) {
		dir := t.TempDir()
		renamed := filepath.Join(dir, "Old (renamed).mp3")
		if err := os.WriteFile(renamed, []byte("audio"), 0644); err != nil {
			t.Fatal(err)
		}
		ledger := &memoryLedger{paths: map[string]string{"old": renamed}}

		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, ledger, IteratorConfig{OutputDir: dir})

		playlist := &models.PlaylistRecord{Tracks: []models.TrackRecord{
			{ID: "old", Title: "Old"}, {ID: "new", Title: "New"},
		}}
		result, err := it.Run(context.Background(), playlist, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if result.Skipped != 1 || result.Processed != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if !slices.Equal(ledger.records, []string{"new=New.mp3"}) {
			t.Errorf("unexpected ledger records %v", ledger.records)
		}
		tu.AssertNotExists(t, filepath.Join(dir, "Old.mp3"))
	})

	t.Run("ledger entries outside the layout are ignored", func(t *testing.T) {
		elsewhere := filepath.Join(t.TempDir(), "Old.mp3")
		tc := []struct {
			name string
			path string
		}{
			{name: "other directory", path: elsewhere},
			{name: "other format", path: "Old.m4a"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				dir := t.TempDir()
				path := tt.path
				if !filepath.IsAbs(path) {
					path = filepath.Join(dir, path)
				}
				if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
					t.Fatal(err)
				}
				ledger := &memoryLedger{paths: map[string]string{"old": path}}

				p := newPipeline(tagging.NewID3Writer())
				it := newIterator(p, ledger, IteratorConfig{OutputDir: dir})

				result, err := it.Run(context.Background(), &models.PlaylistRecord{Tracks: []models.TrackRecord{{ID: "old", Title: "Old"}}}, nil)
				if err != nil {
					t.Fatalf("Run() error = %v", err)
				}
				if result.Processed != 1 || result.Skipped != 0 {
					t.Errorf("unexpected result %+v", result)
				}
				tu.AssertFileExists(t, filepath.Join(dir, "Old.mp3"))
			})
		}
	})

	t.Run("duplicate ids are downloaded once", func(t *testing.T) {
		for _, workers := range []int{1, 4} {
			dir := t.TempDir()
			p := newPipeline(tagging.NewID3Writer())
			it := newIterator(p, nil, IteratorConfig{OutputDir: dir, AlbumSubfolders: true, Workers: workers})

			playlist := &models.PlaylistRecord{Tracks: []models.TrackRecord{
				{ID: "dup", Title: "Song"},
				{ID: "dup", Title: "Song", Album: &models.Album{Name: "Live"}},
				{ID: "dup", Title: "Song"},
			}}
			result, err := it.Run(context.Background(), playlist, nil)
			if err != nil {
				t.Fatalf("workers=%d: Run() error = %v", workers, err)
			}

			if result.Processed != 1 || result.Skipped != 2 {
				t.Errorf("workers=%d: unexpected result %+v", workers, result)
			}
			if fetched := p.fetcher.Fetched(); len(fetched) != 1 {
				t.Errorf("workers=%d: expected one fetch, got %v", workers, fetched)
			}
		}
	})

	t.Run("progress updates", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir})

		progress := make(chan ProgressUpdate, 16)
		if _, err := it.Run(context.Background(), &models.PlaylistRecord{Title: "Mix", Tracks: []models.TrackRecord{testTrack}}, progress); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		close(progress)

		var phases []Phase
		var messages []string
		for u := range progress {
			phases = append(phases, u.Phase)
			messages = append(messages, u.Message)
		}

		want := []Phase{StartRun, ProcessTrack, TrackDone, FinishRun}
		if !slices.Equal(phases, want) {
			t.Errorf("expected phases %v, got %v", want, phases)
		}
		if !strings.Contains(messages[1], "A, B - Test Track") {
			t.Errorf("unexpected message %q", messages[1])
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		p := newPipeline(tagging.NewID3Writer())
		it := newIterator(p, nil, IteratorConfig{OutputDir: dir, ContinueOnError: true})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := it.Run(ctx, &models.PlaylistRecord{Tracks: []models.TrackRecord{testTrack}}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(p.fetcher.Fetched()) != 0 {
			t.Error("nothing should be fetched after cancellation")
		}
	})

	t.Run("nil playlist", func(t *testing.T) {
		it := newIterator(newPipeline(tagging.NewID3Writer()), nil, IteratorConfig{})
		if _, err := it.Run(context.Background(), nil, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestStem(t *testing.T) {
	tc := []struct {
		name       string
		subfolders bool
		track      models.TrackRecord
		want       string
	}{
		{name: "flat", track: testTrack, want: filepath.Join("out", "Test Track")},
		{name: "subfolder", subfolders: true, track: testTrack, want: filepath.Join("out", "My Album", "Test Track")},
		{name: "sanitized", track: models.TrackRecord{ID: "x", Title: "AC/DC: Live?"}, want: filepath.Join("out", "ACDC Live")},
		{name: "unusable title", track: models.TrackRecord{ID: "x1", Title: "..."}, want: filepath.Join("out", "x1")},
		{name: "unusable album", subfolders: true, track: models.TrackRecord{ID: "x", Title: "T", Album: &models.Album{Name: "/"}}, want: filepath.Join("out", "T")},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			it := newIterator(newPipeline(tagging.NewID3Writer()), nil, IteratorConfig{OutputDir: "out", AlbumSubfolders: tt.subfolders})
			if got := it.Stem(tt.track); got != tt.want {
				t.Errorf("Stem() = %q, want %q", got, tt.want)
			}
		})
	}
}
