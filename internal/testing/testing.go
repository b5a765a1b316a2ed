// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/ytmd/internal/media"
	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
)

// MockProvider is a test double for [services.Provider]
type MockProvider struct {
	Playlists map[string]*models.PlaylistRecord
	Liked     *models.PlaylistRecord
	Radio     map[string]*models.PlaylistRecord
	Err       error

	mu     sync.Mutex
	Limits []int
}

func (m *MockProvider) GetPlaylist(ctx context.Context, playlistID string, limit int) (*models.PlaylistRecord, error) {
	m.recordLimit(limit)
	if m.Err != nil {
		return nil, m.Err
	}
	if p, ok := m.Playlists[models.NormalizePlaylistID(playlistID)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
}

func (m *MockProvider) GetLikedSongs(ctx context.Context, limit int) (*models.PlaylistRecord, error) {
	m.recordLimit(limit)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Liked == nil {
		return &models.PlaylistRecord{}, nil
	}
	return m.Liked, nil
}

func (m *MockProvider) GetTrackRadio(ctx context.Context, videoID string) (*models.PlaylistRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if p, ok := m.Radio[models.NormalizeTrackID(videoID)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, videoID)
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) recordLimit(limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Limits = append(m.Limits, limit)
}

// FakeFetcher writes a small container for each fetch instead of downloading.
type FakeFetcher struct {
	// Ext is the container extension written; defaults to "webm".
	Ext string
	// Fail maps track ids to the error returned for them.
	Fail map[string]error

	mu      sync.Mutex
	fetched []string
}

func (f *FakeFetcher) Fetch(ctx context.Context, trackID, destStem string) (models.IntermediateContainer, error) {
	id := models.NormalizeTrackID(trackID)

	f.mu.Lock()
	f.fetched = append(f.fetched, id)
	f.mu.Unlock()

	if err, ok := f.Fail[id]; ok {
		return models.IntermediateContainer{}, err
	}

	ext := f.Ext
	if ext == "" {
		ext = "webm"
	}
	if err := os.MkdirAll(filepath.Dir(destStem), 0755); err != nil {
		return models.IntermediateContainer{}, err
	}
	path := destStem + "." + ext
	if err := os.WriteFile(path, []byte("container:"+id), 0644); err != nil {
		return models.IntermediateContainer{}, err
	}
	return models.IntermediateContainer{Path: path}, nil
}

// Fetched returns the ids fetched so far, in call order.
func (f *FakeFetcher) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

// FakeCover is the JPEG payload returned by [FakeExtractor].
var FakeCover = models.CoverImage{0xFF, 0xD8, 0xFF, 0xE0, 'f', 'a', 'k', 'e', 0xFF, 0xD9}

// FakeExtractor opens containers that return [FakeCover] and write placeholder MPEG frames.
type FakeExtractor struct {
	FrameErr error
	AudioErr error

	mu     sync.Mutex
	frames []int
}

func (e *FakeExtractor) Open(c models.IntermediateContainer) media.Container {
	return &fakeContainer{extractor: e, path: c.Path}
}

// FrameIndexes returns the frame indexes requested so far.
func (e *FakeExtractor) FrameIndexes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.frames...)
}

type fakeContainer struct {
	extractor *FakeExtractor
	path      string
}

func (c *fakeContainer) ExtractFrame(ctx context.Context, index int) (models.CoverImage, error) {
	c.extractor.mu.Lock()
	c.extractor.frames = append(c.extractor.frames, index)
	c.extractor.mu.Unlock()

	if c.extractor.FrameErr != nil {
		return nil, c.extractor.FrameErr
	}
	return FakeCover, nil
}

func (c *fakeContainer) ExtractAudio(ctx context.Context, format models.AudioFormat, dest string) error {
	if c.extractor.AudioErr != nil {
		return c.extractor.AudioErr
	}
	frame := []byte{0xFF, 0xFB, 0x90, 0x00}
	data := make([]byte, 0, 64*len(frame))
	for range 64 {
		data = append(data, frame...)
	}
	return os.WriteFile(dest, data, 0644)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Path should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// ListFiles returns the names of all regular files below dir, relative to dir.
func ListFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", dir, err)
	}
	return files
}
