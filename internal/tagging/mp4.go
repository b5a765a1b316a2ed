package tagging

import (
	"fmt"
	"strings"

	"github.com/zhaarey/go-mp4tag"

	"github.com/desertthunder/ytmd/internal/models"
)

// MP4Writer tags M4A files with iTunes-style metadata atoms.
type MP4Writer struct{}

func NewMP4Writer() *MP4Writer { return &MP4Writer{} }

func (w *MP4Writer) Format() models.AudioFormat { return models.FormatM4A }

func (w *MP4Writer) WriteTags(path string, track models.TrackRecord, cover models.CoverImage) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return writeFailure(path, fmt.Errorf("open mp4: %w", err))
	}
	defer mp4.Close()

	if err := mp4.Write(buildMP4Tags(track, cover), []string{}); err != nil {
		return writeFailure(path, fmt.Errorf("write atoms: %w", err))
	}
	return nil
}

func (w *MP4Writer) TrackID(path string) (string, error) {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return "", fmt.Errorf("open mp4: %w", err)
	}
	defer mp4.Close()

	tags, err := mp4.Read()
	if err != nil {
		return "", fmt.Errorf("read atoms: %w", err)
	}
	for k, v := range tags.Custom {
		if strings.EqualFold(k, SourceIDKey) {
			return v, nil
		}
	}
	return "", nil
}

// buildMP4Tags maps a track onto atoms; empty string fields are left unwritten.
func buildMP4Tags(track models.TrackRecord, cover models.CoverImage) *mp4tag.MP4Tags {
	t := &mp4tag.MP4Tags{
		Title:  track.Title,
		Artist: track.ArtistNames(),
		Album:  track.AlbumName(),
		Custom: map[string]string{},
	}
	if track.ID != "" {
		t.Custom[SourceIDKey] = track.ID
	}
	if !cover.Empty() {
		t.Pictures = []*mp4tag.MP4Picture{{Format: mp4tag.ImageTypeJPEG, Data: cover}}
	}
	return t
}
