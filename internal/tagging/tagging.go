// Package tagging embeds track metadata and cover art into finished audio files.
//
// A [TagWriter] is chosen once per output format with [ForFormat]: ID3v2 for MP3,
// iTunes-style atoms for M4A. Besides title, artists, album and cover, both writers
// store the source video id so later runs can recognise a file they produced.
package tagging

import (
	"fmt"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
)

// SourceIDKey names the custom tag holding the source video id.
const SourceIDKey = "YTMD_VIDEO_ID"

// TagWriter writes metadata for one audio container format.
type TagWriter interface {
	// Format is the audio format this writer handles.
	Format() models.AudioFormat
	// WriteTags embeds title, artists, album, cover and source id into the file at path.
	// Absent artists or album are not written.
	WriteTags(path string, track models.TrackRecord, cover models.CoverImage) error
	// TrackID returns the embedded source id, or "" when the file carries none.
	TrackID(path string) (string, error)
}

// ForFormat returns the writer for format.
func ForFormat(format models.AudioFormat) (TagWriter, error) {
	switch format {
	case models.FormatMP3:
		return NewID3Writer(), nil
	case models.FormatM4A:
		return NewMP4Writer(), nil
	default:
		return nil, &shared.TagError{
			Kind: shared.TagUnsupportedFormat,
			Err:  fmt.Errorf("no tag writer for %q", format),
		}
	}
}

func writeFailure(path string, err error) error {
	return &shared.TagError{Kind: shared.TagWriteFailure, Path: path, Err: err}
}
