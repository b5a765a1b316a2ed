package tagging

import (
	"fmt"

	"github.com/bogem/id3v2"

	"github.com/desertthunder/ytmd/internal/models"
)

const (
	frameTitle    = "TIT2"
	frameArtist   = "TPE1"
	frameAlbum    = "TALB"
	frameUserText = "TXXX"
	framePicture  = "APIC"
)

// ID3Writer tags MP3 files with ID3v2.4 frames.
type ID3Writer struct{}

func NewID3Writer() *ID3Writer { return &ID3Writer{} }

func (w *ID3Writer) Format() models.AudioFormat { return models.FormatMP3 }

func (w *ID3Writer) WriteTags(path string, track models.TrackRecord, cover models.CoverImage) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return writeFailure(path, fmt.Errorf("open tag: %w", err))
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetTitle(track.Title)

	tag.DeleteFrames(frameArtist)
	if track.HasArtists() {
		tag.SetArtist(track.ArtistNames())
	}

	tag.DeleteFrames(frameAlbum)
	if album := track.AlbumName(); album != "" {
		tag.SetAlbum(album)
	}

	if !cover.Empty() {
		tag.DeleteFrames(framePicture)
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     cover,
		})
	}

	if track.ID != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: SourceIDKey,
			Value:       track.ID,
		})
	}

	if err := tag.Save(); err != nil {
		return writeFailure(path, fmt.Errorf("save tag: %w", err))
	}
	return nil
}

func (w *ID3Writer) TrackID(path string) (string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", fmt.Errorf("open tag: %w", err)
	}
	defer tag.Close()

	for _, f := range tag.GetFrames(frameUserText) {
		udtf, ok := f.(id3v2.UserDefinedTextFrame)
		if ok && udtf.Description == SourceIDKey {
			return udtf.Value, nil
		}
	}
	return "", nil
}
