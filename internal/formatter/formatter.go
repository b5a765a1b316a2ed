// package formatter renders playlists and download history as plain text or CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/desertthunder/ytmd/internal/models"
)

// PlaylistToText lists the tracks of a playlist, one "n. Artists - Title" line each.
//
// Records without a video id are marked as unavailable.
func PlaylistToText(playlist *models.PlaylistRecord) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", playlist.Title)
	if playlist.ID != "" {
		fmt.Fprintf(&buf, "ID: %s\n", playlist.ID)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(playlist.Tracks))

	for i, track := range playlist.Tracks {
		line := track.Title
		if track.HasArtists() {
			line = track.ArtistNames() + " - " + track.Title
		}
		if album := track.AlbumName(); album != "" {
			line += fmt.Sprintf(" (%s)", album)
		}
		if track.ID == "" {
			line += " [unavailable]"
		}
		fmt.Fprintf(&buf, "%d. %s\n", i+1, line)
	}

	return buf.Bytes()
}

// HistoryToCSV converts ledger entries to CSV with columns: Sequence, TrackID, Title, Format, Path, CreatedAt
func HistoryToCSV(downloads []*models.Download) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "TrackID", "Title", "Format", "Path", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, d := range downloads {
		record := []string{
			fmt.Sprint(d.Sequence()),
			d.TrackID(),
			d.Title(),
			d.Format().String(),
			d.Path(),
			d.CreatedAt().UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryToText converts ledger entries to aligned plain text, newest first as given.
func HistoryToText(downloads []*models.Download) []byte {
	var buf bytes.Buffer

	if len(downloads) == 0 {
		buf.WriteString("No downloads recorded.\n")
		return buf.Bytes()
	}

	for _, d := range downloads {
		fmt.Fprintf(&buf, "#%-4d %s  %-11s  %s\n", d.Sequence(), d.CreatedAt().Local().Format("2006-01-02 15:04"), d.TrackID(), d.Title())
		fmt.Fprintf(&buf, "      %s\n", d.Path())
	}

	return buf.Bytes()
}

// HistoryEntry is the JSON shape of a ledger row.
type HistoryEntry struct {
	Sequence  int       `json:"sequence"`
	TrackID   string    `json:"track_id"`
	Title     string    `json:"title"`
	Format    string    `json:"format"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryToEntries maps ledger rows to their JSON shape.
func HistoryToEntries(downloads []*models.Download) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(downloads))
	for _, d := range downloads {
		entries = append(entries, HistoryEntry{
			Sequence:  d.Sequence(),
			TrackID:   d.TrackID(),
			Title:     d.Title(),
			Format:    d.Format().String(),
			Path:      d.Path(),
			CreatedAt: d.CreatedAt(),
		})
	}
	return entries
}
