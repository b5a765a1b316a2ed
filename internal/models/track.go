package models

import (
	"net/url"
	"strings"
)

// Artist is a credited performer of a track.
type Artist struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Album is the release a track belongs to.
type Album struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// TrackRecord describes one song as returned by the metadata provider.
//
// Artists and Album are optional; a nil Album means no album tag and no subfolder.
type TrackRecord struct {
	ID      string   `json:"videoId"`
	Title   string   `json:"title"`
	Artists []Artist `json:"artists,omitempty"`
	Album   *Album   `json:"album,omitempty"`
}

// PlaylistRecord is an ordered list of tracks.
type PlaylistRecord struct {
	ID     string        `json:"id,omitempty"`
	Title  string        `json:"title,omitempty"`
	Tracks []TrackRecord `json:"tracks"`
}

// ArtistNames joins the artist names with ", ". It returns "" when no artist has a name.
func (t TrackRecord) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// AlbumName returns the album name or "" when the track has none.
func (t TrackRecord) AlbumName() string {
	if t.Album == nil {
		return ""
	}
	return strings.TrimSpace(t.Album.Name)
}

// HasArtists reports whether an artist tag should be written.
func (t TrackRecord) HasArtists() bool {
	return t.ArtistNames() != ""
}

// NormalizeTrackID accepts a bare video id or a watch URL and returns the id.
//
// For URLs the value of the v parameter is used, up to the next '&'.
func NormalizeTrackID(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return s
	}

	if u, err := url.Parse(s); err == nil {
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		if u.Host == "youtu.be" {
			return strings.Trim(u.Path, "/")
		}
	}

	if _, after, ok := strings.Cut(s, "v="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id
	}
	return s
}

// NormalizePlaylistID accepts a playlist id or a URL containing "list=".
func NormalizePlaylistID(s string) string {
	s = strings.TrimSpace(s)
	if _, after, ok := strings.Cut(s, "list="); ok {
		id, _, _ := strings.Cut(after, "&")
		return id
	}
	return s
}
