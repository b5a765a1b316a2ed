package models

import (
	"fmt"
	"time"
)

var _ Model = (*Download)(nil)

// Download is a finished audio file recorded in the ledger.
type Download struct {
	id        string
	sequence  int
	trackID   string
	title     string
	path      string
	format    AudioFormat
	createdAt time.Time
}

// NewDownload creates a Download for a file that was just written.
func NewDownload(trackID, title, path string, format AudioFormat) *Download {
	return &Download{
		trackID:   trackID,
		title:     title,
		path:      path,
		format:    format,
		createdAt: time.Now().UTC(),
	}
}

// RestoreDownload rebuilds a Download from a stored row.
func RestoreDownload(id string, sequence int, trackID, title, path string, format AudioFormat, createdAt time.Time) *Download {
	return &Download{
		id:        id,
		sequence:  sequence,
		trackID:   trackID,
		title:     title,
		path:      path,
		format:    format,
		createdAt: createdAt,
	}
}

func (d *Download) ID() string           { return d.id }
func (d *Download) Sequence() int        { return d.sequence }
func (d *Download) TrackID() string      { return d.trackID }
func (d *Download) Title() string        { return d.title }
func (d *Download) Path() string         { return d.path }
func (d *Download) Format() AudioFormat  { return d.format }
func (d *Download) CreatedAt() time.Time { return d.createdAt }

func (d *Download) SetID(id string)     { d.id = id }
func (d *Download) SetSequence(seq int) { d.sequence = seq }

// Validate checks the fields the ledger needs to answer lookups.
func (d *Download) Validate() error {
	if d.trackID == "" {
		return fmt.Errorf("download track id is required")
	}
	if d.path == "" {
		return fmt.Errorf("download path is required")
	}
	if _, err := ParseAudioFormat(string(d.format)); err != nil {
		return err
	}
	return nil
}
