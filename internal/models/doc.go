// Package models defines the records that flow through the ytmd download pipeline.
//
// The package contains two categories of types:
//
// 1. Provider records: read-only descriptors produced by the metadata provider
//   - [TrackRecord] : one song (id, title, artists, album)
//   - [PlaylistRecord] : an ordered sequence of tracks
//
// 2. Persistent entities: rows of the optional download ledger
//   - [Download] : a finished, tagged audio file
//
// [AudioFormat] selects the output container, and with it the encoder bitrate and tag schema.
package models
