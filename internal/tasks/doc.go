// Package tasks runs the acquisition pipeline over track records with real-time progress reporting.
//
// # Core Operations
//
//  1. [TrackProcessor.Process] : One track, start to finish
//     - Fetches the media container next to the target stem
//     - Extracts a still frame as cover and optionally squares it
//     - Encodes the audio stream to a hidden temporary file
//     - Writes tags on the temporary file, then renames it into place
//     - Deletes the container only after the rename succeeded
//
//  2. [PlaylistIterator.Run] : Every record of a playlist
//     - Skips records without a video id
//     - Builds the output stem from the sanitized title and album
//     - Skips tracks already present (embedded source id or ledger entry)
//     - Reserves a collision-free stem and hands it to the processor
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends use select with
// default so a slow reader never stalls the pipeline.
//
// # Ledger
//
// The optional [Ledger] interface records finished files (repositories.Ledger).
// Recording failures are logged and never fail a track.
package tasks
