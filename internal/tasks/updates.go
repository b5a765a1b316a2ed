package tasks

import (
	"fmt"

	"github.com/desertthunder/ytmd/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	StartRun Phase = iota
	ProcessTrack
	SkipTrack
	TrackDone
	TrackFailed
	FinishRun
)

func (p Phase) String() string {
	switch p {
	case StartRun:
		return "start_run"
	case ProcessTrack:
		return "process_track"
	case SkipTrack:
		return "skip_track"
	case TrackDone:
		return "track_done"
	case TrackFailed:
		return "track_failed"
	case FinishRun:
		return "finish_run"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func label(track models.TrackRecord) string {
	if track.HasArtists() {
		return fmt.Sprintf("%s - %s", track.ArtistNames(), track.Title)
	}
	return track.Title
}

func startRunUpdate(playlist *models.PlaylistRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StartRun,
		Total:   len(playlist.Tracks),
		Message: fmt.Sprintf("Downloading %s (%d tracks)", playlist.Title, len(playlist.Tracks)),
		Data:    playlist,
	}
}

func processTrackUpdate(step, total int, track models.TrackRecord) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, label(track)),
	}
}

func skipTrackUpdate(step, total int, track models.TrackRecord, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s (%s)", step, total, label(track), reason),
	}
}

func trackDoneUpdate(step, total int, track models.TrackRecord, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrackDone,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, label(track)),
		Data:    path,
	}
}

func trackFailedUpdate(step, total int, track models.TrackRecord, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TrackFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, label(track), err),
		Data:    err,
	}
}

func finishRunUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FinishRun,
		Step:    result.Total,
		Total:   result.Total,
		Message: fmt.Sprintf("%d processed, %d skipped, %d failed", result.Processed, result.Skipped, result.Failed),
		Data:    result,
	}
}
