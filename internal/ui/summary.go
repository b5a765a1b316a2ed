package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/ytmd/internal/tasks"
)

var box = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(accent).
	Padding(0, 1)

// Progress formats one progress update as a single line.
func Progress(u tasks.ProgressUpdate) string {
	switch u.Phase {
	case tasks.StartRun:
		return Title(u.Message)
	case tasks.TrackDone:
		return OK(u.Message)
	case tasks.TrackFailed:
		return Err(u.Message)
	case tasks.SkipTrack:
		return Help(u.Message)
	default:
		return u.Message
	}
}

// Summary renders the outcome of a run inside a rounded box.
func Summary(result *tasks.RunResult) string {
	var b strings.Builder

	name := result.Playlist
	if name == "" {
		name = "Download"
	}
	fmt.Fprintf(&b, "%s\n", Title(name+" complete"))
	fmt.Fprintf(&b, "%s %d\n", OK("processed"), result.Processed)
	fmt.Fprintf(&b, "%s %d\n", Help("skipped"), result.Skipped)

	if result.Failed > 0 {
		fmt.Fprintf(&b, "%s %d", Err("failed"), result.Failed)
		for _, f := range result.Failures {
			fmt.Fprintf(&b, "\n%s", failureLine(styles, f))
		}
	} else {
		fmt.Fprintf(&b, "%s 0", Help("failed"))
	}

	return box.Render(b.String())
}

// failureLine renders the failed track's id as a badge followed by the error.
func failureLine(p Painter, f tasks.TrackFailure) string {
	id := f.Track.ID
	if id == "" {
		id = "?"
	}
	return "  " + p.On(p.As(" "+id+" ", white), red) + " " + p.As(f.Err.Error(), muted)
}
