package shared

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTypedErrors(t *testing.T) {
	cause := fmt.Errorf("boom")

	tc := []struct {
		name     string
		err      error
		sentinel error
		other    error
	}{
		{name: "fetch not found", err: &FetchError{Kind: FetchNotFound, TrackID: "abc", Err: cause}, sentinel: ErrTrackNotFound, other: ErrNetwork},
		{name: "fetch network", err: &FetchError{Kind: FetchNetwork, TrackID: "abc", Err: cause}, sentinel: ErrNetwork, other: ErrTrackNotFound},
		{name: "bad container", err: &ExtractionError{Kind: ExtractBadContainer, Path: "a.mp4", Err: cause}, sentinel: ErrBadContainer, other: ErrEncodeFailure},
		{name: "encode failure", err: &ExtractionError{Kind: ExtractEncodeFailure, Path: "a.mp4", Err: cause}, sentinel: ErrEncodeFailure, other: ErrBadContainer},
		{name: "unsupported format", err: &TagError{Kind: TagUnsupportedFormat, Path: "a.ogg", Err: cause}, sentinel: ErrUnsupportedFormat, other: ErrTagWrite},
		{name: "tag write", err: &TagError{Kind: TagWriteFailure, Path: "a.mp3", Err: cause}, sentinel: ErrTagWrite, other: ErrUnsupportedFormat},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := &TrackError{TrackID: "abc", Title: "Song", Err: tt.err}

			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("expected %v to match %v", wrapped, tt.sentinel)
			}
			if errors.Is(wrapped, tt.other) {
				t.Errorf("%v should not match %v", wrapped, tt.other)
			}
			if !errors.Is(wrapped, cause) {
				t.Error("cause should remain reachable")
			}
			if !strings.Contains(wrapped.Error(), `track "Song" (abc)`) {
				t.Errorf("unexpected message %q", wrapped.Error())
			}
		})
	}

	t.Run("errors.As recovers kind", func(t *testing.T) {
		err := fmt.Errorf("run: %w", &TrackError{TrackID: "x", Err: &FetchError{Kind: FetchNetwork, TrackID: "x", Err: cause}})

		var fe *FetchError
		if !errors.As(err, &fe) || fe.Kind != FetchNetwork {
			t.Fatalf("errors.As failed for %v", err)
		}
		if fe.Kind.String() != "network" {
			t.Errorf("Kind.String() = %q", fe.Kind.String())
		}
	})
}
