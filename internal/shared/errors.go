package shared

import (
	"fmt"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")

	// Pipeline errors
	ErrNetwork           = fmt.Errorf("network error")
	ErrBadContainer      = fmt.Errorf("bad media container")
	ErrEncodeFailure     = fmt.Errorf("audio encode failed")
	ErrUnsupportedFormat = fmt.Errorf("unsupported audio format")
	ErrTagWrite          = fmt.Errorf("tag write failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// FetchErrorKind classifies a [FetchError].
type FetchErrorKind int

const (
	FetchNotFound FetchErrorKind = iota
	FetchNetwork
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchNotFound:
		return "not_found"
	case FetchNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// FetchError is returned by media fetchers.
type FetchError struct {
	Kind    FetchErrorKind
	TrackID string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.TrackID, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind so callers can use errors.Is(err, ErrTrackNotFound).
func (e *FetchError) Is(target error) bool {
	switch e.Kind {
	case FetchNotFound:
		return target == ErrTrackNotFound
	case FetchNetwork:
		return target == ErrNetwork
	}
	return false
}

// ExtractionErrorKind classifies an [ExtractionError].
type ExtractionErrorKind int

const (
	ExtractBadContainer ExtractionErrorKind = iota
	ExtractEncodeFailure
)

func (k ExtractionErrorKind) String() string {
	switch k {
	case ExtractBadContainer:
		return "bad_container"
	case ExtractEncodeFailure:
		return "encode_failure"
	default:
		return "unknown"
	}
}

// ExtractionError is returned when the cover frame or the audio stream cannot be produced.
type ExtractionError struct {
	Kind ExtractionErrorKind
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool {
	switch e.Kind {
	case ExtractBadContainer:
		return target == ErrBadContainer
	case ExtractEncodeFailure:
		return target == ErrEncodeFailure
	}
	return false
}

// TagErrorKind classifies a [TagError].
type TagErrorKind int

const (
	TagUnsupportedFormat TagErrorKind = iota
	TagWriteFailure
)

func (k TagErrorKind) String() string {
	switch k {
	case TagUnsupportedFormat:
		return "unsupported_format"
	case TagWriteFailure:
		return "write_failure"
	default:
		return "unknown"
	}
}

// TagError is returned by tag writers.
type TagError struct {
	Kind TagErrorKind
	Path string
	Err  error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tag %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *TagError) Unwrap() error { return e.Err }

func (e *TagError) Is(target error) bool {
	switch e.Kind {
	case TagUnsupportedFormat:
		return target == ErrUnsupportedFormat
	case TagWriteFailure:
		return target == ErrTagWrite
	}
	return false
}

// TrackError reports which track was being processed when a pipeline stage failed.
type TrackError struct {
	TrackID string
	Title   string
	Err     error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("track %q (%s): %v", e.Title, e.TrackID, e.Err)
}

func (e *TrackError) Unwrap() error { return e.Err }
