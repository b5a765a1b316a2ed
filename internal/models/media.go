package models

import (
	"path/filepath"
	"strings"
)

// CoverImage is a JPEG-encoded still frame held in memory.
type CoverImage []byte

// Empty reports whether no image data is present.
func (c CoverImage) Empty() bool { return len(c) == 0 }

// IntermediateContainer is the raw media file fetched for one track.
type IntermediateContainer struct {
	Path string
}

// Ext returns the container extension without the dot, e.g. "webm".
func (c IntermediateContainer) Ext() string {
	return strings.TrimPrefix(filepath.Ext(c.Path), ".")
}
