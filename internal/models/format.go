package models

import (
	"fmt"
	"strings"
)

// AudioFormat is the output audio container.
type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatM4A AudioFormat = "m4a"
)

// ParseAudioFormat accepts "mp3" or "m4a" (case-insensitive, optional leading dot).
func ParseAudioFormat(s string) (AudioFormat, error) {
	switch f := AudioFormat(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatMP3, FormatM4A:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported audio format %q", s)
	}
}

// Ext returns the file extension without the dot.
func (f AudioFormat) Ext() string { return string(f) }

// Muxer returns the ffmpeg output format name.
func (f AudioFormat) Muxer() string {
	if f == FormatM4A {
		return "ipod"
	}
	return "mp3"
}

// Codec returns the ffmpeg audio encoder for the format.
func (f AudioFormat) Codec() string {
	if f == FormatM4A {
		return "aac"
	}
	return "libmp3lame"
}

// Bitrate returns the encoder bitrate in bits per second.
//
// 256 kbps for the MP4 family, 320 kbps for MP3.
func (f AudioFormat) Bitrate() int {
	if f == FormatM4A {
		return 256000
	}
	return 320000
}

func (f AudioFormat) String() string { return string(f) }
