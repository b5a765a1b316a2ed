package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/desertthunder/ytmd/internal/models"
	"github.com/desertthunder/ytmd/internal/shared"
)

// DefaultFFmpeg is used when no binary path is configured.
const DefaultFFmpeg = "ffmpeg"

// badContainerMarkers are ffmpeg messages meaning the input cannot be demuxed
// or lacks the requested stream.
var badContainerMarkers = []string{
	"Invalid data found when processing input",
	"moov atom not found",
	"EBML header parsing failed",
	"matches no streams",
	"does not contain any stream",
	"No such file or directory",
}

// Container is a fetched media file that can be read in two independent passes.
type Container interface {
	// ExtractFrame returns video frame index (zero-based) as a JPEG image.
	ExtractFrame(ctx context.Context, index int) (models.CoverImage, error)
	// ExtractAudio writes the audio stream, re-encoded to format, to dest.
	ExtractAudio(ctx context.Context, format models.AudioFormat, dest string) error
}

// Extractor opens fetched containers.
type Extractor interface {
	Open(c models.IntermediateContainer) Container
}

// CommandRunner runs name with args and returns what it wrote to stdout and stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// ExecRunner runs commands with [exec.CommandContext].
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// FFmpeg extracts frames and audio with the ffmpeg binary.
type FFmpeg struct {
	binary string
	run    CommandRunner
}

// NewFFmpeg uses binary ("" for ffmpeg on PATH) through run (nil for [ExecRunner]).
func NewFFmpeg(binary string, run CommandRunner) *FFmpeg {
	if binary == "" {
		binary = DefaultFFmpeg
	}
	if run == nil {
		run = ExecRunner
	}
	return &FFmpeg{binary: binary, run: run}
}

func (f *FFmpeg) Open(c models.IntermediateContainer) Container {
	return &ffmpegContainer{ffmpeg: f, path: c.Path}
}

type ffmpegContainer struct {
	ffmpeg *FFmpeg
	path   string
}

// BuildFrameArgs selects the first frame with n >= index and writes it as MJPEG to stdout.
func BuildFrameArgs(input string, index int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", input,
		"-vf", "select=gte(n\\," + strconv.Itoa(index) + ")",
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	}
}

// BuildAudioArgs drops video, subtitle and data streams and encodes the first audio stream.
// Source metadata and chapters are not copied; tags come only from the track record.
func BuildAudioArgs(input string, format models.AudioFormat, output string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin", "-y",
		"-i", input,
		"-map", "0:a:0",
		"-map_metadata", "-1",
		"-map_chapters", "-1",
		"-vn", "-sn", "-dn",
		"-c:a", format.Codec(),
		"-b:a", strconv.Itoa(format.Bitrate()),
		"-f", format.Muxer(),
		output,
	}
}

func (c *ffmpegContainer) ExtractFrame(ctx context.Context, index int) (models.CoverImage, error) {
	stdout, stderr, err := c.ffmpeg.run(ctx, c.ffmpeg.binary, BuildFrameArgs(c.path, index)...)
	if err != nil {
		return nil, c.extractionError(ctx, shared.ExtractBadContainer, err, stderr)
	}
	if len(stdout) == 0 {
		return nil, &shared.ExtractionError{
			Kind: shared.ExtractBadContainer,
			Path: c.path,
			Err:  fmt.Errorf("no video frame at index %d", index),
		}
	}
	return models.CoverImage(stdout), nil
}

func (c *ffmpegContainer) ExtractAudio(ctx context.Context, format models.AudioFormat, dest string) error {
	_, stderr, err := c.ffmpeg.run(ctx, c.ffmpeg.binary, BuildAudioArgs(c.path, format, dest)...)
	if err != nil {
		os.Remove(dest)
		return c.extractionError(ctx, shared.ExtractEncodeFailure, err, stderr)
	}

	info, statErr := os.Stat(dest)
	if statErr != nil || info.Size() == 0 {
		os.Remove(dest)
		return &shared.ExtractionError{
			Kind: shared.ExtractEncodeFailure,
			Path: c.path,
			Err:  fmt.Errorf("ffmpeg produced no audio at %s", dest),
		}
	}
	return nil
}

// extractionError classifies a failed ffmpeg run. Demux failures are BadContainer
// regardless of which pass saw them; other failures take fallback.
func (c *ffmpegContainer) extractionError(ctx context.Context, fallback shared.ExtractionErrorKind, err error, stderr []byte) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = errors.Join(ctxErr, err)
	}

	msg := strings.TrimSpace(string(stderr))
	kind := fallback
	for _, marker := range badContainerMarkers {
		if strings.Contains(msg, marker) {
			kind = shared.ExtractBadContainer
			break
		}
	}
	if msg != "" {
		err = fmt.Errorf("%w: %s", err, lastLine(msg))
	}
	return &shared.ExtractionError{Kind: kind, Path: c.path, Err: err}
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
