// Package media fetches source media and derives cover art and audio from it.
//
// A [Fetcher] downloads the best combined audio+video stream for a video id into
// "{stem}.<ext>", where the extension is chosen by the source. Two backends exist:
// [YTDLPFetcher] drives the yt-dlp binary and [NativeFetcher] talks to YouTube directly.
//
// [FFmpeg] opens a fetched file as a [Container], which supports two independent passes:
// grabbing a single video frame as JPEG and transcoding the audio stream.
// [CoverProcessor] optionally squares and shrinks the grabbed frame.
package media
