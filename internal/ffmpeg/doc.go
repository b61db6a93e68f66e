// Package ffmpeg wraps the ffmpeg and ffprobe command line tools: probing a
// video for the metadata needed to re-encode it, extracting its frames as
// images and encoding frames back into a video.
//
// Tools are invoked through a Commander so that argument construction and
// output parsing can be tested without the binaries installed.
package ffmpeg
