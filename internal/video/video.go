// Package video provides frame-by-frame access to a video file.
//
// Decoding is delegated to ffmpeg: frames are extracted to a scratch
// directory once on open and then served in order, which keeps the
// evaluation loop itself free of codec concerns.
package video

import (
	"errors"
	"image"
)

// ErrOpen marks a video that could not be opened for evaluation. The
// batch treats it as a per-video skip, never a fatal error.
var ErrOpen = errors.New("cannot open video source")

// Source is an opened video, serving frames in presentation order.
type Source interface {
	// NextFrame returns the next frame, or io.EOF when the video is
	// exhausted.
	NextFrame() (image.Image, error)
	// FrameIndex is the number of frames served so far.
	FrameIndex() int
	// TotalFrames is the total number of frames in the video.
	TotalFrames() int
	// Close releases everything held by the source.
	Close() error
}
