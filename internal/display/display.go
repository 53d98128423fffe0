// Package display renders evaluation frames with detection overlays and
// accepts keyboard control of a running evaluation.
package display

import (
	"image"
	"time"

	"github.com/ah2166/trackeval/internal/detect"
)

// Key is a control key pressed while the live display is active.
type Key int

const (
	// KeyNone means no key was pressed within the poll window.
	KeyNone Key = iota
	// KeyCancel (escape) ends the current video's evaluation; scores
	// collected so far are kept and the batch moves on.
	KeyCancel
	// KeyAbort (shift-Q) ends the entire run after the current video's
	// resources are released.
	KeyAbort
)

// Display shows evaluation frames and polls for control keys. It is
// owned by exactly one video's evaluation at a time and must be closed
// before the next video begins.
type Display interface {
	Show(frame image.Image, detections []detect.Detection) error
	// WaitKey waits at most timeout for a key press.
	WaitKey(timeout time.Duration) Key
	Close() error
}
