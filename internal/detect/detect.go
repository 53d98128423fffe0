package detect

// detect is the interface layer to the object detection model

import (
	"context"
	"errors"
	"image"
)

// ErrModelInit marks a detector construction failure. It is fatal for
// the whole run: no videos are processed without a working detector.
var ErrModelInit = errors.New("detector initialization failed")

// Rect is a detection bounding box in frame coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Detection is an object the model has found in a frame.
type Detection struct {
	Class      int
	Confidence float32
	Box        Rect
}

// Detector is given a frame and returns zero or more detected objects.
// Implementations are constructed once per run and reused across all
// videos; Detect must be safe to call repeatedly from one goroutine.
type Detector interface {
	Detect(ctx context.Context, frame image.Image) ([]Detection, error)
	// Close releases any resources held by the detector.
	Close()
}
