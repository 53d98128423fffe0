// Package evaluate runs a detection model over one video at a time and
// reduces the per-frame accuracies to a per-video average.
package evaluate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/ah2166/trackeval/internal/descriptor"
	"github.com/ah2166/trackeval/internal/detect"
	"github.com/ah2166/trackeval/internal/display"
	"github.com/ah2166/trackeval/internal/video"
)

// ErrNoFrames marks a video that opened but yielded no processed
// frames. There is no meaningful average for it, so the batch skips
// the video with a warning, the same way it skips an unopenable one.
var ErrNoFrames = errors.New("no frames processed")

// Outcome is the terminal state of a frame evaluation loop.
type Outcome int

const (
	// Exhausted means the video ran out of frames.
	Exhausted Outcome = iota
	// Cancelled means the user ended this video early; collected
	// scores still aggregate normally.
	Cancelled
	// Aborted means the user ended the whole run. The video's
	// resources are released before the loop returns.
	Aborted
)

// Result is the outcome of evaluating one video.
type Result struct {
	// Scores holds one accuracy per processed frame, in frame order.
	Scores  []float64
	Outcome Outcome
	Elapsed time.Duration
}

// Mean is the video-level accuracy: the arithmetic mean of the frame
// scores.
func (r Result) Mean() float64 {
	return mean(r.Scores)
}

// Options configures a video evaluator.
type Options struct {
	// PenalizeExtra counts detections beyond the expected number
	// against the score instead of capping at 1.
	PenalizeExtra bool
	// KeyPollWait bounds the per-frame wait for a control key while
	// the live display is active. Defaults to 10ms.
	KeyPollWait time.Duration
	// Progress receives the in-place frame counter and elapsed-time
	// lines. Defaults to stderr.
	Progress io.Writer
}

// Evaluator evaluates videos against a shared detector. The detector is
// long-lived; the video source and display are scoped to a single
// Evaluate call and released on every exit path.
type Evaluator struct {
	detector   detect.Detector
	open       func(path string) (video.Source, error)
	newDisplay func() (display.Display, error)
	opts       Options
	logger     *slog.Logger
	inline     bool
}

// New builds an evaluator. open provides the video source for each
// descriptor. newDisplay may be nil, which disables live visualization
// and with it user cancellation.
func New(detector detect.Detector, open func(string) (video.Source, error), newDisplay func() (display.Display, error), opts Options, logger *slog.Logger) *Evaluator {
	if opts.KeyPollWait <= 0 {
		opts.KeyPollWait = 10 * time.Millisecond
	}
	if opts.Progress == nil {
		opts.Progress = os.Stderr
	}
	inline := false
	if f, ok := opts.Progress.(*os.File); ok {
		inline = isatty.IsTerminal(f.Fd())
	}
	return &Evaluator{
		detector:   detector,
		open:       open,
		newDisplay: newDisplay,
		opts:       opts,
		logger:     logger,
		inline:     inline,
	}
}

// Evaluate opens the descriptor's video, scores every frame until
// exhaustion or cancellation, and returns the collected scores. Errors
// wrapping video.ErrOpen and ErrNoFrames are per-video skips for the
// caller; the source is closed before returning in every case.
func (e *Evaluator) Evaluate(ctx context.Context, desc descriptor.Descriptor) (Result, error) {
	src, err := e.open(desc.Path)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	var disp display.Display
	if e.newDisplay != nil {
		disp, err = e.newDisplay()
		if err != nil {
			return Result{}, fmt.Errorf("failed to open live display: %v", err)
		}
		defer disp.Close()
	}

	res, err := e.runLoop(ctx, src, disp, desc)
	if err != nil {
		return Result{}, err
	}
	if len(res.Scores) == 0 && res.Outcome != Aborted {
		return Result{}, fmt.Errorf("%w: %s", ErrNoFrames, desc.Path)
	}
	return res, nil
}

// runLoop is the per-frame state machine: pull, crop, detect, score,
// and optionally render and poll for a control key.
func (e *Evaluator) runLoop(ctx context.Context, src video.Source, disp display.Display, desc descriptor.Descriptor) (Result, error) {
	total := src.TotalFrames()
	scores := make([]float64, 0, total)
	outcome := Exhausted
	start := time.Now()

loop:
	for {
		select {
		case <-ctx.Done():
			outcome = Aborted
			break loop
		default:
		}

		frame, err := src.NextFrame()
		if errors.Is(err, io.EOF) {
			break loop
		}
		if err != nil {
			return Result{}, fmt.Errorf("failed to grab frame %d of %s: %v", src.FrameIndex()+1, desc.Path, err)
		}

		cropped := cropFrame(frame, desc.Crop)

		detections, err := e.detector.Detect(ctx, cropped)
		if err != nil {
			return Result{}, fmt.Errorf("inference failed on frame %d of %s: %w", src.FrameIndex(), desc.Path, err)
		}

		scores = append(scores, Score(len(detections), desc.ExpectedCount, e.opts.PenalizeExtra))
		e.reportProgress(src.FrameIndex(), total)

		if disp != nil {
			if err := disp.Show(cropped, detections); err != nil {
				e.logger.Warn("live display failed", "error", err)
			}
			switch disp.WaitKey(e.opts.KeyPollWait) {
			case display.KeyCancel:
				outcome = Cancelled
				break loop
			case display.KeyAbort:
				outcome = Aborted
				break loop
			}
		}
	}

	elapsed := time.Since(start)
	e.reportElapsed(elapsed)

	return Result{Scores: scores, Outcome: outcome, Elapsed: elapsed}, nil
}

// cropFrame restricts the frame to the descriptor's crop region. Crops
// outside the frame bounds are intersected away rather than rejected.
func cropFrame(frame image.Image, crop image.Rectangle) image.Image {
	if crop.Empty() {
		return frame
	}
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if s, ok := frame.(subImager); ok {
		return s.SubImage(crop.Intersect(frame.Bounds()))
	}
	return frame
}

// reportProgress overwrites one console line with the frame counter
// when attached to a terminal, matching the long-running-loop feel of
// the batch without flooding redirected output.
func (e *Evaluator) reportProgress(frame, total int) {
	if e.inline {
		fmt.Fprintf(e.opts.Progress, "\r%d of %d frames processed", frame, total)
	}
}

func (e *Evaluator) reportElapsed(elapsed time.Duration) {
	if e.inline {
		fmt.Fprintln(e.opts.Progress)
	}
	secs := elapsed.Seconds()
	fmt.Fprintf(e.opts.Progress, "Elapsed time: %dm %.3fs\n", int(secs)/60, math.Mod(secs, 60))
}
