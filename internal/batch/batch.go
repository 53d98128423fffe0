// Package batch orchestrates a whole evaluation run: groups of videos
// sharing an expected animal count are evaluated in order, per-group
// averages are persisted, and completed runs are detected and skipped.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ah2166/trackeval/internal/config"
	"github.com/ah2166/trackeval/internal/descriptor"
	"github.com/ah2166/trackeval/internal/detect"
	"github.com/ah2166/trackeval/internal/display"
	"github.com/ah2166/trackeval/internal/evaluate"
	"github.com/ah2166/trackeval/internal/results"
	"github.com/ah2166/trackeval/internal/video"
)

// ErrAborted is returned when the user ends the run mid-video. All
// per-video resources have been released by then; no summary is
// produced and nothing further is written.
var ErrAborted = errors.New("evaluation aborted by user")

// GroupReport collects the per-video averages of one group.
type GroupReport struct {
	Count      int
	VideoMeans []float64
}

// Mean is the group-level average accuracy.
func (g GroupReport) Mean() float64 {
	if len(g.VideoMeans) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range g.VideoMeans {
		sum += v
	}
	return sum / float64(len(g.VideoMeans))
}

// Report describes one orchestrator run.
type Report struct {
	RunID   uuid.UUID
	Resumed bool
	Groups  []GroupReport
}

// Deps are the collaborators an orchestrator drives. Everything is
// injectable so the batch logic is testable without ffmpeg or a model
// server.
type Deps struct {
	// NewDetector constructs the inference collaborator, once per run.
	// Construction failure is fatal for the run.
	NewDetector func(ctx context.Context) (detect.Detector, error)
	// OpenSource opens one video for evaluation.
	OpenSource func(path string) (video.Source, error)
	// NewDisplay opens the live display for one video. Nil disables
	// visualization.
	NewDisplay func() (display.Display, error)
	// Store receives per-video rows. Nil disables database storage.
	Store results.Store
	// Out receives the final summary table. Defaults to stdout.
	Out io.Writer
	// RunID identifies this run in stored rows. Zero means generate.
	RunID uuid.UUID
}

// Orchestrator runs the batch evaluation described by its config.
type Orchestrator struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   Deps
}

// New builds an orchestrator.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) *Orchestrator {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.RunID == uuid.Nil {
		deps.RunID = uuid.New()
	}
	return &Orchestrator{cfg: cfg, logger: logger, deps: deps}
}

// Run evaluates every configured group. Malformed descriptor lines and
// unopenable videos are skipped with a logged message; only detector
// construction failure and result persistence failure are fatal.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: o.deps.RunID}

	lock := flock.New(o.cfg.Run.OutputBase + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another evaluation is already running for %s", o.cfg.Run.OutputBase)
	}
	defer lock.Unlock()

	det, err := o.deps.NewDetector(ctx)
	if err != nil {
		return nil, err
	}
	defer det.Close()

	if o.cfg.Run.ResumeIfComplete && o.alreadyEvaluated() {
		o.logger.Info("model already evaluated for current groups",
			"output", o.cfg.Run.OutputBase)
		report.Resumed = true
		return report, nil
	}

	var newDisplay func() (display.Display, error)
	if o.cfg.Run.ShowLiveDisplay {
		newDisplay = o.deps.NewDisplay
	}
	ev := evaluate.New(det, o.deps.OpenSource, newDisplay, evaluate.Options{
		PenalizeExtra: o.cfg.Run.PenalizeExtraDetections,
	}, o.logger)

	for _, grp := range o.cfg.Groups {
		gr, err := o.runGroup(ctx, ev, grp)
		if err != nil {
			return report, err
		}
		report.Groups = append(report.Groups, *gr)

		if o.cfg.Run.PersistResults {
			dest := results.GroupFileName(o.cfg.Run.OutputBase, grp.Count)
			if err := results.WriteValues(gr.VideoMeans, dest, "\n", true); err != nil {
				return report, fmt.Errorf("failed to persist group %d results: %w", grp.Count, err)
			}
			o.logger.Info("group results written", "group", grp.Count, "file", dest)
		}
	}

	o.printSummary(report)
	return report, nil
}

// runGroup evaluates every video listed for one group.
func (o *Orchestrator) runGroup(ctx context.Context, ev *evaluate.Evaluator, grp config.Group) (*GroupReport, error) {
	lines, err := descriptor.ReadLines(grp.Videos)
	if err != nil {
		return nil, fmt.Errorf("failed to read group %d video list: %w", grp.Count, err)
	}

	o.logger.Info("evaluating group", "group", grp.Count, "videos", len(lines))
	gr := &GroupReport{Count: grp.Count}

	for i, line := range lines {
		desc, err := descriptor.ParseLine(line)
		if err != nil {
			o.logger.Warn("skipping incorrectly formatted line", "line", line, "error", err)
			continue
		}

		o.logger.Info("evaluating video",
			"video", i+1, "total", len(lines), "path", desc.Path)

		res, err := ev.Evaluate(ctx, desc)
		switch {
		case errors.Is(err, video.ErrOpen):
			o.logger.Warn("skipping unopenable video", "path", desc.Path, "error", err)
			continue
		case errors.Is(err, evaluate.ErrNoFrames):
			o.logger.Warn("skipping video with no processed frames", "path", desc.Path)
			continue
		case err != nil:
			o.logger.Warn("skipping video after evaluation failure", "path", desc.Path, "error", err)
			continue
		}

		if res.Outcome == evaluate.Aborted {
			o.logger.Info("run aborted", "path", desc.Path, "frames_scored", len(res.Scores))
			return nil, ErrAborted
		}

		gr.VideoMeans = append(gr.VideoMeans, res.Mean())
		o.logger.Info("video evaluated",
			"average_accuracy", fmt.Sprintf("%.5f", res.Mean()),
			"running_group_average", fmt.Sprintf("%.5f", gr.Mean()),
			"frames", len(res.Scores),
			"cancelled", res.Outcome == evaluate.Cancelled)

		if o.deps.Store != nil {
			rec := results.VideoRecord{
				GroupCount: grp.Count,
				VideoPath:  desc.Path,
				MeanScore:  res.Mean(),
				Frames:     len(res.Scores),
				Scores:     res.Scores,
			}
			if err := o.deps.Store.AddVideoResult(ctx, rec); err != nil {
				o.logger.Warn("failed to store video result", "path", desc.Path, "error", err)
			}
		}
	}

	return gr, nil
}

// alreadyEvaluated reports whether a previous run left its output
// behind: either the base output name itself or the first group's
// result file counts as the resume marker.
func (o *Orchestrator) alreadyEvaluated() bool {
	if _, err := os.Stat(o.cfg.Run.OutputBase); err == nil {
		return true
	}
	if len(o.cfg.Groups) == 0 {
		return false
	}
	marker := results.GroupFileName(o.cfg.Run.OutputBase, o.cfg.Groups[0].Count)
	_, err := os.Stat(marker)
	return err == nil
}

// printSummary renders the per-group averages.
func (o *Orchestrator) printSummary(report *Report) {
	t := table.NewWriter()
	t.SetOutputMirror(o.deps.Out)
	t.AppendHeader(table.Row{"Group", "Videos", "Average Accuracy"})
	for _, g := range report.Groups {
		t.AppendRow(table.Row{g.Count, len(g.VideoMeans), fmt.Sprintf("%.4f", g.Mean())})
		o.logger.Info("group summary",
			"group", g.Count,
			"average_accuracy", fmt.Sprintf("%.4f", g.Mean()))
	}
	t.Render()
}
