package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/agent-api/core"
	"github.com/agent-api/core/agent"
	"github.com/agent-api/core/agent/bootstrap"
	"github.com/agent-api/ollama"
	"github.com/go-logr/logr"
)

const detectionPrompt = "Locate every animal in this image. Reply with a JSON array only, " +
	"one object per animal, each with integer fields x, y, width, height " +
	"(top-left corner and size in pixels) and a confidence field between 0 and 1."

// OllamaConfig holds connection details for the Ollama-served detector.
type OllamaConfig struct {
	Model   string // model reference, eg "llama3.2-vision:11b"
	BaseURL string // eg "http://localhost"
	Port    int    // eg 11434
}

// OllamaDetector runs detection through a vision model served by Ollama.
type OllamaDetector struct {
	agent  *agent.Agent
	logger *slog.Logger
	tmpDir string
}

// NewOllamaDetector initializes and returns a new vision-model detector.
// An unreachable or unhealthy endpoint is reported as ErrModelInit.
func NewOllamaDetector(ctx context.Context, cfg OllamaConfig, logger *slog.Logger) (*OllamaDetector, error) {
	// Check that Ollama is running before committing to the run.
	resp, err := http.Get(fmt.Sprintf("%s:%d/api/tags", cfg.BaseURL, cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("%w: ollama is not reachable at %s:%d: %v", ErrModelInit, cfg.BaseURL, cfg.Port, err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: ollama endpoint %s:%d answered status %d", ErrModelInit, cfg.BaseURL, cfg.Port, resp.StatusCode)
	}

	tmpDir, err := os.MkdirTemp("", "trackeval-detect-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelInit, err)
	}

	logrLogger := logr.FromSlogHandler(logger.Handler())

	provider := ollama.NewProvider(&ollama.ProviderOpts{
		Logger:  &logrLogger,
		BaseURL: cfg.BaseURL,
		Port:    cfg.Port,
	})

	model := &core.Model{
		ID: cfg.Model,
	}
	provider.UseModel(ctx, model)

	visionAgent, err := agent.NewAgent(
		bootstrap.WithProvider(provider),
		bootstrap.WithLogger(&logrLogger),
		bootstrap.WithSystemPrompt("You are an animal detection assistant. You locate animals in images and answer only with bounding box JSON."),
	)
	if err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("%w: %v", ErrModelInit, err)
	}

	return &OllamaDetector{
		agent:  visionAgent,
		logger: logger,
		tmpDir: tmpDir,
	}, nil
}

// Detect sends one frame to the model and parses the bounding boxes it
// reports back.
func (d *OllamaDetector) Detect(ctx context.Context, frame image.Image) ([]Detection, error) {
	framePath := filepath.Join(d.tmpDir, "frame.jpg")
	f, err := os.Create(framePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stage frame for inference: %v", err)
	}
	if err := jpeg.Encode(f, frame, nil); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to encode frame: %v", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	response, err := d.agent.Run(
		ctx,
		agent.WithInput(detectionPrompt),
		agent.WithImagePath(framePath),
	)
	if err != nil {
		return nil, err
	}
	if len(response.Messages) == 0 {
		return nil, fmt.Errorf("no response messages received from model")
	}
	content := response.Messages[len(response.Messages)-1].Content

	return parseDetections(content)
}

// Close removes the staging directory.
func (d *OllamaDetector) Close() {
	os.RemoveAll(d.tmpDir)
}

// parseDetections extracts the bounding box array from a model reply.
// Vision models tend to wrap the JSON in prose, so everything outside
// the outermost array brackets is ignored.
func parseDetections(content string) ([]Detection, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no detection array in model reply: %q", truncate(content, 120))
	}

	var raw []struct {
		X          int     `json:"x"`
		Y          int     `json:"y"`
		Width      int     `json:"width"`
		Height     int     `json:"height"`
		Confidence float32 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode detections: %v", err)
	}

	detections := make([]Detection, 0, len(raw))
	for _, r := range raw {
		detections = append(detections, Detection{
			Confidence: r.Confidence,
			Box:        Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height},
		})
	}
	return detections, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
