package detect

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewOllamaDetectorUnreachable(t *testing.T) {
	// Nothing listens on port 1.
	_, err := NewOllamaDetector(context.Background(), OllamaConfig{
		Model:   "test-model",
		BaseURL: "http://127.0.0.1",
		Port:    1,
	}, testLogger())
	require.ErrorIs(t, err, ErrModelInit)
}

func TestNewOllamaDetectorUnhealthyEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "loading", http.StatusInternalServerError)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	_, err = NewOllamaDetector(context.Background(), OllamaConfig{
		Model:   "test-model",
		BaseURL: "http://" + u.Hostname(),
		Port:    port,
	}, testLogger())
	require.ErrorIs(t, err, ErrModelInit)
}

func TestParseDetections(t *testing.T) {
	reply := `Here are the animals I found:
[
  {"x": 10, "y": 20, "width": 30, "height": 40, "confidence": 0.91},
  {"x": 50, "y": 60, "width": 70, "height": 80, "confidence": 0.85}
]
Let me know if you need anything else.`

	dets, err := parseDetections(reply)
	require.NoError(t, err)
	require.Len(t, dets, 2)
	require.Equal(t, Rect{X: 10, Y: 20, Width: 30, Height: 40}, dets[0].Box)
	require.InDelta(t, 0.91, dets[0].Confidence, 1e-6)
	require.Equal(t, Rect{X: 50, Y: 60, Width: 70, Height: 80}, dets[1].Box)
}

func TestParseDetectionsEmptyArray(t *testing.T) {
	dets, err := parseDetections("No animals visible: []")
	require.NoError(t, err)
	require.Empty(t, dets)
}

func TestParseDetectionsNoArray(t *testing.T) {
	_, err := parseDetections("I cannot see any animals in this image.")
	require.Error(t, err)
}

func TestParseDetectionsBadJSON(t *testing.T) {
	_, err := parseDetections(`[{"x": "ten"}]`)
	require.Error(t, err)
}
