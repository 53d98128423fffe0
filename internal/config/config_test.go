package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trackeval.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `
[run]
model_path = "llama3.2-vision:11b"
output_base = "/tmp/eval/results.eval"
show_live_display = false
penalize_extra_detections = true

[[group]]
count = 3
videos = "/tmp/eval/group3.txt"

[[group]]
count = 5
videos = "/tmp/eval/group5.txt"

[ollama]
port = 11500
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "llama3.2-vision:11b", cfg.Run.ModelPath)
	require.True(t, cfg.Run.PersistResults, "defaults survive partial config")
	require.True(t, cfg.Run.ResumeIfComplete)
	require.True(t, cfg.Run.PenalizeExtraDetections)
	require.Equal(t, 11500, cfg.Ollama.Port)
	require.Equal(t, "http://localhost", cfg.Ollama.BaseURL)

	require.Len(t, cfg.Groups, 2)
	require.Equal(t, 3, cfg.Groups[0].Count, "group order follows the config file")
	require.Equal(t, 5, cfg.Groups[1].Count)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestValidateFailures(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		cfg.Run.ModelPath = "m"
		cfg.Run.OutputBase = "out.eval"
		cfg.Groups = []Group{{Count: 3, Videos: "g3.txt"}}
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing model", func(c *Config) { c.Run.ModelPath = "" }},
		{"missing output base", func(c *Config) { c.Run.OutputBase = "" }},
		{"no groups", func(c *Config) { c.Groups = nil }},
		{"zero count", func(c *Config) { c.Groups[0].Count = 0 }},
		{"missing videos", func(c *Config) { c.Groups[0].Videos = "" }},
		{"duplicate count", func(c *Config) { c.Groups = append(c.Groups, Group{Count: 3, Videos: "x.txt"}) }},
		{"display without preview", func(c *Config) { c.Run.ShowLiveDisplay = true; c.Run.PreviewPath = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}

	require.NoError(t, base().Validate())
}
