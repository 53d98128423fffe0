// Package config loads and validates the TOML run configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Run holds the evaluation run options.
type Run struct {
	// ModelPath is the detector model reference handed to the
	// inference backend (for the Ollama backend, a model id such as
	// "llama3.2-vision:11b").
	ModelPath               string `toml:"model_path"`
	OutputBase              string `toml:"output_base"`
	PersistResults          bool   `toml:"persist_results"`
	ShowLiveDisplay         bool   `toml:"show_live_display"`
	ResumeIfComplete        bool   `toml:"resume_if_complete"`
	PenalizeExtraDetections bool   `toml:"penalize_extra_detections"`
	PreviewPath             string `toml:"preview_path"`
}

// Group maps one expected animal count to its video list file.
type Group struct {
	Count  int    `toml:"count"`
	Videos string `toml:"videos"`
}

// Ollama contains connection settings for the inference backend.
type Ollama struct {
	BaseURL string `toml:"base_url"`
	Port    int    `toml:"port"`
}

// Postgres contains optional per-video result storage settings.
type Postgres struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"dbname"`
}

// Config is the full evaluation configuration. Groups keep their file
// order: the first group's identifier is what the resume check uses.
type Config struct {
	Run      Run      `toml:"run"`
	Groups   []Group  `toml:"group"`
	Ollama   Ollama   `toml:"ollama"`
	Postgres Postgres `toml:"postgres"`
}

// Default returns a configuration with usable backend defaults. Run
// paths and groups must still come from the config file.
func Default() *Config {
	return &Config{
		Run: Run{
			PersistResults:   true,
			ResumeIfComplete: true,
			PreviewPath:      "trackeval-preview.jpg",
		},
		Ollama: Ollama{
			BaseURL: "http://localhost",
			Port:    11434,
		},
		Postgres: Postgres{
			Host: "localhost",
			Port: "5432",
		},
	}
}

// Load reads the TOML file at path over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for the mistakes that would
// otherwise surface mid-run.
func (c *Config) Validate() error {
	if c.Run.ModelPath == "" {
		return errors.New("run.model_path is required")
	}
	if c.Run.OutputBase == "" {
		return errors.New("run.output_base is required")
	}
	if len(c.Groups) == 0 {
		return errors.New("at least one [[group]] entry is required")
	}
	seen := make(map[int]struct{}, len(c.Groups))
	for i, g := range c.Groups {
		if g.Count <= 0 {
			return fmt.Errorf("group %d: count must be a positive integer, got %d", i+1, g.Count)
		}
		if g.Videos == "" {
			return fmt.Errorf("group %d: videos list file is required", i+1)
		}
		if _, dup := seen[g.Count]; dup {
			return fmt.Errorf("group %d: duplicate count %d", i+1, g.Count)
		}
		seen[g.Count] = struct{}{}
	}
	if c.Run.ShowLiveDisplay && c.Run.PreviewPath == "" {
		return errors.New("run.preview_path is required when the live display is enabled")
	}
	return nil
}
