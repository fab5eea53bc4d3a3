package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// rcConfig is the optional `.funcscriptrc.yaml` read from the user's home
// directory (spec.md §10.4): REPL prompt, history file path, and the
// indent width used when pretty-printing JSON results.
type rcConfig struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"historyFile"`
	PrettyWidth int    `yaml:"prettyWidth"`
}

func defaultConfig() rcConfig {
	return rcConfig{Prompt: "fs> ", HistoryFile: "", PrettyWidth: 0}
}

// loadConfig reads ~/.funcscriptrc.yaml if present, overlaying any of its
// fields onto the defaults. A missing or malformed file is not reported;
// either silently falls back to defaults so the REPL still starts.
func loadConfig() rcConfig {
	cfg := defaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg
	}
	path := filepath.Join(home, ".funcscriptrc.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	var loaded rcConfig
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return cfg
	}
	if loaded.Prompt != "" {
		cfg.Prompt = loaded.Prompt
	}
	if loaded.HistoryFile != "" {
		cfg.HistoryFile = loaded.HistoryFile
	}
	if loaded.PrettyWidth > 0 {
		cfg.PrettyWidth = loaded.PrettyWidth
	}
	return cfg
}
