package config

import (
	"fmt"
	"os"

	"cycles/internal/game"

	"gopkg.in/yaml.v3"
)

// LoadTuning reads an optional YAML tuning file. Keys left out keep their
// defaults; an empty path returns the defaults unchanged.
func LoadTuning(path string) (game.Tuning, error) {
	tuning := game.DefaultTuning()
	if path == "" {
		return tuning, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return tuning, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &tuning); err != nil {
		return tuning, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := tuning.Validate(); err != nil {
		return tuning, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return tuning, nil
}
