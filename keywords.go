package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeywordOverrides extends the built-in detection keyword sets from a
// YAML file. Entries are uppercased and deduplicated against the
// defaults; the built-in sets themselves are never removed from.
type KeywordOverrides struct {
	Streaming []string `yaml:"streaming"`
	Reset     []string `yaml:"reset"`
}

func LoadKeywordOverrides(path string) (*KeywordOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword overrides: %w", err)
	}
	var o KeywordOverrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parse keyword overrides yaml: %w", err)
	}
	return &o, nil
}
