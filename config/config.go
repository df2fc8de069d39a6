// Package config reads the optional YAML settings file of the lox command.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const FileName = ".loxrc.yaml"

type Config struct {
	Prompt             string `yaml:"prompt"`
	ContinuationPrompt string `yaml:"continuation_prompt"`
	// nil means decide from the terminal
	Color       *bool  `yaml:"color"`
	Style       string `yaml:"style"`
	DebugAST    bool   `yaml:"debug_ast"`
	DebugTokens bool   `yaml:"debug_tokens"`
	Trace       bool   `yaml:"trace"`
}

func Default() Config {
	return Config{
		Prompt:             "> ",
		ContinuationPrompt: ". ",
		Style:              "monokai",
	}
}

// DefaultPath is $HOME/.loxrc.yaml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}

// Load reads the file at path over the defaults. When explicit is false a
// missing file is not an error.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	if err := Decode(file, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r into cfg, leaving fields the document does not
// mention untouched. Unknown keys are an error.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	if cfg.Prompt == "" {
		cfg.Prompt = Default().Prompt
	}
	if cfg.ContinuationPrompt == "" {
		cfg.ContinuationPrompt = Default().ContinuationPrompt
	}
	return nil
}
