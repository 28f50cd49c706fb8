// Package config loads the optional .bessyrc.yaml a user may keep alongside
// the scripts they run, controlling REPL and CLI behavior that isn't worth
// a flag.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level shape of .bessyrc.yaml.
type Config struct {
	// Disassemble, when true, makes the CLI print each chunk's disassembly
	// to stderr before running it. Equivalent to the --disassemble flag;
	// the flag wins if both are set.
	Disassemble bool `yaml:"disassemble,omitempty"`

	// HistoryFile names the sqlite database the REPL appends accepted
	// lines to. Defaults to "" (history disabled) when omitted.
	HistoryFile string `yaml:"history_file,omitempty"`

	// Prompt overrides the REPL's primary prompt string. Defaults to ">>> "
	// when empty.
	Prompt string `yaml:"prompt,omitempty"`
}

// Default returns the configuration used when no .bessyrc.yaml is present.
func Default() Config {
	return Config{Prompt: ">>> "}
}

// Load reads and parses the YAML file at path. A missing file is not an
// error: it returns Default() unchanged, since .bessyrc.yaml is optional.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Prompt == "" {
		cfg.Prompt = ">>> "
	}
	return cfg, nil
}
