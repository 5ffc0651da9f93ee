package appcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Language             string `yaml:"language"`  // "en" | "ru"
	LogLevel             string `yaml:"log_level"` // "debug"|"info"|"warn"|"error"
	HideSecretsInConsole bool   `yaml:"hide_secrets_in_console"`
	Workers              int    `yaml:"workers"`      // default worker pool size
	ResultsBase          string `yaml:"results_base"` // base dir for per-run result stores
	ChainsFile           string `yaml:"chains_file"`  // path to chains.yaml
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open app config %q: %w", path, err)
	}
	defer f.Close()

	var c Config
	if err := yaml.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode app yaml %q: %w", path, err)
	}

	// defaults
	if c.Language == "" {
		c.Language = "en"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Workers <= 0 {
		c.Workers = 16
	}
	if c.ResultsBase == "" {
		c.ResultsBase = "results"
	}
	if c.ChainsFile == "" {
		c.ChainsFile = "configs/chains.yaml"
	}
	return &c, nil
}
