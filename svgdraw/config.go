package svgdraw

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the builder settings which may be stored
// in a YAML file, such as:
//
//	ignore: [filter, mask]
//	language: fr
//	antialias: true
//	assets: ./assets
type Config struct {
	Ignore    IgnoreAttributes `yaml:"ignore,omitempty"`
	Language  string           `yaml:"language,omitempty"`
	Antialias *bool            `yaml:"antialias,omitempty"`
	// Assets is the directory used to load images and fonts.
	Assets string `yaml:"assets,omitempty"`
}

// DefaultConfig returns the settings used when no file is provided.
func DefaultConfig() *Config {
	return &Config{Language: "en"}
}

// LoadConfig reads the YAML file at `path`. A missing file
// is not an error: the default config is returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML content, with defaults for missing fields.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Language = strings.TrimSpace(cfg.Language)
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return cfg, nil
}

// Options returns the builder options matching the config.
func (cfg *Config) Options() []Option {
	opts := []Option{WithLanguage(cfg.Language)}
	if cfg.Antialias != nil {
		opts = append(opts, WithAntialias(*cfg.Antialias))
	}
	if cfg.Assets != "" {
		opts = append(opts, WithAssetLoader(FSLoader{FS: os.DirFS(cfg.Assets)}))
	}
	return opts
}

// UnmarshalYAML accepts either a list of flag names
// or a single string, see UnmarshalText.
func (ia *IgnoreAttributes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var names []string
		if err := value.Decode(&names); err != nil {
			return err
		}
		return ia.UnmarshalText([]byte(strings.Join(names, "|")))
	}
	return ia.UnmarshalText([]byte(value.Value))
}

// MarshalYAML writes the flags as a list of names.
func (ia IgnoreAttributes) MarshalYAML() (interface{}, error) {
	var names []string
	for _, n := range ignoreNames {
		if ia&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return names, nil
}
