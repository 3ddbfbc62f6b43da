package rubble

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Feature flag names understood by the hint engine.
const (
	FeatureImplicitRescue    = "implicitRescue"
	FeatureImplicitHashValue = "implicitHashValue"
)

// ErrConfigNotFound is returned when no config file exists in the directory
// tree.
var ErrConfigNotFound = errors.New("no .rubble.yaml found")

// Config represents the .rubble.yaml configuration file. Its only capability
// consumers should rely on is Enabled; how a flag resolves (explicit entry,
// the enable-all override, or the default) is internal.
type Config struct {
	// EnableAll forces every feature on regardless of individual entries.
	EnableAll bool `yaml:"enableAll,omitempty"`

	// Features toggles individual features by name. Features not listed
	// default to enabled.
	Features map[string]bool `yaml:"features,omitempty"`
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".rubble.yaml", ".rubble.yml", "rubble.yaml", "rubble.yml"}

// DefaultConfig returns the configuration used when no file is present:
// everything enabled.
func DefaultConfig() *Config {
	return &Config{}
}

// Enabled reports whether a named feature is on.
func (c *Config) Enabled(name string) bool {
	if c.EnableAll {
		return true
	}

	if v, ok := c.Features[name]; ok {
		return v
	}

	return true
}

// Set overrides a single feature toggle.
func (c *Config) Set(name string, on bool) {
	if c.Features == nil {
		c.Features = make(map[string]bool)
	}

	c.Features[name] = on
}

// LoadConfig finds and loads the nearest .rubble.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig searches for a config file starting from dir and walking up.
func FindConfig(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for dir := absDir; ; {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}
