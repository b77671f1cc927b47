// Package config loads the optional .efmt.yaml project configuration:
// soft column width and excluded paths, in the same gopkg.in/yaml.v3
// style the teacher's own internal/encoding/yaml wraps.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of .efmt.yaml.
type Config struct {
	Width   int      `yaml:"width"`
	Exclude []string `yaml:"exclude"`
}

// Default returns the zero-value configuration: width 0 (meaning "use
// format.DefaultSoftWidth") and no excluded paths.
func Default() Config { return Config{} }

// Load reads .efmt.yaml from dir, returning Default() if the file does not
// exist. Any other I/O or parse error is returned to the caller.
func Load(dir string) (Config, error) {
	path := filepath.Join(dir, ".efmt.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Excludes reports whether path matches one of the configured exclude
// globs (matched against the base name, the way .gitignore-style tools
// that only need shallow exclusion typically behave).
func (c Config) Excludes(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range c.Exclude {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
