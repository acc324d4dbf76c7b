package config

import (
	"io/fs"
	"os"
)

// SourcesConfig lists extra directories searched for fragment documents.
type SourcesConfig struct {
	Dirs []string `yaml:"dirs"`
}

// DefaultSourcesConfig returns sensible defaults for source configuration.
func DefaultSourcesConfig() SourcesConfig {
	return SourcesConfig{Dirs: []string{}}
}

// FS opens each configured directory, in order. Directories that do not
// exist are skipped.
func (s SourcesConfig) FS() []fs.FS {
	var out []fs.FS
	for _, dir := range s.Dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		out = append(out, os.DirFS(dir))
	}
	return out
}
