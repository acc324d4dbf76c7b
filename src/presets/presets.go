// Package presets embeds the shipped shareable configurations.
package presets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed data
var data embed.FS

// FS returns the preset tree rooted so that "base" resolves to base.yaml.
func FS() fs.FS {
	sub, err := fs.Sub(data, "data")
	if err != nil {
		panic(fmt.Sprintf("presets: %v", err))
	}
	return sub
}

// Names lists every shipped preset, sorted.
func Names() []string {
	var names []string
	_ = fs.WalkDir(FS(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if ext := path.Ext(p); ext == ".yaml" || ext == ".yml" {
			names = append(names, strings.TrimSuffix(p, ext))
		}
		return nil
	})
	sort.Strings(names)
	return names
}

// Source returns the raw document of a shipped preset.
func Source(name string) ([]byte, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		b, err := fs.ReadFile(FS(), name+ext)
		if err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(Names(), ", "))
}
