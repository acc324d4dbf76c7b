package cmd

import (
	"fmt"
	"io/fs"

	"github.com/sofmeright/lintconf/src/loader"
	"github.com/sofmeright/lintconf/src/presets"
	"github.com/sofmeright/lintconf/src/ruleset"
	"github.com/sofmeright/lintconf/src/version"
)

// newLoader searches the embedded presets before any configured preset
// directory.
func newLoader() *loader.Loader {
	presetFS := append([]fs.FS{presets.FS()}, cfg.Presets.FS()...)
	return loader.NewLoader(loader.Options{
		Presets:     presetFS,
		PluginDirs:  cfg.Plugins.FS(),
		ToolVersion: version.Version,
	}, log)
}

// fragmentRefs returns the --fragment flag values when given, otherwise
// the configured fragments.
func fragmentRefs(flagRefs []string) []string {
	if len(flagRefs) > 0 {
		return flagRefs
	}
	return cfg.Fragments
}

func buildResolver(l *loader.Loader, refs []string) (*ruleset.Resolver, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("no fragments configured")
	}
	frags, err := l.LoadAll(refs)
	if err != nil {
		return nil, err
	}
	r, err := ruleset.NewResolver(frags...)
	if err != nil {
		return nil, err
	}
	log.Debugf("resolver: %d fragments, %d override blocks", len(r.Chain()), len(r.Overrides()))
	return r, nil
}
