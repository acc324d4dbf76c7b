// Package loader reads fragment documents from disk, preset trees and
// plugin preset directories, and links their extends references into a
// graph the ruleset package can flatten.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	masterminds "github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/sofmeright/lintconf/src/ruleset"
)

// Options configures where references are looked up.
type Options struct {
	// Presets are searched in order for bare references such as "base" or
	// "eslint-core/variables".
	Presets []fs.FS

	// PluginDirs are searched in order for "plugin:<plugin>/<config>"
	// references, as <plugin-id>/<config>.<ext>.
	PluginDirs []fs.FS

	// ToolVersion is checked against each fragment's requires constraint.
	// A version that is not semver skips the check.
	ToolVersion string
}

// Loader loads fragments and links their extends graphs. Within the
// lifetime of a Loader every document is parsed once, so fragments reached
// along several paths are shared.
type Loader struct {
	opts Options
	log  *logrus.Logger

	mu      sync.Mutex
	docs    map[string]*ruleset.Fragment
	loading map[string]bool
	files   map[string]struct{}
}

// NewLoader creates a loader. A nil log defaults to logrus.New().
func NewLoader(opts Options, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.New()
	}
	return &Loader{
		opts:    opts,
		log:     log,
		docs:    make(map[string]*ruleset.Fragment),
		loading: make(map[string]bool),
		files:   make(map[string]struct{}),
	}
}

// Reset forgets every loaded document so the next load reads from source
// again.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.docs = make(map[string]*ruleset.Fragment)
	l.loading = make(map[string]bool)
	l.files = make(map[string]struct{})
}

// LoadFile loads the document at a path on disk.
func (l *Loader) LoadFile(p string) (*ruleset.Fragment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	clean := filepath.Clean(p)
	doc, tried, ok := document{path: clean}.locate()
	if !ok {
		return nil, notFound(p, tried)
	}
	doc.name = filepath.ToSlash(doc.path)
	return l.load(doc, p)
}

// Load resolves a root reference. Path-like references ("./x", "../x",
// absolute paths, or names with a document extension) are read from disk
// relative to the working directory; "plugin:" references and bare names
// are looked up in the configured plugin and preset trees.
func (l *Loader) Load(ref string) (*ruleset.Fragment, error) {
	if isPathRef(ref) {
		return l.LoadFile(ref)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	doc, err := l.resolve(nil, ref)
	if err != nil {
		return nil, err
	}
	return l.load(doc, ref)
}

// LoadAll loads each root reference in order.
func (l *Loader) LoadAll(refs []string) ([]*ruleset.Fragment, error) {
	out := make([]*ruleset.Fragment, 0, len(refs))
	for _, ref := range refs {
		f, err := l.Load(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Files returns every on-disk document read so far, including ones that
// failed to parse, sorted.
func (l *Loader) Files() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.files))
	for f := range l.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (l *Loader) load(doc document, ref string) (*ruleset.Fragment, error) {
	key := doc.key()
	if f, ok := l.docs[key]; ok {
		return f, nil
	}
	if l.loading[key] {
		return nil, &ruleset.ConfigLoadError{Ref: ref, Err: ruleset.ErrExtendsCycle}
	}
	l.loading[key] = true
	defer delete(l.loading, key)

	if doc.fsys == nil {
		l.files[doc.path] = struct{}{}
	}

	data, err := doc.read()
	if err != nil {
		return nil, &ruleset.ConfigLoadError{Ref: ref, Err: err}
	}
	raw, err := decodeDocument(doc.path, data)
	if err != nil {
		return nil, &ruleset.ConfigLoadError{Ref: ref, Err: err}
	}
	if err := ValidateDocument(raw); err != nil {
		return nil, &ruleset.ConfigLoadError{Ref: ref, Err: err}
	}
	f, err := ruleset.DecodeFragment(doc.name, raw)
	if err != nil {
		return nil, &ruleset.ConfigLoadError{Ref: ref, Err: err}
	}
	if err := l.checkRequires(f); err != nil {
		return nil, &ruleset.ConfigLoadError{Ref: ref, Err: err}
	}

	for i := range f.Extends {
		childRef := f.Extends[i].Ref
		child, err := l.resolve(&doc, childRef)
		if err != nil {
			return nil, err
		}
		l.log.Debugf("%s: extends %q -> %s", doc.name, childRef, child.name)

		cf, err := l.load(child, childRef)
		if err != nil {
			return nil, err
		}
		f.Extends[i].Fragment = cf
	}

	l.docs[key] = f
	return f, nil
}

// resolve maps a reference to a located document. from is the referencing
// document, or nil for root references.
func (l *Loader) resolve(from *document, ref string) (document, error) {
	switch {
	case strings.HasPrefix(ref, "plugin:"):
		return l.resolvePlugin(ref)

	case isRelative(ref) || filepath.IsAbs(ref) || (from != nil && knownExt(ref)):
		var target document
		switch {
		case filepath.IsAbs(ref):
			target = document{path: filepath.Clean(ref)}
		case from != nil:
			target = from.join(ref)
		default:
			target = document{path: filepath.Clean(ref)}
		}
		found, tried, ok := target.locate()
		if !ok {
			return document{}, notFound(ref, tried)
		}
		if found.fsys == nil {
			found.name = filepath.ToSlash(found.path)
		} else {
			found.name = strings.TrimSuffix(found.path, path.Ext(found.path))
		}
		return found, nil

	default:
		return l.resolvePreset(ref)
	}
}

func (l *Loader) resolvePreset(ref string) (document, error) {
	var tried []string
	for i, fsys := range l.opts.Presets {
		doc := document{fsys: fsys, origin: fmt.Sprintf("preset[%d]", i), path: ref, name: ref}
		found, candidates, ok := doc.locate()
		if ok {
			return found, nil
		}
		tried = append(tried, prefixAll(doc.origin+":", candidates)...)
	}
	return document{}, notFound(ref, tried)
}

func (l *Loader) resolvePlugin(ref string) (document, error) {
	target := strings.TrimPrefix(ref, "plugin:")
	i := strings.LastIndex(target, "/")
	if i <= 0 || i == len(target)-1 {
		return document{}, &ruleset.ConfigLoadError{
			Ref: ref,
			Err: errors.New("plugin references take the form plugin:<plugin>/<config>"),
		}
	}
	plugin, config := ruleset.PluginID(target[:i]), target[i+1:]

	var tried []string
	for n, fsys := range l.opts.PluginDirs {
		doc := document{
			fsys:   fsys,
			origin: fmt.Sprintf("plugins[%d]", n),
			path:   path.Join(plugin, config),
			name:   ref,
		}
		found, candidates, ok := doc.locate()
		if ok {
			return found, nil
		}
		tried = append(tried, prefixAll(doc.origin+":", candidates)...)
	}
	return document{}, notFound(ref, tried)
}

func (l *Loader) checkRequires(f *ruleset.Fragment) error {
	if f.Requires == "" {
		return nil
	}
	constraint, err := masterminds.NewConstraint(f.Requires)
	if err != nil {
		return fmt.Errorf("requires %q: %w", f.Requires, err)
	}
	v, err := masterminds.NewVersion(l.opts.ToolVersion)
	if err != nil {
		l.log.Debugf("%s: tool version %q is not semver, skipping requires %q", f.Name, l.opts.ToolVersion, f.Requires)
		return nil
	}
	if ok, reasons := constraint.Validate(v); !ok {
		msgs := make([]string, len(reasons))
		for i, r := range reasons {
			msgs[i] = r.Error()
		}
		return fmt.Errorf("requires %s: %s", f.Requires, strings.Join(msgs, "; "))
	}
	return nil
}

func notFound(ref string, tried []string) error {
	if len(tried) == 0 {
		return &ruleset.ConfigLoadError{Ref: ref, Err: fmt.Errorf("%w (no search locations configured)", fs.ErrNotExist)}
	}
	return &ruleset.ConfigLoadError{
		Ref: ref,
		Err: fmt.Errorf("%w (tried %s)", fs.ErrNotExist, strings.Join(tried, ", ")),
	}
}

func isRelative(ref string) bool {
	return strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../")
}

func isPathRef(ref string) bool {
	return isRelative(ref) || filepath.IsAbs(ref) || knownExt(ref)
}

func prefixAll(prefix string, items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = prefix + s
	}
	return out
}
