package ruleset

import (
	"fmt"
	"sort"
	"strings"
)

// Fragment is one loaded configuration document. It must not be modified
// after loading.
type Fragment struct {
	// Name identifies the document in errors and provenance labels,
	// usually the file path or preset reference it was loaded from.
	Name string

	Env           map[string]bool
	Parser        string
	ParserOptions map[string]any
	Plugins       []string
	Rules         RuleTable
	Overrides     []OverrideBlock

	// Extends lists the referenced base fragments in declaration order.
	Extends []Reference

	// Requires is an optional version constraint on the tool loading the
	// fragment. The loader enforces it; resolution ignores it.
	Requires string
}

// Reference is one extends entry. Fragment stays nil until a loader links it;
// resolving an unlinked reference fails.
type Reference struct {
	Ref      string
	Fragment *Fragment
}

// OverrideBlock applies its deltas to files matching any Files pattern and
// no ExcludedFiles pattern.
type OverrideBlock struct {
	Files         []string
	ExcludedFiles []string

	Env           map[string]bool
	Parser        string
	ParserOptions map[string]any
	Plugins       []string
	Rules         RuleTable
}

// Matches reports whether the block applies to a normalized slash path.
// A block is applied once no matter how many of its patterns match.
func (b *OverrideBlock) Matches(name string) bool {
	hit := false
	for _, p := range b.Files {
		if MatchFilePattern(p, name) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	for _, p := range b.ExcludedFiles {
		if MatchFilePattern(p, name) {
			return false
		}
	}
	return true
}

// validate checks every pattern of the block.
func (b *OverrideBlock) validate(fragment string) error {
	if len(b.Files) == 0 {
		return &InvalidPatternError{Fragment: fragment, Err: errNoFiles}
	}
	for _, p := range b.Files {
		if err := ValidateGlob(p); err != nil {
			return &InvalidPatternError{Fragment: fragment, Pattern: p, Err: err}
		}
	}
	for _, p := range b.ExcludedFiles {
		if err := ValidateGlob(p); err != nil {
			return &InvalidPatternError{Fragment: fragment, Pattern: p, Err: err}
		}
	}
	return nil
}

var fragmentKeys = map[string]bool{
	"env":           true,
	"parser":        true,
	"parserOptions": true,
	"plugins":       true,
	"extends":       true,
	"rules":         true,
	"overrides":     true,
	"requires":      true,
}

var overrideKeys = map[string]bool{
	"files":         true,
	"excludedFiles": true,
	"env":           true,
	"parser":        true,
	"parserOptions": true,
	"plugins":       true,
	"rules":         true,
}

// DecodeFragment normalizes a generic document, as produced by a YAML, JSON
// or TOML decoder, into a Fragment. Rule values are normalized here so that
// nothing downstream needs to inspect their raw shape. Extends references are
// recorded but not linked.
func DecodeFragment(name string, doc map[string]any) (*Fragment, error) {
	f := &Fragment{Name: name}
	if err := checkKeys(doc, fragmentKeys); err != nil {
		return nil, err
	}

	var err error
	if v, ok := doc["env"]; ok {
		if f.Env, err = decodeEnv(v); err != nil {
			return nil, fmt.Errorf("env: %w", err)
		}
	}
	if v, ok := doc["parser"]; ok {
		if f.Parser, err = asString(v); err != nil {
			return nil, fmt.Errorf("parser: %w", err)
		}
	}
	if v, ok := doc["parserOptions"]; ok {
		if f.ParserOptions, err = asObject(v); err != nil {
			return nil, fmt.Errorf("parserOptions: %w", err)
		}
	}
	if v, ok := doc["plugins"]; ok {
		if f.Plugins, err = asStringList(v); err != nil {
			return nil, fmt.Errorf("plugins: %w", err)
		}
	}
	if v, ok := doc["extends"]; ok {
		refs, err := asStringList(v)
		if err != nil {
			return nil, fmt.Errorf("extends: %w", err)
		}
		for _, ref := range refs {
			if strings.TrimSpace(ref) == "" {
				return nil, fmt.Errorf("extends: empty reference")
			}
			f.Extends = append(f.Extends, Reference{Ref: ref})
		}
	}
	if v, ok := doc["rules"]; ok {
		if f.Rules, err = decodeRuleTable(v); err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
	}
	if v, ok := doc["overrides"]; ok {
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("overrides: must be a list")
		}
		for i, item := range items {
			block, err := decodeOverride(item)
			if err != nil {
				return nil, fmt.Errorf("overrides[%d]: %w", i, err)
			}
			f.Overrides = append(f.Overrides, block)
		}
	}
	if v, ok := doc["requires"]; ok {
		if f.Requires, err = asString(v); err != nil {
			return nil, fmt.Errorf("requires: %w", err)
		}
	}
	return f, nil
}

func decodeOverride(v any) (OverrideBlock, error) {
	var b OverrideBlock
	raw, err := asObject(v)
	if err != nil {
		return b, err
	}
	if err := checkKeys(raw, overrideKeys); err != nil {
		return b, err
	}

	files, ok := raw["files"]
	if !ok {
		return b, fmt.Errorf("files is required")
	}
	if b.Files, err = asStringList(files); err != nil {
		return b, fmt.Errorf("files: %w", err)
	}
	if v, ok := raw["excludedFiles"]; ok {
		if b.ExcludedFiles, err = asStringList(v); err != nil {
			return b, fmt.Errorf("excludedFiles: %w", err)
		}
	}
	if v, ok := raw["env"]; ok {
		if b.Env, err = decodeEnv(v); err != nil {
			return b, fmt.Errorf("env: %w", err)
		}
	}
	if v, ok := raw["parser"]; ok {
		if b.Parser, err = asString(v); err != nil {
			return b, fmt.Errorf("parser: %w", err)
		}
	}
	if v, ok := raw["parserOptions"]; ok {
		if b.ParserOptions, err = asObject(v); err != nil {
			return b, fmt.Errorf("parserOptions: %w", err)
		}
	}
	if v, ok := raw["plugins"]; ok {
		if b.Plugins, err = asStringList(v); err != nil {
			return b, fmt.Errorf("plugins: %w", err)
		}
	}
	if v, ok := raw["rules"]; ok {
		if b.Rules, err = decodeRuleTable(v); err != nil {
			return b, fmt.Errorf("rules: %w", err)
		}
	}
	return b, nil
}

func checkKeys(doc map[string]any, known map[string]bool) error {
	var unknown []string
	for key := range doc {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("unknown keys: %s", strings.Join(unknown, ", "))
}

func decodeEnv(v any) (map[string]bool, error) {
	raw, err := asObject(v)
	if err != nil {
		return nil, err
	}
	env := make(map[string]bool, len(raw))
	for name, value := range raw {
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%s: must be a boolean", name)
		}
		env[name] = b
	}
	return env, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("must be a string")
	}
	return s, nil
}

// asStringList accepts a single string or a list of strings.
func asStringList(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []string:
		return append([]string(nil), val...), nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("must be a string or list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be a string or list of strings")
	}
}

// asObject accepts the map shapes produced by the supported decoders.
func asObject(v any) (map[string]any, error) {
	switch val := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return val, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			out[key] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be a mapping")
	}
}
