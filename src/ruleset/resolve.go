package ruleset

import (
	"fmt"
	"strconv"
	"strings"
)

// EffectiveConfig is the flattened configuration for one target path, in the
// shape the external engine consumes.
type EffectiveConfig struct {
	Env           map[string]bool `json:"env" yaml:"env"`
	Parser        string          `json:"parser,omitempty" yaml:"parser,omitempty"`
	ParserOptions map[string]any  `json:"parserOptions" yaml:"parserOptions"`
	Plugins       []string        `json:"plugins" yaml:"plugins"`
	Rules         RuleTable       `json:"rules" yaml:"rules"`

	// Applied labels the override blocks merged into this config, in
	// application order. Not part of the engine-facing output.
	Applied []string `json:"-" yaml:"-"`
}

func newEffectiveConfig() *EffectiveConfig {
	return &EffectiveConfig{
		Env:           map[string]bool{},
		ParserOptions: map[string]any{},
		Plugins:       []string{},
		Rules:         RuleTable{},
	}
}

func (c *EffectiveConfig) clone() *EffectiveConfig {
	out := &EffectiveConfig{
		Env:           make(map[string]bool, len(c.Env)),
		Parser:        c.Parser,
		ParserOptions: make(map[string]any, len(c.ParserOptions)),
		Plugins:       append([]string{}, c.Plugins...),
		Rules:         make(RuleTable, len(c.Rules)),
		Applied:       append([]string(nil), c.Applied...),
	}
	for k, v := range c.Env {
		out.Env[k] = v
	}
	for k, v := range c.ParserOptions {
		out.ParserOptions[k] = v
	}
	for k, v := range c.Rules {
		out.Rules[k] = v
	}
	return out
}

// merge layers one set of settings on top of the config. Rules and parser
// options are replaced per key as whole values; env flags overwrite per
// name; plugins are appended once each in first-seen order.
func (c *EffectiveConfig) merge(env map[string]bool, parser string, parserOptions map[string]any, plugins []string, rules RuleTable) {
	for k, v := range env {
		c.Env[k] = v
	}
	if parser != "" {
		c.Parser = parser
	}
	for k, v := range parserOptions {
		c.ParserOptions[k] = v
	}
	for _, p := range plugins {
		if !containsString(c.Plugins, p) {
			c.Plugins = append(c.Plugins, p)
		}
	}
	for name, rs := range rules {
		c.Rules[name] = rs
	}
}

type compiledOverride struct {
	label string
	block *OverrideBlock
}

// Resolver holds the flattened fragment chain, its base merge and every
// override block in application order.
type Resolver struct {
	chain     []*Fragment
	base      *EffectiveConfig
	overrides []compiledOverride
}

// NewResolver flattens the extends graph of fragments, validates every
// override pattern in the chain and merges the base layer. Any unresolved
// reference, cycle or malformed pattern fails construction.
func NewResolver(fragments ...*Fragment) (*Resolver, error) {
	chain, err := Flatten(fragments)
	if err != nil {
		return nil, err
	}

	r := &Resolver{chain: chain, base: newEffectiveConfig()}
	for _, f := range chain {
		for i := range f.Overrides {
			block := &f.Overrides[i]
			if err := block.validate(f.Name); err != nil {
				return nil, err
			}
			r.overrides = append(r.overrides, compiledOverride{
				label: fmt.Sprintf("%s#%d", f.Name, i),
				block: block,
			})
		}
		r.base.merge(f.Env, f.Parser, f.ParserOptions, f.Plugins, f.Rules)
	}
	return r, nil
}

// Resolve builds the effective configuration of fragments for targetPath.
func Resolve(fragments []*Fragment, targetPath string) (*EffectiveConfig, error) {
	r, err := NewResolver(fragments...)
	if err != nil {
		return nil, err
	}
	return r.Resolve(targetPath), nil
}

// Resolve returns the effective configuration for targetPath, a path
// relative to the directory the fragments' patterns are written against.
func (r *Resolver) Resolve(targetPath string) *EffectiveConfig {
	return r.Apply(r.Match(targetPath))
}

// Match returns the indexes of the override blocks that apply to
// targetPath, in application order.
func (r *Resolver) Match(targetPath string) []int {
	name := NormalizePath(targetPath)
	var matched []int
	for i, o := range r.overrides {
		if o.block.Matches(name) {
			matched = append(matched, i)
		}
	}
	return matched
}

// Apply layers the given override blocks, by index from Match, onto a copy
// of the base merge.
func (r *Resolver) Apply(matched []int) *EffectiveConfig {
	cfg := r.base.clone()
	for _, i := range matched {
		o := r.overrides[i]
		b := o.block
		cfg.merge(b.Env, b.Parser, b.ParserOptions, b.Plugins, b.Rules)
		cfg.Applied = append(cfg.Applied, o.label)
	}
	return cfg
}

// Base returns a copy of the merge with no override applied.
func (r *Resolver) Base() *EffectiveConfig { return r.base.clone() }

// Chain returns the flattened fragments, least specific first.
func (r *Resolver) Chain() []*Fragment { return append([]*Fragment(nil), r.chain...) }

// Overrides returns the labels of every override block in application
// order. A label is the owning fragment's name and the block's index in it.
func (r *Resolver) Overrides() []string {
	labels := make([]string, len(r.overrides))
	for i, o := range r.overrides {
		labels[i] = o.label
	}
	return labels
}

// Signature encodes a Match result. Paths with equal signatures resolve to
// identical configurations.
func Signature(matched []int) string {
	parts := make([]string, len(matched))
	for i, m := range matched {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, ",")
}

// MaxChainLength bounds the flattened chain. Repeated diamonds double the
// chain per level, so a small graph can otherwise expand without limit.
var MaxChainLength = 4096

// Flatten expands the extends graph of each fragment depth-first and
// concatenates the results: every base precedes the fragment extending it,
// and earlier inputs precede later ones. A fragment reached along two paths
// appears once per path.
func Flatten(fragments []*Fragment) ([]*Fragment, error) {
	var chain []*Fragment
	for _, f := range fragments {
		if f == nil {
			return nil, &ConfigLoadError{Ref: "<nil>", Err: fmt.Errorf("nil fragment")}
		}
		if err := flatten(f, nil, &chain); err != nil {
			return nil, err
		}
	}
	return chain, nil
}

func flatten(f *Fragment, stack []*Fragment, chain *[]*Fragment) error {
	for _, seen := range stack {
		if seen == f {
			return &ConfigLoadError{Ref: f.Name, Err: ErrExtendsCycle}
		}
	}
	stack = append(stack, f)

	for _, ref := range f.Extends {
		if ref.Fragment == nil {
			return &ConfigLoadError{
				Ref: ref.Ref,
				Err: fmt.Errorf("%w (extended by %s)", ErrUnresolvedExtends, f.Name),
			}
		}
		if err := flatten(ref.Fragment, stack, chain); err != nil {
			return err
		}
	}
	if len(*chain) >= MaxChainLength {
		return &ConfigLoadError{
			Ref: f.Name,
			Err: fmt.Errorf("%w (more than %d fragments)", ErrChainTooLong, MaxChainLength),
		}
	}
	*chain = append(*chain, f)
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
