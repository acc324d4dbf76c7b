package ruleset

import (
	"fmt"
	"strings"
)

// UnknownRuleWarning names a rule whose plugin prefix is not in the plugin
// set of a resolved config. The resolver never raises it; diagnostics
// report it and the engine decides what to do.
type UnknownRuleWarning struct {
	Rule   string
	Plugin string
}

func (w UnknownRuleWarning) String() string {
	return fmt.Sprintf("rule %q belongs to plugin %q, which is not loaded", w.Rule, w.Plugin)
}

// PluginID returns the short identity of a plugin package name, the form
// rule identifiers are prefixed with:
//
//	eslint-plugin-mocha                           -> mocha
//	@typescript-eslint/eslint-plugin              -> @typescript-eslint
//	@fintechstudios/eslint-plugin-chai-as-promised -> @fintechstudios/chai-as-promised
func PluginID(name string) string {
	const prefix = "eslint-plugin-"
	if strings.HasPrefix(name, "@") {
		scope, rest, ok := strings.Cut(name, "/")
		if !ok {
			return name
		}
		if rest == "eslint-plugin" {
			return scope
		}
		return scope + "/" + strings.TrimPrefix(rest, prefix)
	}
	return strings.TrimPrefix(name, prefix)
}

// RulePlugin returns the plugin prefix of a rule identifier, or "" for core
// rules.
func RulePlugin(rule string) string {
	i := strings.LastIndex(rule, "/")
	if i <= 0 {
		return ""
	}
	return rule[:i]
}

// UnknownRules lists rules in cfg whose plugin prefix matches none of
// cfg.Plugins, sorted by rule name.
func UnknownRules(cfg *EffectiveConfig) []UnknownRuleWarning {
	loaded := make(map[string]bool, len(cfg.Plugins))
	for _, p := range cfg.Plugins {
		loaded[PluginID(p)] = true
	}

	var warnings []UnknownRuleWarning
	for _, name := range cfg.Rules.Names() {
		plugin := RulePlugin(name)
		if plugin == "" || loaded[plugin] {
			continue
		}
		warnings = append(warnings, UnknownRuleWarning{Rule: name, Plugin: plugin})
	}
	return warnings
}
