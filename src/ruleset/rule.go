package ruleset

import (
	"encoding/json"
	"fmt"
	"sort"
)

// RuleSetting is a normalized rule entry. Options holds everything that
// followed the severity in the array form; it is opaque to the resolver and
// must be treated as read-only because resolved configs share it with the
// fragments it came from.
type RuleSetting struct {
	Severity Severity
	Options  []any
}

// NormalizeRule converts a raw rule value into a RuleSetting. Accepted forms:
//
//	"error"
//	2
//	["error", {"limit": 1}]
//	["error", "isFinite", "isNaN"]
func NormalizeRule(v any) (RuleSetting, error) {
	list, ok := v.([]any)
	if !ok {
		sev, err := ParseSeverity(v)
		if err != nil {
			return RuleSetting{}, err
		}
		return RuleSetting{Severity: sev}, nil
	}

	if len(list) == 0 {
		return RuleSetting{}, fmt.Errorf("empty rule array")
	}
	sev, err := ParseSeverity(list[0])
	if err != nil {
		return RuleSetting{}, err
	}
	rs := RuleSetting{Severity: sev}
	if len(list) > 1 {
		rs.Options = append([]any(nil), list[1:]...)
	}
	return rs, nil
}

// Enabled reports whether the engine should run the rule at all.
func (r RuleSetting) Enabled() bool { return r.Severity != SeverityOff }

// wire returns the shape the host engine expects: a bare severity name, or an
// array when options are present.
func (r RuleSetting) wire() any {
	if len(r.Options) == 0 {
		return r.Severity.String()
	}
	out := make([]any, 0, len(r.Options)+1)
	out = append(out, r.Severity.String())
	return append(out, r.Options...)
}

func (r RuleSetting) MarshalJSON() ([]byte, error) { return json.Marshal(r.wire()) }

func (r RuleSetting) MarshalYAML() (any, error) { return r.wire(), nil }

// RuleTable maps rule identifiers to their settings.
type RuleTable map[string]RuleSetting

// Names returns the rule identifiers in sorted order.
func (t RuleTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns how many rules are at each severity.
func (t RuleTable) Count() (off, warn, errs int) {
	for _, rs := range t {
		switch rs.Severity {
		case SeverityOff:
			off++
		case SeverityWarn:
			warn++
		case SeverityError:
			errs++
		}
	}
	return off, warn, errs
}

func decodeRuleTable(v any) (RuleTable, error) {
	raw, err := asObject(v)
	if err != nil {
		return nil, err
	}
	table := make(RuleTable, len(raw))
	for name, value := range raw {
		rs, err := NormalizeRule(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		table[name] = rs
	}
	return table, nil
}
