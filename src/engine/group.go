package engine

import "github.com/sofmeright/lintconf/src/ruleset"

// Group is a set of files that resolve to the same effective config.
type Group struct {
	Signature string
	Applied   []string
	Files     []string
	Config    *ruleset.EffectiveConfig
}

// GroupResults collects results by signature, in order of each group's first
// file.
func GroupResults(results []FileResult) []Group {
	index := map[string]int{}
	var groups []Group
	for _, r := range results {
		i, ok := index[r.Signature]
		if !ok {
			i = len(groups)
			index[r.Signature] = i
			groups = append(groups, Group{
				Signature: r.Signature,
				Applied:   r.Config.Applied,
				Config:    r.Config,
			})
		}
		groups[i].Files = append(groups[i].Files, r.Path)
	}
	return groups
}
