package ruleset

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// MatchGlob matches a slash-separated path against a glob pattern.
// "**" as a whole segment spans zero or more segments; every other segment
// is matched with path.Match, so "*", "?" and character classes never cross
// a "/". Matching is case-sensitive.
func MatchGlob(pattern, name string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			for len(rest) > 0 && rest[0] == "**" {
				rest = rest[1:]
			}
			// Trailing ** takes everything left.
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}

		if len(segs) == 0 {
			return false
		}
		ok, err := path.Match(pat[0], segs[0])
		if err != nil || !ok {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

// MatchFilePattern applies an override pattern to a normalized path.
// Patterns containing "/" or "**" match against the full path; others match
// the base name only, so "*.test.ts" applies at any depth.
func MatchFilePattern(pattern, name string) bool {
	pattern = NormalizePath(pattern)
	if strings.Contains(pattern, "/") || strings.Contains(pattern, "**") {
		return MatchGlob(pattern, name)
	}
	return MatchGlob(pattern, path.Base(name))
}

// ValidateGlob reports a syntax error anywhere in pattern.
func ValidateGlob(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return errors.New("empty pattern")
	}
	for _, seg := range strings.Split(NormalizePath(pattern), "/") {
		if seg == "**" {
			continue
		}
		// path.Match checks the rest of the pattern even after a mismatch.
		if _, err := path.Match(seg, ""); err != nil {
			return err
		}
	}
	return nil
}

// NormalizePath converts a path to forward slashes and strips any leading
// "./".
func NormalizePath(p string) string {
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimPrefix(p, "./")
	}
	return p
}
