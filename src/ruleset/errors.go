package ruleset

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedExtends marks an extends reference no loader linked.
	ErrUnresolvedExtends = errors.New("extends reference is not resolved")

	// ErrExtendsCycle marks a fragment that extends itself, directly or not.
	ErrExtendsCycle = errors.New("extends cycle")

	// ErrChainTooLong marks an extends graph whose flattened chain exceeds
	// MaxChainLength, typically through nested diamonds.
	ErrChainTooLong = errors.New("flattened extends chain is too long")

	errNoFiles = errors.New("override block has no file patterns")
)

// ConfigLoadError reports a fragment that could not be located, parsed or
// linked. Resolution stops at the first one.
type ConfigLoadError struct {
	Ref string
	Err error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("loading config %q: %v", e.Ref, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// InvalidPatternError reports an override file pattern that is not a valid
// glob.
type InvalidPatternError struct {
	Fragment string
	Pattern  string
	Err      error
}

func (e *InvalidPatternError) Error() string {
	if e.Pattern == "" {
		return fmt.Sprintf("%s: %v", e.Fragment, e.Err)
	}
	return fmt.Sprintf("%s: invalid file pattern %q: %v", e.Fragment, e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }
