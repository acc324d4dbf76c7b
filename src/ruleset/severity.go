package ruleset

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Severity is the level the external engine reports a rule at.
type Severity int

const (
	SeverityOff Severity = iota
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity accepts the names off, warn and error (any case) and the
// numbers 0, 1 and 2 in whatever numeric type a document decoder produced.
func ParseSeverity(v any) (Severity, error) {
	switch val := v.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "off":
			return SeverityOff, nil
		case "warn":
			return SeverityWarn, nil
		case "error":
			return SeverityError, nil
		}
	case int:
		return severityFromInt(int64(val), v)
	case int64:
		return severityFromInt(val, v)
	case int32:
		return severityFromInt(int64(val), v)
	case uint64:
		if val <= math.MaxInt64 {
			return severityFromInt(int64(val), v)
		}
	case float64:
		if val == math.Trunc(val) {
			return severityFromInt(int64(val), v)
		}
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return severityFromInt(n, v)
		}
	}
	return SeverityOff, fmt.Errorf("invalid severity %v (expected off, warn, error or 0-2)", v)
}

func severityFromInt(n int64, raw any) (Severity, error) {
	if n < int64(SeverityOff) || n > int64(SeverityError) {
		return SeverityOff, fmt.Errorf("invalid severity %v (expected off, warn, error or 0-2)", raw)
	}
	return Severity(n), nil
}
