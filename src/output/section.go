package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// width is the inner width of a section frame.
const width = 61

// Status marks the outcome of one row in a section.
type Status int

const (
	StatusOK Status = iota
	StatusWarn
	StatusFailed
)

// Section is a box-framed block of output rows.
type Section struct {
	w     io.Writer
	name  string
	color bool
}

// NewSection writes the header of a section named name. A non-zero elapsed
// is printed at the right end of the header.
func NewSection(w io.Writer, name string, elapsed time.Duration, color bool) *Section {
	s := &Section{w: w, name: name, color: color}

	label := "── " + name + " "
	tail := "──"
	if elapsed > 0 {
		tail = " " + formatElapsed(elapsed) + " ──"
	}
	fill := max(width+4-len(label)-len(tail), 1)
	header := label + strings.Repeat("─", fill) + tail
	if color {
		header = "\033[2;36m" + header + colorReset
	}
	fmt.Fprintf(w, "\n    %s\n", header)
	return s
}

func (s *Section) Row(format string, args ...any) {
	fmt.Fprintf(s.w, "    │ %s\n", fmt.Sprintf(format, args...))
}

// StatusRow writes a row led by the icon of st.
func (s *Section) StatusRow(st Status, format string, args ...any) {
	s.Row("%s %s", st.Icon(s.color), fmt.Sprintf(format, args...))
}

func (s *Section) Separator() { s.rule("├") }

func (s *Section) Close() { s.rule("└") }

func (s *Section) rule(corner string) {
	fmt.Fprintf(s.w, "    %s%s\n", corner, strings.Repeat("─", width))
}

// Icon renders the status as a single glyph.
func (st Status) Icon(color bool) string {
	glyph, code := "⊘", colorYellow
	switch st {
	case StatusOK:
		glyph, code = "✓", colorGreen
	case StatusFailed:
		glyph, code = "✗", colorRed
	}
	if !color {
		return glyph
	}
	return code + glyph + colorReset
}

// Dimmed returns text in gray when color is enabled.
func Dimmed(text string, color bool) string {
	if !color {
		return text
	}
	return colorGray + text + colorReset
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	return fmt.Sprintf("%dm%.1fs", mins, d.Seconds()-float64(mins*60))
}
