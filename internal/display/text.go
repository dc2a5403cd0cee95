// Package display renders a countdown state as plain console text or as a
// full-screen terminal view.
package display

import (
	"fmt"
	"io"
	"strings"

	"releaseday/internal/countdown"
)

// Labels are the human texts around the numbers.
type Labels struct {
	Title      string
	Subtitle   string
	Motivation string
	Celebrate  string
	ShareText  string
	ShareLink  string
}

// Text renders s the way the console mode prints it.
func Text(s countdown.State, l Labels) string {
	var b strings.Builder
	WriteText(&b, s, l)
	return b.String()
}

func WriteText(w io.Writer, s countdown.State, l Labels) {
	switch st := s.(type) {
	case countdown.Counting:
		if l.Title != "" {
			fmt.Fprintln(w, l.Title)
		}
		if l.Subtitle != "" {
			fmt.Fprintln(w, l.Subtitle)
		}
		fmt.Fprintln(w)
		for _, c := range st.Remaining.Cells() {
			fmt.Fprintf(w, "  %-8s %s  %s\n", c.Unit+":", c.Value, c.Label)
		}
		if l.Motivation != "" {
			fmt.Fprintf(w, "\n%s\n", l.Motivation)
		}
	case countdown.Finished:
		fmt.Fprintln(w, l.Celebrate)
		if l.ShareText != "" {
			fmt.Fprintf(w, "\nShare: %s\n", l.ShareText)
		}
		if l.ShareLink != "" {
			fmt.Fprintf(w, "  %s\n", l.ShareLink)
		}
	}
}

// Line is a single-line rendering used by the watch mode.
func Line(s countdown.State, l Labels) string {
	if c, ok := s.(countdown.Counting); ok {
		cells := c.Remaining.Cells()
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = cell.Value
		}
		return strings.Join(parts, " : ")
	}
	return l.Celebrate
}
