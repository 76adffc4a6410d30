// Package prompt implements the interactive unit selection.
package prompt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Request is one parsed selection: either the merged graph or a single
// unit.
type Request struct {
	Merged bool
	Unit   string
}

// Parse interprets one line of input. The literal token "all"
// (case-insensitive, surrounding whitespace trimmed) selects the merged
// graph; a 1-based number selects from the listed units; anything else is
// taken as a unit id verbatim.
func Parse(line string, units []string) Request {
	trimmed := strings.TrimSpace(line)
	if strings.EqualFold(trimmed, "all") {
		return Request{Merged: true}
	}
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(units) {
		return Request{Unit: units[n-1]}
	}
	return Request{Unit: trimmed}
}

// FprintMenu lists the available units with their selection numbers.
func FprintMenu(w io.Writer, units []string) {
	fmt.Fprintln(w, "Available Units:")
	for i, u := range units {
		fmt.Fprintf(w, "%d. %s\n", i+1, u)
	}
	fmt.Fprintln(w, "Enter a unit (name or number), 'all' for the merged graph, or Ctrl-D to quit.")
}
