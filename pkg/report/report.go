// Package report produces the per-unit component detail listing. It is pure
// formatting over the already-validated record set; no graph is consulted.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/cluster-tools/impactviz/pkg/model"
)

// Block is the detail entry for one declared component, in declaration
// order.
type Block struct {
	Label        string            `json:"label"`
	Criticality  model.Criticality `json:"criticality"`
	Description  string            `json:"description"`
	Dependencies []string          `json:"dependencies"`
	Impact       string            `json:"impact"`
}

// Details returns one Block per component declared by the unit, in
// declaration order. A unit with zero components yields an empty slice. An
// unknown unit id yields a *model.NotFoundError.
func Details(unitID string, rs model.RecordSet) ([]Block, error) {
	unit, ok := rs.Unit(unitID)
	if !ok {
		return nil, &model.NotFoundError{Unit: unitID}
	}

	blocks := make([]Block, 0, len(unit.Components))
	for _, c := range unit.Components {
		crit := model.ParseCriticality(c.Criticality)
		label := c.Label
		if label == "" {
			label = c.ID
		}
		blocks = append(blocks, Block{
			Label:        label,
			Criticality:  crit,
			Description:  c.Description,
			Dependencies: c.Dependencies,
			Impact:       ImpactFor(crit),
		})
	}
	return blocks, nil
}

// ImpactFor maps a criticality to its impact assessment phrase.
func ImpactFor(c model.Criticality) string {
	switch c {
	case model.CriticalityHigh:
		return "High impact"
	case model.CriticalityMedium:
		return "Moderate impact"
	case model.CriticalityLow:
		return "Low impact"
	default:
		return "Unknown impact"
	}
}

// DependencyList renders a block's dependency ids as a comma-joined string,
// or the literal "None" when there are none.
func DependencyList(b Block) string {
	if len(b.Dependencies) == 0 {
		return "None"
	}
	return strings.Join(b.Dependencies, ", ")
}

// Fprint writes the fixed-format impact assessment report for a unit.
func Fprint(w io.Writer, unitID string, blocks []Block) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	bold.Fprintf(w, "Impact Assessment Report: %s\n", unitID)
	fmt.Fprintln(w, strings.Repeat("=", 40))

	for _, b := range blocks {
		critColor := cyan
		switch b.Criticality {
		case model.CriticalityHigh:
			critColor = red
		case model.CriticalityMedium:
			critColor = yellow
		case model.CriticalityLow:
			critColor = green
		}

		fmt.Fprintf(w, "Component: %s\n", b.Label)
		fmt.Fprintf(w, "Description: %s\n", b.Description)
		fmt.Fprintf(w, "Dependencies: %s\n", DependencyList(b))
		critColor.Fprintf(w, "Criticality: %s\n", b.Criticality)
		critColor.Fprintf(w, "Impact: %s\n", b.Impact)
		fmt.Fprintln(w, strings.Repeat("-", 40))
	}
}
