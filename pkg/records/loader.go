// Package records loads and validates the record-set file that describes
// per-unit components and dependency edges, and can generate a skeleton of
// that file from a live cluster.
package records

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cluster-tools/impactviz/pkg/model"
)

// Load reads the record-set file at path. The file is a JSON object mapping
// unit ids to unit records. Structural problems are fatal load errors; this
// is the only place they are detected.
func Load(path string) (model.RecordSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	var rs model.RecordSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing records file %s: %w", path, err)
	}

	if err := Validate(rs); err != nil {
		return nil, fmt.Errorf("invalid records file %s: %w", path, err)
	}

	normalize(rs)
	return rs, nil
}

// Validate checks the structural invariants of a record set: non-empty
// component ids, ids unique within their unit, and edge endpoints present.
// Edge endpoints referencing undeclared component ids are fine; empty
// endpoint strings are not.
func Validate(rs model.RecordSet) error {
	for unitID, unit := range rs {
		if unitID == "" {
			return fmt.Errorf("empty unit id")
		}
		seen := make(map[string]bool, len(unit.Components))
		for i, c := range unit.Components {
			if c.ID == "" {
				return fmt.Errorf("unit %q: component %d has empty id", unitID, i)
			}
			if seen[c.ID] {
				return fmt.Errorf("unit %q: duplicate component id %q", unitID, c.ID)
			}
			seen[c.ID] = true
		}
		for i, e := range unit.Edges {
			if e.From == "" || e.To == "" {
				return fmt.Errorf("unit %q: edge %d has empty endpoint", unitID, i)
			}
		}
	}
	return nil
}

// normalize coerces criticality strings in place so everything downstream
// sees one of the four enumerated values.
func normalize(rs model.RecordSet) {
	for _, unit := range rs {
		for i := range unit.Components {
			unit.Components[i].Criticality = string(model.ParseCriticality(unit.Components[i].Criticality))
		}
	}
}
