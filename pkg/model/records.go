package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Criticality is the importance tag on a component. It drives color coding
// in both render backends.
type Criticality string

const (
	CriticalityHigh    Criticality = "high"
	CriticalityMedium  Criticality = "medium"
	CriticalityLow     Criticality = "low"
	CriticalityUnknown Criticality = "unknown"
)

// ParseCriticality coerces a raw string to one of the four enumerated
// values. Anything unrecognized, including the empty string, maps to
// CriticalityUnknown.
func ParseCriticality(s string) Criticality {
	switch Criticality(strings.ToLower(strings.TrimSpace(s))) {
	case CriticalityHigh:
		return CriticalityHigh
	case CriticalityMedium:
		return CriticalityMedium
	case CriticalityLow:
		return CriticalityLow
	default:
		return CriticalityUnknown
	}
}

// ComponentRecord describes one component (e.g., a container) declared as
// belonging to a unit. Dependencies is informational only and is not
// required to match the unit's edge list.
type ComponentRecord struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Criticality  string   `json:"criticality"`
	Description  string   `json:"description"`
	Dependencies []string `json:"dependencies"`
}

// EdgeRecord is a directed dependency between two component ids. Either
// endpoint may reference an id that is never declared in any unit; that is
// the representation of an external dependency, not an error.
type EdgeRecord struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// UnitRecord holds the components and edges declared for one unit
// (a cluster node or other named scope).
type UnitRecord struct {
	Components []ComponentRecord `json:"components"`
	Edges      []EdgeRecord      `json:"edges"`
}

// RecordSet maps unit ids to their records. It is loaded once at startup
// and treated as immutable afterwards; builders and reporters are pure
// functions of it.
type RecordSet map[string]UnitRecord

// UnitIDs returns all unit ids in sorted order. Merged builds iterate in
// this order so that "first declaring unit wins" is deterministic.
func (rs RecordSet) UnitIDs() []string {
	ids := make([]string, 0, len(rs))
	for id := range rs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Unit looks up a unit record by id.
func (rs RecordSet) Unit(id string) (UnitRecord, bool) {
	u, ok := rs[id]
	return u, ok
}

// NotFoundError reports a request for a unit id that is not in the record
// set. It is returned before any graph construction happens.
type NotFoundError struct {
	Unit string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unit %q not found", e.Unit)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
