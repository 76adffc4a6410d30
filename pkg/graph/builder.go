// Package graph builds fully attributed dependency graphs from a record
// set. Construction is two-phase: all explicitly declared components are
// materialized with their full attributes first, and only then are edges
// walked to guarantee endpoint existence. Edge processing never overwrites
// attributes that are already present, so declaration/edge ordering in the
// input has no effect on the result.
package graph

import (
	"github.com/cluster-tools/impactviz/pkg/model"
)

// BuildUnitGraph builds the dependency graph for a single unit. It returns
// a *model.NotFoundError before any construction if the unit id is not in
// the record set.
//
// Edge endpoints that are not declared as components resolve silently to
// default attributes (label = id, criticality unknown, non-member): that is
// the designed representation of an external dependency.
func BuildUnitGraph(unitID string, rs model.RecordSet) (*model.Graph, error) {
	unit, ok := rs.Unit(unitID)
	if !ok {
		return nil, &model.NotFoundError{Unit: unitID}
	}

	g := model.NewGraph()

	// Phase 1: materialize every declared component with full attributes.
	members := make(map[string]bool, len(unit.Components))
	for _, c := range unit.Components {
		members[c.ID] = true
	}
	for _, c := range unit.Components {
		g.SetNode(c.ID, declaredAttrs(c, unitID))
	}

	// Phase 2: edges only ensure endpoint existence and register pairs.
	for _, e := range unit.Edges {
		ensureEndpoint(g, e.From, members, unitID)
		ensureEndpoint(g, e.To, members, unitID)
		g.AddEdge(e.From, e.To)
	}

	return g, nil
}

// BuildMergedGraph builds a single graph spanning every unit in the record
// set. Units are processed in sorted id order, so when the same component id
// is declared by more than one unit, the first unit in that order is
// recorded as its owner. A placeholder materialized from an earlier unit's
// edge adopts the explicit attributes of whichever unit later declares the
// id; a node never declared anywhere keeps default attributes and an empty
// owning unit.
func BuildMergedGraph(rs model.RecordSet) *model.Graph {
	g := model.NewGraph()

	for _, unitID := range rs.UnitIDs() {
		unit := rs[unitID]

		for _, c := range unit.Components {
			if attrs, ok := g.Node(c.ID); ok {
				if attrs.OwningUnit == "" {
					// Previously seen only as an edge endpoint; the explicit
					// declaration wins over the materialized defaults.
					*attrs = declaredAttrs(c, unitID)
				}
				continue
			}
			g.SetNode(c.ID, declaredAttrs(c, unitID))
		}

		for _, e := range unit.Edges {
			g.AddEdge(e.From, e.To)
		}
	}

	return g
}

func declaredAttrs(c model.ComponentRecord, unitID string) model.NodeAttrs {
	label := c.Label
	if label == "" {
		label = c.ID
	}
	return model.NodeAttrs{
		Label:       label,
		Criticality: model.ParseCriticality(c.Criticality),
		Description: c.Description,
		Member:      true,
		OwningUnit:  unitID,
	}
}

func ensureEndpoint(g *model.Graph, id string, members map[string]bool, unitID string) {
	if g.HasNode(id) {
		return
	}
	attrs := model.NodeAttrs{
		Label:       id,
		Criticality: model.CriticalityUnknown,
		Member:      members[id],
	}
	if members[id] {
		attrs.OwningUnit = unitID
	}
	g.SetNode(id, attrs)
}
