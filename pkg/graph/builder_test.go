package graph

import (
	"reflect"
	"testing"

	"github.com/cluster-tools/impactviz/pkg/model"
)

func testRecords() model.RecordSet {
	return model.RecordSet{
		"node-a": {
			Components: []model.ComponentRecord{
				{ID: "web", Label: "Web Frontend", Criticality: "medium", Description: "serves UI"},
				{ID: "db", Label: "Database", Criticality: "high", Description: "primary store"},
			},
			Edges: []model.EdgeRecord{
				{From: "web", To: "db"},
				{From: "web", To: "auth-service"},
			},
		},
		"node-b": {
			Components: []model.ComponentRecord{
				{ID: "auth-service", Label: "Auth", Criticality: "high"},
			},
			Edges: []model.EdgeRecord{
				{From: "auth-service", To: "db"},
			},
		},
	}
}

func TestBuildUnitGraphNotFound(t *testing.T) {
	_, err := BuildUnitGraph("missing", testRecords())
	if err == nil {
		t.Fatal("expected error for unknown unit")
	}
	if !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestBuildUnitGraphScenario(t *testing.T) {
	// The canonical single-unit scenario: one declared component with one
	// edge to an undeclared endpoint.
	rs := model.RecordSet{
		"unitA": {
			Components: []model.ComponentRecord{
				{ID: "c1", Label: "C1", Criticality: "high", Description: "d"},
			},
			Edges: []model.EdgeRecord{{From: "c1", To: "ext1"}},
		},
	}

	g, err := BuildUnitGraph("unitA", rs)
	if err != nil {
		t.Fatalf("BuildUnitGraph() error = %v", err)
	}

	c1, ok := g.Node("c1")
	if !ok {
		t.Fatal("c1 missing from node set")
	}
	if c1.Criticality != model.CriticalityHigh || !c1.Member {
		t.Errorf("c1 attrs = %+v, want high/member", c1)
	}

	ext, ok := g.Node("ext1")
	if !ok {
		t.Fatal("ext1 missing from node set")
	}
	if ext.Criticality != model.CriticalityUnknown || ext.Member {
		t.Errorf("ext1 attrs = %+v, want unknown/non-member", ext)
	}
	if ext.Label != "ext1" {
		t.Errorf("ext1 label = %q, want id as label", ext.Label)
	}

	if g.EdgeCount() != 1 || !g.HasEdge("c1", "ext1") {
		t.Errorf("edge set = %v, want exactly (c1, ext1)", g.Edges())
	}
}

func TestBuildUnitGraphSupersetAndEndpoints(t *testing.T) {
	rs := testRecords()
	for _, unitID := range rs.UnitIDs() {
		g, err := BuildUnitGraph(unitID, rs)
		if err != nil {
			t.Fatalf("BuildUnitGraph(%q) error = %v", unitID, err)
		}

		for _, c := range rs[unitID].Components {
			if !g.HasNode(c.ID) {
				t.Errorf("%s: declared component %q missing", unitID, c.ID)
			}
		}
		for _, e := range g.Edges() {
			if !g.HasNode(e[0]) || !g.HasNode(e[1]) {
				t.Errorf("%s: edge %v has missing endpoint", unitID, e)
			}
		}
	}
}

func TestBuildUnitGraphPrecedence(t *testing.T) {
	// An edge referencing a declared component must never reset its
	// attributes, regardless of where in the input the edge appears.
	rs := model.RecordSet{
		"u": {
			Components: []model.ComponentRecord{
				{ID: "x", Label: "X", Criticality: "high"},
				{ID: "y", Label: "Y", Criticality: "low"},
			},
			Edges: []model.EdgeRecord{
				{From: "y", To: "x"},
				{From: "x", To: "y"},
			},
		},
	}

	g, err := BuildUnitGraph("u", rs)
	if err != nil {
		t.Fatalf("BuildUnitGraph() error = %v", err)
	}

	x, _ := g.Node("x")
	if x.Criticality != model.CriticalityHigh {
		t.Errorf("x criticality = %q, want high", x.Criticality)
	}
	y, _ := g.Node("y")
	if y.Criticality != model.CriticalityLow {
		t.Errorf("y criticality = %q, want low", y.Criticality)
	}
}

func TestBuildUnitGraphCoercesCriticality(t *testing.T) {
	rs := model.RecordSet{
		"u": {
			Components: []model.ComponentRecord{
				{ID: "a", Criticality: "CRITICAL!!"},
			},
		},
	}

	g, err := BuildUnitGraph("u", rs)
	if err != nil {
		t.Fatalf("BuildUnitGraph() error = %v", err)
	}
	a, _ := g.Node("a")
	if a.Criticality != model.CriticalityUnknown {
		t.Errorf("criticality = %q, want coerced unknown", a.Criticality)
	}
	if a.Label != "a" {
		t.Errorf("label = %q, want id fallback", a.Label)
	}
}

func TestBuildUnitGraphDuplicateEdgesCollapse(t *testing.T) {
	rs := model.RecordSet{
		"u": {
			Edges: []model.EdgeRecord{
				{From: "a", To: "b"},
				{From: "a", To: "b"},
				{From: "a", To: "a"},
			},
		},
	}

	g, err := BuildUnitGraph("u", rs)
	if err != nil {
		t.Fatalf("BuildUnitGraph() error = %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("edge count = %d, want 2 (duplicate collapsed, self loop kept)", g.EdgeCount())
	}
	if !g.HasEdge("a", "a") {
		t.Error("self loop missing")
	}
}

func TestBuildUnitGraphIdempotent(t *testing.T) {
	rs := testRecords()

	g1, err := BuildUnitGraph("node-a", rs)
	if err != nil {
		t.Fatalf("first build error = %v", err)
	}
	g2, err := BuildUnitGraph("node-a", rs)
	if err != nil {
		t.Fatalf("second build error = %v", err)
	}

	if !reflect.DeepEqual(g1.Nodes(), g2.Nodes()) {
		t.Errorf("node sets differ: %v vs %v", g1.Nodes(), g2.Nodes())
	}
	if !reflect.DeepEqual(g1.Edges(), g2.Edges()) {
		t.Errorf("edge sets differ: %v vs %v", g1.Edges(), g2.Edges())
	}
	for _, id := range g1.Nodes() {
		a1, _ := g1.Node(id)
		a2, _ := g2.Node(id)
		if !reflect.DeepEqual(a1, a2) {
			t.Errorf("attrs for %q differ: %+v vs %+v", id, a1, a2)
		}
	}
}

func TestBuildMergedGraphSuperset(t *testing.T) {
	rs := testRecords()
	merged := BuildMergedGraph(rs)

	for _, unitID := range rs.UnitIDs() {
		g, err := BuildUnitGraph(unitID, rs)
		if err != nil {
			t.Fatalf("BuildUnitGraph(%q) error = %v", unitID, err)
		}
		for _, id := range g.Nodes() {
			if !merged.HasNode(id) {
				t.Errorf("merged graph missing node %q from %s", id, unitID)
			}
		}
		for _, e := range g.Edges() {
			if !merged.HasEdge(e[0], e[1]) {
				t.Errorf("merged graph missing edge %v from %s", e, unitID)
			}
		}
	}
}

func TestBuildMergedGraphCrossUnitAttributes(t *testing.T) {
	// node-a references auth-service by edge only; node-b declares it. The
	// merged graph must carry node-b's explicit attributes even though
	// node-a is processed first.
	merged := BuildMergedGraph(testRecords())

	auth, ok := merged.Node("auth-service")
	if !ok {
		t.Fatal("auth-service missing")
	}
	if auth.Criticality != model.CriticalityHigh {
		t.Errorf("auth-service criticality = %q, want high from node-b's declaration", auth.Criticality)
	}
	if auth.OwningUnit != "node-b" {
		t.Errorf("auth-service owner = %q, want node-b", auth.OwningUnit)
	}
	if !auth.Member {
		t.Error("declared node should be a member in the merged graph")
	}
}

func TestBuildMergedGraphFirstOwnerWins(t *testing.T) {
	rs := model.RecordSet{
		"node-b": {
			Components: []model.ComponentRecord{
				{ID: "shared", Label: "Shared B", Criticality: "low"},
			},
		},
		"node-a": {
			Components: []model.ComponentRecord{
				{ID: "shared", Label: "Shared A", Criticality: "high"},
			},
		},
	}

	merged := BuildMergedGraph(rs)
	shared, _ := merged.Node("shared")

	// Sorted unit order makes node-a the first declaring unit.
	if shared.OwningUnit != "node-a" {
		t.Errorf("owner = %q, want node-a", shared.OwningUnit)
	}
	if shared.Criticality != model.CriticalityHigh {
		t.Errorf("criticality = %q, want first owner's high", shared.Criticality)
	}
}

func TestBuildMergedGraphTrueExternal(t *testing.T) {
	rs := testRecords()
	u := rs["node-a"]
	u.Edges = append(u.Edges, model.EdgeRecord{From: "db", To: "dns"})
	rs["node-a"] = u

	merged := BuildMergedGraph(rs)
	dns, ok := merged.Node("dns")
	if !ok {
		t.Fatal("dns missing")
	}
	if dns.Member || dns.OwningUnit != "" || dns.Criticality != model.CriticalityUnknown {
		t.Errorf("true external should stay unknown/unowned, got %+v", dns)
	}
}
