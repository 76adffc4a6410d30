package records

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cluster-tools/impactviz/pkg/model"
)

const nodesJSON = `{
	"items": [
		{"metadata": {"name": "node-a"}},
		{"metadata": {"name": "node-b"}}
	]
}`

const podsJSON = `{
	"items": [
		{"spec": {"nodeName": "node-a", "containers": [{"name": "web"}, {"name": "sidecar"}]}},
		{"spec": {"nodeName": "node-a", "containers": [{"name": "web"}]}},
		{"spec": {"nodeName": "node-b", "containers": [{"name": "db"}]}},
		{"spec": {"nodeName": "", "containers": [{"name": "pending"}]}}
	]
}`

func TestClusterTemplate(t *testing.T) {
	exec := &MockExecutor{Outputs: map[string][]byte{
		"get nodes -o json":                 []byte(nodesJSON),
		"get pods --all-namespaces -o json": []byte(podsJSON),
	}}

	rs, err := ClusterTemplate(context.Background(), exec)
	if err != nil {
		t.Fatalf("ClusterTemplate() error = %v", err)
	}

	if len(rs) != 2 {
		t.Fatalf("expected 2 units, got %d", len(rs))
	}

	a := rs["node-a"]
	if len(a.Components) != 2 {
		t.Fatalf("node-a components = %+v, want web and sidecar deduplicated", a.Components)
	}
	// Sorted container names.
	if a.Components[0].ID != "sidecar" || a.Components[1].ID != "web" {
		t.Errorf("unexpected component order: %+v", a.Components)
	}
	for _, c := range a.Components {
		if c.Criticality != string(model.CriticalityUnknown) {
			t.Errorf("template criticality = %q, want unknown", c.Criticality)
		}
	}
	if len(a.Edges) != 0 {
		t.Errorf("template should have no edges, got %v", a.Edges)
	}

	// node-b has one container; the unscheduled pod is skipped entirely.
	if len(rs["node-b"].Components) != 1 || rs["node-b"].Components[0].ID != "db" {
		t.Errorf("node-b components = %+v", rs["node-b"].Components)
	}
}

func TestClusterTemplateNoNodes(t *testing.T) {
	exec := &MockExecutor{Outputs: map[string][]byte{
		"get nodes -o json": []byte(`{"items": []}`),
	}}
	if _, err := ClusterTemplate(context.Background(), exec); err == nil {
		t.Error("expected error for empty cluster")
	}
}

func TestClusterTemplateKubectlError(t *testing.T) {
	exec := &MockExecutor{MockError: errors.New("connection refused")}
	if _, err := ClusterTemplate(context.Background(), exec); err == nil {
		t.Error("expected kubectl error to propagate")
	}
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	rs := model.RecordSet{
		"node-a": {
			Components: []model.ComponentRecord{{ID: "web", Label: "web", Criticality: "unknown", Dependencies: []string{}}},
			Edges:      []model.EdgeRecord{},
		},
	}

	if err := WriteTemplate(path, rs); err != nil {
		t.Fatalf("WriteTemplate() error = %v", err)
	}

	// Round-trips through the loader.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() of written template error = %v", err)
	}
	if len(loaded) != 1 || len(loaded["node-a"].Components) != 1 {
		t.Errorf("unexpected round-trip result: %+v", loaded)
	}

	// Never overwrites.
	if err := WriteTemplate(path, rs); err == nil {
		t.Error("expected error when template file already exists")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("original file should survive: %v", err)
	}
}
