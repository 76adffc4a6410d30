package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/cluster-tools/impactviz/pkg/model"
)

// Executor runs kubectl commands and returns their raw JSON output.
type Executor interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// DefaultExecutor is the Executor that shells out to kubectl.
type DefaultExecutor struct{}

// NewExecutor creates the default kubectl executor.
func NewExecutor() Executor {
	return &DefaultExecutor{}
}

// Run executes kubectl with the given arguments and returns stdout.
// It respects the provided context for cancellation.
func (e *DefaultExecutor) Run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "kubectl", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("kubectl %v failed: %w\nOutput: %s", args, err, exitErr.Stderr)
		}
		return nil, fmt.Errorf("kubectl %v failed: %w", args, err)
	}
	return output, nil
}

// kubectl's JSON output, reduced to the fields the template needs.
type nodeList struct {
	Items []struct {
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
	} `json:"items"`
}

type podList struct {
	Items []struct {
		Spec struct {
			NodeName   string `json:"nodeName"`
			Containers []struct {
				Name string `json:"name"`
			} `json:"containers"`
		} `json:"spec"`
	} `json:"items"`
}

// ClusterTemplate queries the cluster for its nodes and the containers
// scheduled on each, and returns a record-set skeleton: one unit per node,
// one component per container name with unknown criticality, no edges. The
// operator fills in descriptions, criticalities, and dependency edges by
// hand.
func ClusterTemplate(ctx context.Context, exec Executor) (model.RecordSet, error) {
	nodesRaw, err := exec.Run(ctx, "get", "nodes", "-o", "json")
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	var nodes nodeList
	if err := json.Unmarshal(nodesRaw, &nodes); err != nil {
		return nil, fmt.Errorf("parsing node list: %w", err)
	}
	if len(nodes.Items) == 0 {
		return nil, fmt.Errorf("no nodes found in the cluster")
	}

	podsRaw, err := exec.Run(ctx, "get", "pods", "--all-namespaces", "-o", "json")
	if err != nil {
		return nil, fmt.Errorf("listing pods: %w", err)
	}
	var pods podList
	if err := json.Unmarshal(podsRaw, &pods); err != nil {
		return nil, fmt.Errorf("parsing pod list: %w", err)
	}

	containersByNode := make(map[string]map[string]bool)
	for _, pod := range pods.Items {
		node := pod.Spec.NodeName
		if node == "" {
			continue
		}
		if containersByNode[node] == nil {
			containersByNode[node] = make(map[string]bool)
		}
		for _, c := range pod.Spec.Containers {
			containersByNode[node][c.Name] = true
		}
	}

	rs := make(model.RecordSet, len(nodes.Items))
	for _, node := range nodes.Items {
		name := node.Metadata.Name
		containers := make([]string, 0, len(containersByNode[name]))
		for c := range containersByNode[name] {
			containers = append(containers, c)
		}
		sort.Strings(containers)

		unit := model.UnitRecord{
			Components: make([]model.ComponentRecord, 0, len(containers)),
			Edges:      []model.EdgeRecord{},
		}
		for _, c := range containers {
			unit.Components = append(unit.Components, model.ComponentRecord{
				ID:           c,
				Label:        c,
				Criticality:  string(model.CriticalityUnknown),
				Dependencies: []string{},
			})
		}
		rs[name] = unit
	}

	return rs, nil
}

// WriteTemplate writes a record set as indented JSON to path. It refuses to
// overwrite an existing file so a hand-edited records file is never lost.
func WriteTemplate(path string, rs model.RecordSet) error {
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding template: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("records file %s already exists, not overwriting", path)
		}
		return fmt.Errorf("creating template file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing template to %s: %w", path, err)
	}
	return nil
}
