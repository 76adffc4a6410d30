package records

import (
	"context"
	"strings"
)

// MockExecutor is a mock implementation of Executor for testing. Outputs
// are keyed by the joined argument string.
type MockExecutor struct {
	Outputs   map[string][]byte
	MockError error
}

func (m *MockExecutor) Run(ctx context.Context, args ...string) ([]byte, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.Outputs[strings.Join(args, " ")], nil
}
