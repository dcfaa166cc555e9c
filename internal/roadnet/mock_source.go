package roadnet

import "context"

// MockGraphSource returns a fixed, pre-built Graph regardless of the
// requested bbox. Used by tests and by deployments with a hand-maintained
// graph instead of a live external routing API.
type MockGraphSource struct {
	Graph *Graph
	Err   error
}

// BuildGraph implements GraphSource.
func (m *MockGraphSource) BuildGraph(ctx context.Context, bbox BBox) (*Graph, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Graph, nil
}
