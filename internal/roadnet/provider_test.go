package roadnet

import (
	"context"
	"testing"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"
)

func buildFixtureGraph() *Graph {
	bbox := BBox{North: 1, South: -1, East: 1, West: -1}
	g := NewGraph(bbox, 30)
	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 0, Lon: 0.1}
	g.AddEdge(a, b, 1000, 60)
	g.AddEdge(b, a, 1000, 60)
	return g
}

func TestProviderPreloadIsIdempotent(t *testing.T) {
	calls := 0
	source := &countingSource{graph: buildFixtureGraph(), calls: &calls}
	p := NewProvider(source, nil, 30, 5000)

	bbox := ports.BBox{North: 1, South: -1, East: 1, West: -1}
	if err := p.Preload(context.Background(), bbox); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Preload(context.Background(), bbox); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected exactly 1 build call across two preloads, got %d", calls)
	}
}

func TestProviderTravelTimeUsesPreloadedGraph(t *testing.T) {
	p := NewProvider(&MockGraphSource{Graph: buildFixtureGraph()}, nil, 30, 5000)
	bbox := ports.BBox{North: 1, South: -1, East: 1, West: -1}
	if err := p.Preload(context.Background(), bbox); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 0, Lon: 0.1}

	result, err := p.TravelTime(context.Background(), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Approximate {
		t.Fatalf("expected a graph-backed (non-approximate) result")
	}
	if result.Minutes <= 0 {
		t.Fatalf("expected positive travel time, got %f", result.Minutes)
	}
}

func TestProviderTravelTimeFallsBackWhenNoGraph(t *testing.T) {
	p := NewProvider(&MockGraphSource{Err: errBuildFailed}, nil, 30, 5000)

	a := domain.Coordinate{Lat: 40, Lon: -73}
	b := domain.Coordinate{Lat: 40.1, Lon: -73.1}

	result, err := p.TravelTime(context.Background(), a, b)
	if err != nil {
		t.Fatalf("fallback should never return an error: %v", err)
	}
	if !result.Approximate {
		t.Fatalf("expected an approximate fallback result")
	}
	if result.Minutes <= 0 {
		t.Fatalf("expected positive estimated minutes, got %f", result.Minutes)
	}
}

type countingSource struct {
	graph *Graph
	calls *int
}

func (c *countingSource) BuildGraph(ctx context.Context, bbox BBox) (*Graph, error) {
	*c.calls++
	return c.graph, nil
}

type buildError string

func (e buildError) Error() string { return string(e) }

const errBuildFailed = buildError("build failed")
