package roadnet

import (
	"testing"

	"dispatch-service/internal/domain"
)

func TestShortestPathMinutesRespectsOneWay(t *testing.T) {
	bbox := BBox{North: 1, South: -1, East: 1, West: -1}
	g := NewGraph(bbox, 30)

	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 0, Lon: 0.1}
	c := domain.Coordinate{Lat: 0, Lon: 0.2}

	// a -> b -> c one-way; no edge back from c to a.
	g.AddEdge(a, b, 1000, 60)
	g.AddEdge(b, c, 1000, 60)

	minutes, ok := g.ShortestPathMinutes(a, c)
	if !ok {
		t.Fatalf("expected a path from a to c")
	}
	if minutes <= 0 {
		t.Fatalf("expected positive travel time, got %f", minutes)
	}

	_, ok = g.ShortestPathMinutes(c, a)
	if ok {
		t.Fatalf("expected no path from c to a (one-way street)")
	}
}

func TestShortestPathMinutesPicksCheaperRoute(t *testing.T) {
	bbox := BBox{North: 1, South: -1, East: 1, West: -1}
	g := NewGraph(bbox, 30)

	a := domain.Coordinate{Lat: 0, Lon: 0}
	b := domain.Coordinate{Lat: 0, Lon: 0.1}
	c := domain.Coordinate{Lat: 0, Lon: 0.2}

	g.AddEdge(a, c, 5000, 30)  // slow direct route
	g.AddEdge(a, b, 1000, 60) // fast two-hop route
	g.AddEdge(b, c, 1000, 60)

	minutes, ok := g.ShortestPathMinutes(a, c)
	if !ok {
		t.Fatalf("expected a path")
	}

	direct := Edge{LengthM: 5000, SpeedLimit: 30}.TravelMinutes(30)
	if minutes >= direct {
		t.Fatalf("expected two-hop route (%f min) to beat direct route (%f min)", minutes, direct)
	}
}

func TestNearestNodeFindsClosest(t *testing.T) {
	bbox := BBox{North: 1, South: -1, East: 1, West: -1}
	g := NewGraph(bbox, 30)

	near := domain.Coordinate{Lat: 0, Lon: 0}
	far := domain.Coordinate{Lat: 0.5, Lon: 0.5}
	g.AddNode(near)
	g.AddNode(far)

	id, coord, ok := g.NearestNode(domain.Coordinate{Lat: 0.001, Lon: 0.001})
	if !ok {
		t.Fatalf("expected a nearest node")
	}
	if id != nodeID(near) {
		t.Fatalf("expected nearest node to be %v, got %v (%v)", near, coord, id)
	}
}
