// Package roadnet owns a directed, weighted multigraph of a metropolitan
// street network and answers travel-time queries against it.
package roadnet

import (
	"fmt"
	"math"

	"dispatch-service/internal/domain"
)

// NodeID identifies a graph node; nodes are keyed by coordinate rounded to
// a fixed precision so nearby queries share a node.
type NodeID string

func nodeID(c domain.Coordinate) NodeID {
	return NodeID(fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon))
}

// Edge is one directed, weighted connection between two nodes.
type Edge struct {
	To          NodeID
	LengthM     float64
	SpeedLimit  float64 // km/h; 0 means "use the graph default"
}

// TravelMinutes returns the minutes required to traverse the edge at its
// speed limit, falling back to defaultSpeedKPH when unset.
func (e Edge) TravelMinutes(defaultSpeedKPH float64) float64 {
	speed := e.SpeedLimit
	if speed <= 0 {
		speed = defaultSpeedKPH
	}
	hours := (e.LengthM / 1000) / speed
	return hours * 60
}

// Graph is a directed multigraph over street nodes. It is read-only once
// built and safe to share across goroutines (spec §5 "shared-resource
// policy").
type Graph struct {
	BBox            BBox
	DefaultSpeedKPH float64

	nodes map[NodeID]domain.Coordinate
	adj   map[NodeID][]Edge
}

// BBox mirrors ports.BBox to avoid an import cycle; roadnet.Provider
// converts between the two at its public boundary.
type BBox struct {
	North, South, East, West float64
}

func (b BBox) Contains(c domain.Coordinate) bool {
	return c.Lat <= b.North && c.Lat >= b.South && c.Lon <= b.East && c.Lon >= b.West
}

// NewGraph builds an empty graph over bbox.
func NewGraph(bbox BBox, defaultSpeedKPH float64) *Graph {
	return &Graph{
		BBox:            bbox,
		DefaultSpeedKPH: defaultSpeedKPH,
		nodes:           make(map[NodeID]domain.Coordinate),
		adj:             make(map[NodeID][]Edge),
	}
}

// AddNode inserts a node if it is not already present and returns its id.
func (g *Graph) AddNode(c domain.Coordinate) NodeID {
	id := nodeID(c)
	if _, ok := g.nodes[id]; !ok {
		g.nodes[id] = c
	}
	return id
}

// AddEdge adds a directed edge from -> to. Street direction (one-way
// restrictions) is modeled simply by omitting the reverse edge.
func (g *Graph) AddEdge(from, to domain.Coordinate, lengthM, speedLimitKPH float64) {
	fromID := g.AddNode(from)
	toID := g.AddNode(to)
	g.adj[fromID] = append(g.adj[fromID], Edge{To: toID, LengthM: lengthM, SpeedLimit: speedLimitKPH})
}

// NodeCount returns the number of distinct nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Snapshot exposes the graph's nodes and adjacency lists for serialization
// by the cache adapters. Callers must not mutate the returned maps.
func (g *Graph) Snapshot() (nodes map[NodeID]domain.Coordinate, adj map[NodeID][]Edge) {
	return g.nodes, g.adj
}

// FromSnapshot rebuilds a Graph from previously serialized nodes and
// adjacency lists, as produced by Snapshot.
func FromSnapshot(bbox BBox, defaultSpeedKPH float64, nodes map[NodeID]domain.Coordinate, adj map[NodeID][]Edge) *Graph {
	if nodes == nil {
		nodes = make(map[NodeID]domain.Coordinate)
	}
	if adj == nil {
		adj = make(map[NodeID][]Edge)
	}
	return &Graph{BBox: bbox, DefaultSpeedKPH: defaultSpeedKPH, nodes: nodes, adj: adj}
}

// NearestNode returns the graph node planar-nearest to c.
func (g *Graph) NearestNode(c domain.Coordinate) (NodeID, domain.Coordinate, bool) {
	var best NodeID
	var bestCoord domain.Coordinate
	bestDist := math.MaxFloat64
	found := false

	for id, coord := range g.nodes {
		d := math.Hypot(c.Lat-coord.Lat, c.Lon-coord.Lon)
		if d < bestDist {
			bestDist = d
			best = id
			bestCoord = coord
			found = true
		}
	}
	return best, bestCoord, found
}

// ShortestPathMinutes runs Dijkstra from the node nearest `from` to the
// node nearest `to`, weighted by travel time. Returns ok=false when no path
// exists (including an empty graph).
func (g *Graph) ShortestPathMinutes(from, to domain.Coordinate) (minutes float64, ok bool) {
	fromID, _, foundFrom := g.NearestNode(from)
	toID, _, foundTo := g.NearestNode(to)
	if !foundFrom || !foundTo {
		return 0, false
	}
	if fromID == toID {
		return 0, true
	}

	dist := make(map[NodeID]float64, len(g.nodes))
	visited := make(map[NodeID]bool, len(g.nodes))
	dist[fromID] = 0

	for {
		// Select the unvisited node with the smallest known distance.
		var current NodeID
		currentDist := math.MaxFloat64
		found := false
		for id, d := range dist {
			if visited[id] {
				continue
			}
			if d < currentDist {
				currentDist = d
				current = id
				found = true
			}
		}
		if !found {
			break
		}
		if current == toID {
			return currentDist, true
		}
		visited[current] = true

		for _, e := range g.adj[current] {
			if visited[e.To] {
				continue
			}
			candidate := currentDist + e.TravelMinutes(g.DefaultSpeedKPH)
			if existing, ok := dist[e.To]; !ok || candidate < existing {
				dist[e.To] = candidate
			}
		}
	}

	if d, ok := dist[toID]; ok {
		return d, true
	}
	return 0, false
}
