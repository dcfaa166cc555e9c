package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/obs"
	"dispatch-service/internal/roadnet"
)

// graphPayload is the JSON wire shape stored in graph_edge_cache.graph_json,
// adapted from the teacher's sql_distance_cache row shape (bbox key plus a
// serialized payload column).
type graphPayload struct {
	BBox            roadnet.BBox                        `json:"bbox"`
	DefaultSpeedKPH float64                              `json:"default_speed_kph"`
	Nodes           map[roadnet.NodeID]domain.Coordinate `json:"nodes"`
	Adjacency       map[roadnet.NodeID][]roadnet.Edge    `json:"adjacency"`
}

// PostgresGraphEdgeCache implements roadnet.EdgeCache over Postgres,
// adapted from the teacher's SQLDistanceCache.
type PostgresGraphEdgeCache struct {
	DB *sql.DB
}

// NewPostgresGraphEdgeCache wraps db.
func NewPostgresGraphEdgeCache(db *sql.DB) *PostgresGraphEdgeCache {
	return &PostgresGraphEdgeCache{DB: db}
}

// Get implements roadnet.EdgeCache.
func (c *PostgresGraphEdgeCache) Get(ctx context.Context, bboxKey string) (_ *roadnet.Graph, _ bool, err error) {
	defer obs.Time(ctx, "cache.graphedge.postgres.get")(&err)

	if c.DB == nil {
		return nil, false, errors.New("graph edge cache: db is nil")
	}

	var raw []byte
	err = c.DB.QueryRowContext(ctx, `
		SELECT graph_json FROM graph_edge_cache WHERE bbox_key = $1;
	`, bboxKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("graph edge cache: query: %w", err)
	}

	var payload graphPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false, fmt.Errorf("graph edge cache: decode: %w", err)
	}

	g := roadnet.FromSnapshot(payload.BBox, payload.DefaultSpeedKPH, payload.Nodes, payload.Adjacency)
	return g, true, nil
}

// Put implements roadnet.EdgeCache.
func (c *PostgresGraphEdgeCache) Put(ctx context.Context, bboxKey string, g *roadnet.Graph) (err error) {
	defer obs.Time(ctx, "cache.graphedge.postgres.put")(&err)

	if c.DB == nil {
		return errors.New("graph edge cache: db is nil")
	}

	nodes, adj := g.Snapshot()
	raw, err := json.Marshal(graphPayload{
		BBox:            g.BBox,
		DefaultSpeedKPH: g.DefaultSpeedKPH,
		Nodes:           nodes,
		Adjacency:       adj,
	})
	if err != nil {
		return fmt.Errorf("graph edge cache: encode: %w", err)
	}

	_, err = c.DB.ExecContext(ctx, `
		INSERT INTO graph_edge_cache (bbox_key, graph_json)
		VALUES ($1, $2)
		ON CONFLICT (bbox_key) DO UPDATE SET graph_json = EXCLUDED.graph_json;
	`, bboxKey, raw)
	if err != nil {
		return fmt.Errorf("graph edge cache: upsert: %w", err)
	}
	return nil
}
