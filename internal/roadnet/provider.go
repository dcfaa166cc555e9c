package roadnet

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/ports"

	"golang.org/x/sync/singleflight"
)

// GraphSource builds a Graph spanning bbox. The default implementation
// fetches edges from an external routing API (see fetch.go); tests and
// offline deployments can supply a synthetic or fixture-backed source.
type GraphSource interface {
	BuildGraph(ctx context.Context, bbox BBox) (*Graph, error)
}

// EdgeCache persists graph edges across process restarts, keyed by bbox.
// Implementations live in internal/adapters/cache; nil is a legal value
// (no persistence, every on-demand area is rebuilt from GraphSource).
type EdgeCache interface {
	Get(ctx context.Context, bboxKey string) (*Graph, bool, error)
	Put(ctx context.Context, bboxKey string, g *Graph) error
}

// Provider implements ports.RoadNetworkProvider over a preloaded graph plus
// on-demand smaller graphs for points outside it.
type Provider struct {
	source GraphSource
	cache  EdgeCache

	defaultSpeedKPH float64
	searchRadiusM   float64

	mu       sync.RWMutex
	preload  *Graph
	onDemand map[BBox]*Graph

	flight singleflight.Group
}

// NewProvider constructs a Provider. cache may be nil.
func NewProvider(source GraphSource, cache EdgeCache, defaultSpeedKPH, searchRadiusM float64) *Provider {
	return &Provider{
		source:          source,
		cache:           cache,
		defaultSpeedKPH: defaultSpeedKPH,
		searchRadiusM:   searchRadiusM,
		onDemand:        make(map[BBox]*Graph),
	}
}

// Preload constructs and retains the startup drive-network graph. It is
// idempotent: calling it again with the same bbox is a no-op. Failure
// (network unavailable) is logged and swallowed; the provider degrades to
// on-demand mode, matching spec §4.1's non-fatal preload failure semantics.
func (p *Provider) Preload(ctx context.Context, bbox ports.BBox) error {
	rnBBox := BBox{North: bbox.North, South: bbox.South, East: bbox.East, West: bbox.West}

	p.mu.RLock()
	already := p.preload != nil && p.preload.BBox == rnBBox
	p.mu.RUnlock()
	if already {
		return nil
	}

	g, err := p.source.BuildGraph(ctx, rnBBox)
	if err != nil {
		log.Printf("roadnet: preload failed, degrading to on-demand mode: %v", err)
		return nil
	}
	g.DefaultSpeedKPH = p.defaultSpeedKPH

	p.mu.Lock()
	p.preload = g
	p.mu.Unlock()

	return nil
}

// GraphForArea returns the preloaded graph if center lies within its bbox;
// otherwise it constructs (and may cache) a smaller graph around center,
// coalescing concurrent requests for the same area via a singleflight
// group (spec §5(b)).
func (p *Provider) GraphForArea(ctx context.Context, center domain.Coordinate, radiusM float64) (*Graph, error) {
	p.mu.RLock()
	preload := p.preload
	p.mu.RUnlock()

	if preload != nil && preload.BBox.Contains(center) {
		return preload, nil
	}

	if radiusM <= 0 {
		radiusM = p.searchRadiusM
	}
	bbox := bboxAround(center, radiusM)

	p.mu.RLock()
	if g, ok := p.onDemand[bbox]; ok {
		p.mu.RUnlock()
		return g, nil
	}
	p.mu.RUnlock()

	key := fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", bbox.North, bbox.South, bbox.East, bbox.West)
	result, err, _ := p.flight.Do(key, func() (any, error) {
		if p.cache != nil {
			if g, hit, cerr := p.cache.Get(ctx, key); cerr == nil && hit {
				return g, nil
			}
		}

		g, berr := p.source.BuildGraph(ctx, bbox)
		if berr != nil {
			return nil, berr
		}
		g.DefaultSpeedKPH = p.defaultSpeedKPH

		p.mu.Lock()
		p.onDemand[bbox] = g
		p.mu.Unlock()

		if p.cache != nil {
			if perr := p.cache.Put(ctx, key, g); perr != nil {
				log.Printf("roadnet: edge cache write failed: %v", perr)
			}
		}

		return g, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*Graph), nil
}

func bboxAround(c domain.Coordinate, radiusM float64) BBox {
	// Rough planar conversion: 1 degree latitude ~= 111_320m everywhere;
	// longitude degrees shrink with latitude. Good enough for pre-filter
	// sizing, not for final travel-time computation.
	const metersPerDegreeLat = 111320.0
	dLat := radiusM / metersPerDegreeLat
	dLon := dLat
	if c.Lat != 90 && c.Lat != -90 {
		cosLat := math.Cos(c.Lat * math.Pi / 180)
		if cosLat > 0.01 {
			dLon = dLat / cosLat
		}
	}
	return BBox{North: c.Lat + dLat, South: c.Lat - dLat, East: c.Lon + dLon, West: c.Lon - dLon}
}

// TravelTime implements ports.RoadNetworkProvider.
func (p *Provider) TravelTime(ctx context.Context, from, to domain.Coordinate) (ports.TravelTimeResult, error) {
	g, err := p.graphCovering(ctx, from, to)
	if err != nil || g == nil {
		return p.greatCircleFallback(from, to), nil
	}

	minutes, ok := g.ShortestPathMinutes(from, to)
	if !ok {
		return p.greatCircleFallback(from, to), nil
	}
	return ports.TravelTimeResult{Minutes: minutes, Approximate: false}, nil
}

// TravelTimeMatrix implements ports.RoadNetworkProvider.
func (p *Provider) TravelTimeMatrix(ctx context.Context, origin domain.Coordinate, destinations []domain.Coordinate) ([]ports.TravelTimeResult, error) {
	out := make([]ports.TravelTimeResult, len(destinations))
	for i, d := range destinations {
		r, err := p.TravelTime(ctx, origin, d)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (p *Provider) graphCovering(ctx context.Context, from, to domain.Coordinate) (*Graph, error) {
	p.mu.RLock()
	preload := p.preload
	p.mu.RUnlock()

	if preload != nil && preload.BBox.Contains(from) && preload.BBox.Contains(to) {
		return preload, nil
	}

	return p.GraphForArea(ctx, from, p.searchRadiusM)
}

func (p *Provider) greatCircleFallback(from, to domain.Coordinate) ports.TravelTimeResult {
	meters := from.GreatCircleMeters(to)
	hours := (meters / 1000) / p.defaultSpeedKPH
	return ports.TravelTimeResult{Minutes: hours * 60, Approximate: true}
}
