// Package geocode adapts an external geocoding API to the ports.Geocoder
// interface the dispatch core depends on. It owns everything the core must
// not: upstream HTTP calls, a shared rate limiter, and a result cache.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"dispatch-service/internal/domain"
	"dispatch-service/internal/platform/httpclient"
	"dispatch-service/internal/platform/obs"
	"dispatch-service/internal/ports"

	"golang.org/x/time/rate"
)

// Cache is the read-through result cache the adapter sits on top of.
// internal/adapters/cache provides Postgres, Redis, and in-memory
// implementations that all satisfy this shape.
type Cache interface {
	Get(ctx context.Context, key string) (ports.ForwardResult, bool, error)
	Put(ctx context.Context, key string, r ports.ForwardResult) error
}

// Adapter implements ports.Geocoder against an OpenRouteService-compatible
// geocoding API, adapted from the teacher's ORSDistanceProvider geocoding
// path (same endpoint shape, same retry machinery) but split into its own
// package since the core no longer depends on a combined distance+geocode
// provider.
type Adapter struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	cache   Cache
	limiter *rate.Limiter
}

// New builds an Adapter. limiter enforces the one-call-per-second-per-
// upstream budget (spec §5(c)); cache may be nil, which disables caching.
func New(baseURL, apiKey string, cache Cache, limiter *rate.Limiter) *Adapter {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(1), 1)
	}
	return &Adapter{
		client:  httpclient.New(),
		baseURL: baseURL,
		apiKey:  apiKey,
		cache:   cache,
		limiter: limiter,
	}
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label       string  `json:"label"`
			Confidence  float64 `json:"confidence"`
			Street      string  `json:"street"`
			Housenumber string  `json:"housenumber"`
			Locality    string  `json:"locality"`
			Country     string  `json:"country"`
			Postalcode  string  `json:"postalcode"`
		} `json:"properties"`
	} `json:"features"`
}

// Forward implements ports.Geocoder.
func (a *Adapter) Forward(ctx context.Context, addr domain.AddressInput) (_ ports.ForwardResult, err error) {
	defer obs.Time(ctx, "geocode.forward")(&err)

	if addr.Structured != nil && addr.Structured.Coordinate != nil {
		return ports.ForwardResult{
			Coordinate:        *addr.Structured.Coordinate,
			NormalizedAddress: addr.Structured.SingleLine(),
			Confidence:        1.0,
		}, nil
	}

	text := addressText(addr)
	if text == "" {
		return ports.ForwardResult{}, ports.ErrAddressNotFound
	}
	key := normalizeKey(text)

	if a.cache != nil {
		if r, hit, cerr := a.cache.Get(ctx, key); cerr == nil && hit {
			return r, nil
		}
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return ports.ForwardResult{}, fmt.Errorf("geocode: rate limit wait: %w", err)
	}

	endpoint := a.baseURL + "/geocode/search"
	resp, err := a.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := httpclient.NewJSONRequest(ctx, http.MethodGet, endpoint, nil, a.apiKey)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", key)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.ForwardResult{}, fmt.Errorf("geocode: forward request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.ForwardResult{}, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return ports.ForwardResult{}, ports.ErrAddressNotFound
	}

	f := decoded.Features[0]
	if len(f.Geometry.Coordinates) != 2 {
		return ports.ForwardResult{}, fmt.Errorf("geocode: malformed coordinate for %q", text)
	}

	result := ports.ForwardResult{
		Coordinate:        domain.Coordinate{Lon: f.Geometry.Coordinates[0], Lat: f.Geometry.Coordinates[1]},
		NormalizedAddress: f.Properties.Label,
		Confidence:        f.Properties.Confidence,
	}
	if result.NormalizedAddress == "" {
		result.NormalizedAddress = titleCaser.String(key)
	}

	if a.cache != nil {
		if perr := a.cache.Put(ctx, key, result); perr != nil {
			// Cache writes are best-effort; a miss only costs a re-fetch.
			_ = perr
		}
	}

	return result, nil
}

type reverseResponse struct {
	Features []struct {
		Properties struct {
			Street      string `json:"street"`
			Housenumber string `json:"housenumber"`
			Locality    string `json:"locality"`
			Country     string `json:"country"`
			Postalcode  string `json:"postalcode"`
		} `json:"properties"`
	} `json:"features"`
}

// Reverse implements ports.Geocoder. It fills Street, Number, City,
// Country and PostalCode from the first upstream match; Corner1 and
// Corner2 are always left empty.
func (a *Adapter) Reverse(ctx context.Context, c domain.Coordinate) (_ domain.Address, err error) {
	defer obs.Time(ctx, "geocode.reverse")(&err)

	if err := a.limiter.Wait(ctx); err != nil {
		return domain.Address{}, fmt.Errorf("geocode: rate limit wait: %w", err)
	}

	endpoint := a.baseURL + "/geocode/reverse"
	resp, err := a.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := httpclient.NewJSONRequest(ctx, http.MethodGet, endpoint, nil, a.apiKey)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("point.lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
		q.Set("point.lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Address{}, fmt.Errorf("geocode: reverse request: %w", err)
	}
	defer resp.Body.Close()

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Address{}, fmt.Errorf("geocode: decode reverse response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return domain.Address{}, ports.ErrAddressNotFound
	}

	p := decoded.Features[0].Properties
	coord := c
	return domain.Address{
		Street:     p.Street,
		Number:     p.Housenumber,
		City:       p.Locality,
		Country:    p.Country,
		PostalCode: p.Postalcode,
		Coordinate: &coord,
	}, nil
}

func addressText(a domain.AddressInput) string {
	if a.Structured != nil {
		return a.Structured.SingleLine()
	}
	return a.FreeText
}
