package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatch-service/internal/adapters/cache"
	"dispatch-service/internal/api"
	"dispatch-service/internal/config"
	"dispatch-service/internal/dispatch"
	"dispatch-service/internal/geocode"
	"dispatch-service/internal/platform/db"
	"dispatch-service/internal/platform/metrics"
	"dispatch-service/internal/ports"
	"dispatch-service/internal/roadnet"

	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/time/rate"
)

// main is the application composition root. It wires concrete adapters
// (Postgres/Redis/in-memory caches, an HTTP routing+geocoding backend)
// behind the core's ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(getEnv("CONFIG_PATH", ""))
	if err != nil {
		log.Fatal(err)
	}

	port := getEnv("PORT", "8080")
	routingBaseURL := getEnv("ROUTING_BASE_URL", "https://api.openrouteservice.org")
	geocodeBaseURL := getEnv("GEOCODE_BASE_URL", routingBaseURL)
	apiKey := os.Getenv("ROUTING_API_KEY")
	if strings.TrimSpace(apiKey) == "" {
		log.Fatal("ROUTING_API_KEY is required")
	}

	var sqlDB *sql.DB
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		sqlDB, err = db.Open(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer sqlDB.Close()

		if err := cache.InitSchema(sqlDB); err != nil {
			log.Fatal(err)
		}
	}

	geocodeCache, graphCache := buildCaches(sqlDB)

	metrics.RegisterDefault()

	source := roadnet.NewHTTPGraphSource(routingBaseURL, apiKey)
	provider := roadnet.NewProvider(source, graphCache, cfg.DefaultAvgSpeedKPH, cfg.DefaultSearchRadiusM)

	if bbox, ok := preloadBBoxFromEnv(); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		if err := provider.Preload(ctx, bbox); err != nil {
			log.Printf("roadnet preload failed: %v", err)
		}
		cancel()
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.GeocodeRateLimitRPS), 1)
	geocoder := geocode.New(geocodeBaseURL, apiKey, geocodeCache, limiter)

	dispatcher := dispatch.New(provider, geocoder, cfg)
	sequencerBudget := time.Duration(cfg.SequencerBudgetS * float64(time.Second))

	router := api.NewRouter(dispatcher, geocoder, sequencerBudget)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// buildCaches picks the best available cache backend: Postgres when a
// database connection was opened, Redis when REDIS_ADDR is set, otherwise
// an in-process TTL map. With Redis, only the geocode cache uses it; the
// graph-edge cache stays an in-process TTL map.
func buildCaches(sqlDB *sql.DB) (geocode.Cache, roadnet.EdgeCache) {
	if sqlDB != nil {
		return cache.NewPostgresGeocodeCache(sqlDB), cache.NewPostgresGraphEdgeCache(sqlDB)
	}

	if addr := os.Getenv("REDIS_ADDR"); strings.TrimSpace(addr) != "" {
		addrs := map[string]string{"default": addr}
		return cache.NewRedisGeocodeCache(addrs, 24*time.Hour), cache.NewMemoryGraphEdgeCache(time.Hour)
	}

	log.Println("no DATABASE_URL or REDIS_ADDR configured, using in-memory caches only")
	return cache.NewMemoryGeocodeCache(24 * time.Hour), cache.NewMemoryGraphEdgeCache(time.Hour)
}

// preloadBBoxFromEnv reads an optional startup bounding box from
// PRELOAD_NORTH/SOUTH/EAST/WEST. All four must be set and parse as floats
// for preload to run; a partial or absent set disables it (on-demand mode
// only).
func preloadBBoxFromEnv() (ports.BBox, bool) {
	north, okN := parseEnvFloat("PRELOAD_NORTH")
	south, okS := parseEnvFloat("PRELOAD_SOUTH")
	east, okE := parseEnvFloat("PRELOAD_EAST")
	west, okW := parseEnvFloat("PRELOAD_WEST")
	if !okN || !okS || !okE || !okW {
		return ports.BBox{}, false
	}
	return ports.BBox{North: north, South: south, East: east, West: west}, true
}

func parseEnvFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
