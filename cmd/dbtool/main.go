// dbtool initializes the Postgres schema backing the geocode and road-graph
// edge caches. It has nothing to seed: unlike the package repository it
// replaces, the cache tables start empty and fill in as the service runs.
package main

import (
	"log"
	"os"
	"strings"

	"dispatch-service/internal/adapters/cache"
	"dispatch-service/internal/platform/db"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	log.Println("Initializing cache schema...")
	if err := cache.InitSchema(sqlDB); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
