// Command migrate applies the database schema. Production deployments run
// this explicitly; the server only auto-migrates outside production.
package main

import (
	"log"

	"parley/internal/config"
	"parley/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Schema migration applied")
}
