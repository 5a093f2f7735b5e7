// Command main runs the demo database seeder.
package main

import (
	"flag"
	"log"

	"parley/internal/config"
	"parley/internal/database"
	"parley/internal/models"
	"parley/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of demo users to create")
	shouldClean := flag.Bool("clean", false, "Clear existing data before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *shouldClean {
		for _, stmt := range []string{
			"DELETE FROM user_friends",
			"DELETE FROM friend_requests",
			"DELETE FROM users",
		} {
			if err := db.Exec(stmt).Error; err != nil {
				log.Fatalf("Cleanup failed: %v", err)
			}
		}
		log.Println("Cleared existing data")
	}

	if err := seed.Demo(db, seed.Options{Users: *numUsers}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err == nil {
		log.Printf("Database now holds %d users", count)
	}
	log.Println("All demo users have the password: password123")
}
