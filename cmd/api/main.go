package main

import (
	"log"

	"farm-coop-api-server/config"
	"farm-coop-api-server/internal/api/routes"
	"farm-coop-api-server/internal/auth"
	"farm-coop-api-server/internal/database"
	"farm-coop-api-server/internal/s3"
	"farm-coop-api-server/internal/socket"
	"farm-coop-api-server/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	if cfg.JWT.Secret != "" {
		auth.JwtSecret = []byte(cfg.JWT.Secret)
	}

	var st store.Store
	switch cfg.Store.Backend {
	case "memory":
		log.Println("Using in-memory store backend")
		st = store.NewMemoryStore()
	default:
		db, err := database.Connect(cfg.Mongo.URI, cfg.Mongo.DBName)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		st = store.NewMongoStore(db)
	}

	if err := database.SeedAdmin(st); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", err)
		}
	}

	wsHub := socket.NewHub()

	router := routes.SetupRouter(cfg, st, s3Uploader, wsHub)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
