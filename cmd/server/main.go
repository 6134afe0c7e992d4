package main

import (
	"log"

	"flowdraw/internal/cache"
	"flowdraw/internal/config"
	"flowdraw/internal/database"
	"flowdraw/internal/server"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("[Main] database connection failed: %v", err)
	}
	log.Println("[Main] database connected")

	var rc *cache.RedisClient
	if cfg.Redis.Enabled {
		rc, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("[Main] redis unavailable, running without cache: %v", err)
			rc = nil
		}
	}

	srv := server.New(cfg, db, rc)
	log.Printf("[Main] listening on %s", cfg.Server.Port)
	if err := srv.Start(); err != nil {
		log.Fatalf("[Main] server stopped: %v", err)
	}
}
