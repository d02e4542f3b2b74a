package main

import (
	"flag"
	"julekalender_backend/internal/app"
	"julekalender_backend/internal/config"
	"julekalender_backend/pkg/logger"
	"log"

	_ "time/tzdata"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	migrate := flag.Bool("migrate", false, "run database migrations on start, even in release mode")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration completed, exiting")
		return
	}

	application.Run()
}
