// Creates the first admin account from the admin section of
// configs/config.yaml or the JULEKALENDER_ADMIN_* variables. Running it again
// is a no-op.
//
// Usage: go run scripts/create_admin.go

package main

import (
	"julekalender_backend/internal/config"
	"julekalender_backend/internal/repository"
	"julekalender_backend/internal/service"
	"julekalender_backend/pkg/database"
	"julekalender_backend/pkg/logger"
	"log"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Admin.Email == "" || cfg.Admin.Username == "" || len(cfg.Admin.Password) < 8 {
		log.Fatal("admin.email, admin.username and an admin.password of at least 8 characters are required")
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	name := cfg.Admin.Name
	if name == "" {
		name = cfg.Admin.Username
	}

	calendar := service.NewCalendar(cfg.Quiz.Location())
	auth := service.NewAuthService(repository.NewUserRepository(db), cfg, calendar)
	user, created, err := auth.EnsureAdmin(service.RegisterRequest{
		Name:     name,
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	if created {
		log.Printf("Admin user %s created", user.Username)
		return
	}
	log.Printf("User %s already exists", user.Username)
}
