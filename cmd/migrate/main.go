package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/salonhq/salonhq/internal/config"
	"github.com/salonhq/salonhq/internal/logger"
	"github.com/salonhq/salonhq/internal/postgres"
	postgresRepo "github.com/salonhq/salonhq/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	db, err := postgres.NewDB(cfg, logg)
	if err != nil {
		logg.Fatalf("failed to connect to postgres: %v", err)
	}

	if err := postgresRepo.Migrate(db); err != nil {
		logg.Fatalf("migration failed: %v", err)
	}

	logg.Info("migrations applied")
}
