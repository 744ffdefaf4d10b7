package main

import (
	"context"
	"log"

	"pulse-companion-be/internal/config"
	"pulse-companion-be/internal/pkg/logger"
	"pulse-companion-be/internal/repository/unitofwork"
	"pulse-companion-be/internal/service"
	"pulse-companion-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	defer sysLogger.Sync()

	log.Println("Seeding demo patient...")

	seeder := service.NewSeedService(unitofwork.NewRepositoryFactory(db), nil, sysLogger)
	res, err := seeder.SeedDemo(context.Background())
	if err != nil {
		log.Fatalf("Error: seeding failed: %v", err)
	}

	log.Printf("✅ Database ready! Patient %s: %d normal + %d declining days", res.PatientId, res.Normal, res.Declining)
}
