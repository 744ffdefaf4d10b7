package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse-companion-be/internal/bootstrap"
	"pulse-companion-be/internal/config"
	"pulse-companion-be/internal/server"
	"pulse-companion-be/internal/tracer"
	"pulse-companion-be/pkg/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional; in-memory storage without a DSN)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.App.IsProduction())
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg)
	if err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer container.Close()

	shutdownTracer := tracer.InitTracer(ctx, cfg.App.Environment, container.Logger.Zap("TRACER"))
	defer shutdownTracer(context.Background())

	// 4. Start Background Services
	go func() {
		if err := container.ConsumerService.Consume(ctx); err != nil {
			container.Logger.Error("MAIN", "Measurement consumer stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
	if container.NotificationService != nil {
		if err := container.NotificationService.Start(ctx); err != nil {
			container.Logger.Warn("MAIN", "Alerts will only reach this instance", map[string]interface{}{"error": err.Error()})
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			container.Logger.Zap("MAIN").Warn("shutdown_failed", zap.Error(err))
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
