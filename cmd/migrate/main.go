package main

import (
	"log"

	"pulse-companion-be/internal/config"
	"pulse-companion-be/internal/model"
	"pulse-companion-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// 1. Pre-Migration: gen_random_uuid() comes from pgcrypto
	log.Println("Step 1: Setting up Extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	// 2. AutoMigrate
	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.Patient{},
		&model.VitalReading{},
		&model.CheckinTurn{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 3. Post-Migration: constraints and views
	log.Println("Step 3: Creating Constraints and Views...")
	postMigrationSQL := []string{
		`DO $$ BEGIN
		   ALTER TABLE vital_readings ADD CONSTRAINT chk_vital_quality CHECK (quality_score BETWEEN 0 AND 1);
		 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		`DO $$ BEGIN
		   ALTER TABLE vital_readings ADD CONSTRAINT chk_vital_heart_rate CHECK (heart_rate > 0 AND heart_rate <= 250);
		 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		`DO $$ BEGIN
		   ALTER TABLE vital_readings ADD CONSTRAINT fk_vital_patient FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE;
		 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,
		`DO $$ BEGIN
		   ALTER TABLE checkin_turns ADD CONSTRAINT fk_checkin_patient FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE;
		 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

		// View: daily averages for dashboards
		`CREATE OR REPLACE VIEW patient_daily_vitals AS
		 SELECT patient_id, date_trunc('day', recorded_at) AS day,
		        avg(heart_rate) AS avg_heart_rate, avg(hrv) AS avg_hrv, count(*) AS readings
		 FROM vital_readings
		 GROUP BY patient_id, date_trunc('day', recorded_at);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
