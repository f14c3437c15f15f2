package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/modules/notification"
	"tourbook/internal/repository"
)

// One-shot sweep for cron: recompute departure activity flags and purge
// read notifications past retention.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	tourRepo := repository.NewTourRepository(db)
	n, err := tourRepo.SweepActiveFlags(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("active flag sweep failed: %v", err)
	}
	log.Printf("active flag sweep: updated %d departures", n)

	sweeper := notification.NewSweeper(repository.NewNotificationRepository(db))
	if err := sweeper.SweepOnce(ctx, cfg.NotificationRetentionDays); err != nil {
		log.Fatalf("notification sweep failed: %v", err)
	}
}
