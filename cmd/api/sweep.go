package main

import (
	"context"
	"log"
	"time"

	"tourbook/internal/config"
	"tourbook/internal/repository"
)

// scheduleActiveFlagSweep keeps tour_departures.active in step with the
// departure window so room auto-join and audience queries stay cheap.
func scheduleActiveFlagSweep(ctx context.Context, tours *repository.TourRepository, cfg *config.Config) {
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := tours.SweepActiveFlags(ctx, time.Now().UTC())
			if err != nil {
				log.Printf("active flag sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("active flag sweep: updated %d departures", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
