package notification

import (
	"context"
	"log"
	"time"
)

// Sweeper purges read notifications past the retention threshold. Runs on a
// ticker inside cmd/api and as a one-shot from cmd/sweep.
type Sweeper struct {
	repo Store
}

func NewSweeper(repo Store) *Sweeper {
	return &Sweeper{repo: repo}
}

func (s *Sweeper) SweepOnce(ctx context.Context, retentionDays int) error {
	start := time.Now()

	deleted, err := s.repo.DeleteReadOlderThan(ctx, time.Duration(retentionDays)*24*time.Hour)
	if err != nil {
		log.Printf("notification sweep failed: %v", err)
		return err
	}

	log.Printf("notification sweep: deleted %d read notifications in %v", deleted, time.Since(start))
	return nil
}

// Schedule starts the periodic sweep; the returned channel stops it.
func (s *Sweeper) Schedule(ctx context.Context, interval time.Duration, retentionDays int) chan struct{} {
	stopCh := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.SweepOnce(ctx, retentionDays); err != nil {
					log.Printf("scheduled notification sweep error: %v", err)
				}
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("notification sweep scheduled with interval %v", interval)
	return stopCh
}
