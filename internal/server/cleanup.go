// cleanup.go - Background eviction of expired sessions.
package server

import (
	"context"
	"log"
	"time"
)

// CleanupConfig holds configuration for the session cleanup job.
type CleanupConfig struct {
	Enabled  bool
	Interval time.Duration
}

// StartSessionCleanup runs a goroutine that periodically evicts
// expired sessions until ctx is cancelled. Sessions are also evicted
// lazily on access; this job just keeps the map from accumulating
// entries for clients that never return.
func StartSessionCleanup(ctx context.Context, store *SessionStore, cfg CleanupConfig) {
	if !cfg.Enabled {
		log.Printf("service=session-cleanup msg=%q", "disabled")
		return
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	log.Printf("service=session-cleanup msg=%q interval=%s", "starting", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Printf("service=session-cleanup msg=%q", "stopped")
				return
			case <-ticker.C:
				if evicted := store.evictExpired(); evicted > 0 {
					log.Printf("service=session-cleanup msg=%q evicted=%d", "swept", evicted)
				}
			}
		}
	}()
}
