package stories

import (
	"context"
	"log"
	"time"
)

// DefaultSweepInterval is how often the background purge runs.
const DefaultSweepInterval = time.Hour

// RunSweeper purges expired stories on a fixed interval until the context is
// cancelled. The sweep is re-entrant: it may overlap the opportunistic
// read-path purge, and a run finding nothing eligible is a no-op.
func (l *Lifecycle) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("stories: purge sweeper running every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("stories: purge sweeper stopped")
			return
		case <-ticker.C:
			count, err := l.PurgeExpired(ctx)
			if err != nil {
				log.Printf("stories: purge sweep failed: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("stories: purged %d expired stories", count)
			}
		}
	}
}
