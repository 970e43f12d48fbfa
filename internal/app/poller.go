package app

import (
	"context"
	"log"
	"time"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
)

// Refresher reloads the cache from the server.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// StartPoller launches RunPoller in a background goroutine. It returns
// immediately.
func StartPoller(ctx context.Context, r Refresher, interval time.Duration) {
	go func() { _ = RunPoller(ctx, r, interval) }()
}

// RunPoller refreshes immediately and then every interval until ctx is
// cancelled. After consecutive failures the wait doubles, up to
// maxBackoff; one success resets it.
func RunPoller(ctx context.Context, r Refresher, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	failures := 0
	for {
		if err := r.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
		} else {
			failures = 0
		}

		wait := calculateBackoff(failures, interval)
		if failures > 0 {
			log.Printf("poll failed %d time(s), backoff %v", failures, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// calculateBackoff returns base doubled once per failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
