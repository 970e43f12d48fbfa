package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 30 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 30 * time.Second},
		{"negative failures", -1, 30 * time.Second},
		{"one failure", 1, time.Minute},
		{"two failures", 2, 2 * time.Minute},
		{"three failures", 3, 4 * time.Minute},
		{"four failures capped", 4, 5 * time.Minute}, // Would be 8m, capped to 5m
		{"many failures capped", 40, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 100; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type countingRefresher struct {
	mu     sync.Mutex
	calls  int
	fail   bool
	stopAt int
	cancel context.CancelFunc
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls >= c.stopAt {
		c.cancel()
	}
	if c.fail {
		return errors.New("offline")
	}
	return nil
}

func TestRunPoller_RefreshesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &countingRefresher{stopAt: 3, cancel: cancel}

	done := make(chan error, 1)
	go func() { done <- RunPoller(ctx, r, time.Millisecond) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunPoller returned %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunPoller did not stop after cancel")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls != 3 {
		t.Fatalf("Refresh calls = %d, want 3", r.calls)
	}
}

func TestRunPoller_FailureDuringCancelExits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &countingRefresher{stopAt: 1, fail: true, cancel: cancel}

	if err := RunPoller(ctx, r, time.Hour); err != nil {
		t.Fatalf("RunPoller returned %v, want nil", err)
	}
}
