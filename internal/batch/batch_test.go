package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWithSemaphoreBoundsConcurrency(t *testing.T) {
	sem := make(chan struct{}, 2)
	var active int32
	var maxActive int32

	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		go func() {
			_ = withSemaphore(context.Background(), sem, "test", func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					cur := atomic.LoadInt32(&maxActive)
					if n <= cur || atomic.CompareAndSwapInt32(&maxActive, cur, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 5; i++ {
		<-done
	}

	if maxActive > 2 {
		t.Errorf("expected at most 2 concurrent, saw %d", maxActive)
	}
}

func TestWithSemaphorePropagatesError(t *testing.T) {
	sem := make(chan struct{}, 1)
	wantErr := errors.New("boom")
	err := withSemaphore(context.Background(), sem, "test", func() error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestWithSemaphoreCancelledContext(t *testing.T) {
	sem := make(chan struct{}, 1)
	sem <- struct{}{} // fill the only slot

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := withSemaphore(ctx, sem, "test", func() error {
		t.Fatal("fn should not run when context is already cancelled and slot is full")
		return nil
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
