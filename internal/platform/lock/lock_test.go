package lock

import (
	"context"
	"sync"
	"testing"
)

func TestStriped_SerializesSameKey(t *testing.T) {
	locker := NewStriped()
	ctx := context.Background()

	const writers = 20
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(ctx, "order:abc", func(ctx context.Context) error {
				v := counter
				counter = v + 1
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if counter != writers {
		t.Fatalf("expected counter %d, got %d", writers, counter)
	}
}

func TestStriped_PropagatesError(t *testing.T) {
	locker := NewStriped()

	want := context.DeadlineExceeded
	err := locker.WithLock(context.Background(), "k", func(ctx context.Context) error {
		return want
	})
	if err != want {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestStriped_CancelledContext(t *testing.T) {
	locker := NewStriped()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := locker.WithLock(ctx, "k", func(ctx context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if called {
		t.Fatal("fn should not run under a cancelled context")
	}
}
