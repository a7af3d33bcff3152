package locks

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLocalLocker_ExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	release, err := l.Obtain(ctx, "items-import", time.Minute)
	if err != nil {
		t.Fatalf("first Obtain: %v", err)
	}
	if _, err := l.Obtain(ctx, "items-import", time.Minute); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected ErrNotObtained, got %v", err)
	}
	if _, err := l.Obtain(ctx, "other", time.Minute); err != nil {
		t.Fatalf("different key should be free: %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := l.Obtain(ctx, "items-import", time.Minute); err != nil {
		t.Fatalf("Obtain after release: %v", err)
	}
}

func TestLocalLocker_ExpiredHoldCanBeTaken(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return current }

	staleRelease, err := l.Obtain(ctx, "k", time.Second)
	if err != nil {
		t.Fatalf("Obtain: %v", err)
	}
	current = current.Add(2 * time.Second)

	if _, err := l.Obtain(ctx, "k", time.Minute); err != nil {
		t.Fatalf("expired lock should be obtainable: %v", err)
	}
	// Releasing the stale hold must not free the new owner's lock.
	_ = staleRelease(ctx)
	if _, err := l.Obtain(ctx, "k", time.Minute); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected ErrNotObtained, got %v", err)
	}
}
