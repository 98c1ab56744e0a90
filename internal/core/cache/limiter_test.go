package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(3, 15*time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if blocked, _ := l.Blocked(ctx, "1.2.3.4"); blocked {
			t.Fatalf("blocked after %d failures", i-1)
		}
		n, _ := l.Fail(ctx, "1.2.3.4")
		if n != int64(i) {
			t.Fatalf("count = %d, want %d", n, i)
		}
	}
	if blocked, _ := l.Blocked(ctx, "1.2.3.4"); !blocked {
		t.Fatal("expected key to be blocked")
	}
	if blocked, _ := l.Blocked(ctx, "5.6.7.8"); blocked {
		t.Fatal("other keys must not be blocked")
	}

	now = now.Add(15 * time.Minute)
	if blocked, _ := l.Blocked(ctx, "1.2.3.4"); blocked {
		t.Fatal("window should have expired")
	}
}

func TestMemoryLimiterReset(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()
	_, _ = l.Fail(ctx, "k")
	if blocked, _ := l.Blocked(ctx, "k"); !blocked {
		t.Fatal("expected blocked")
	}
	_ = l.Reset(ctx, "k")
	if blocked, _ := l.Blocked(ctx, "k"); blocked {
		t.Fatal("reset should unblock")
	}
}
