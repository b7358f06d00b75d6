package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAllowSlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := Limiter{Client: client, Prefix: "rl:test:"}
	ctx := context.Background()
	window := 2 * time.Second
	const max = 2

	for i := 0; i < max; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "register-1", window, max)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if remaining != max-(i+1) {
			t.Fatalf("remaining = %d after request %d", remaining, i)
		}
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "register-1", window, max)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed || remaining != 0 {
		t.Fatalf("over-limit request: allowed=%v remaining=%d", allowed, remaining)
	}

	mr.FastForward(window)

	if allowed, _, _, err = limiter.Allow(ctx, "register-1", window, max); err != nil || !allowed {
		t.Fatalf("after window: allowed=%v err=%v", allowed, err)
	}
}

func TestAllowDisabledWithoutClient(t *testing.T) {
	allowed, _, _, err := Limiter{}.Allow(context.Background(), "any", time.Second, 1)
	if err != nil || !allowed {
		t.Fatalf("zero limiter should allow: allowed=%v err=%v", allowed, err)
	}
}

func TestAllowKeysAreIsolated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := Limiter{Client: client, Prefix: "rl:test:"}
	ctx := context.Background()

	if allowed, _, _, _ := limiter.Allow(ctx, "register-1", time.Minute, 1); !allowed {
		t.Fatal("first key should be allowed")
	}
	if allowed, _, _, _ := limiter.Allow(ctx, "register-1", time.Minute, 1); allowed {
		t.Fatal("first key should now be limited")
	}
	if allowed, _, _, _ := limiter.Allow(ctx, "register-2", time.Minute, 1); !allowed {
		t.Fatal("second key should have its own window")
	}
}
