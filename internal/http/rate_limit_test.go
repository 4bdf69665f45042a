package httpx

import (
	"testing"
	"time"
)

func TestMemoryRateLimiterEnforcesLimit(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	t.Cleanup(limiter.Close)

	for i := 0; i < 3; i++ {
		decision := limiter.Allow("user:abc", 3, time.Minute)
		if !decision.allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	decision := limiter.Allow("user:abc", 3, time.Minute)
	if decision.allowed {
		t.Fatal("fourth request should be rejected")
	}
	if decision.count != 3 {
		t.Fatalf("expected count 3, got %d", decision.count)
	}

	if other := limiter.Allow("user:other", 3, time.Minute); !other.allowed {
		t.Fatal("separate keys must not share windows")
	}
}

func TestMemoryRateLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewMemoryRateLimiter().(*memoryRateLimiter)
	t.Cleanup(limiter.Close)

	limiter.Allow("ip:1.2.3.4", 1, 10*time.Millisecond)
	if decision := limiter.Allow("ip:1.2.3.4", 1, 10*time.Millisecond); decision.allowed {
		t.Fatal("second request in window should be rejected")
	}
	time.Sleep(20 * time.Millisecond)
	if decision := limiter.Allow("ip:1.2.3.4", 1, 10*time.Millisecond); !decision.allowed {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestMemoryRateLimiterCleanup(t *testing.T) {
	limiter := NewMemoryRateLimiter().(*memoryRateLimiter)
	t.Cleanup(limiter.Close)

	limiter.Allow("ip:1.2.3.4", 5, time.Millisecond)
	limiter.cleanup(time.Now().Add(time.Second))

	limiter.mu.Lock()
	remaining := len(limiter.entries)
	limiter.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected expired entries swept, %d left", remaining)
	}
}

func TestZeroLimitDisablesLimiting(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	t.Cleanup(limiter.Close)

	for i := 0; i < 100; i++ {
		if decision := limiter.Allow("user:abc", 0, time.Minute); !decision.allowed {
			t.Fatal("zero limit must disable limiting")
		}
	}
}
