package cache

import (
	"context"
	"testing"
	"time"

	"github.com/fritter/fritter/pkg/config"
)

func TestNewDisabled(t *testing.T) {
	cfg := &config.RedisConfig{Enabled: false}
	cache, err := New(cfg)
	if err != nil {
		t.Fatalf("New() with disabled cache returned error: %v", err)
	}
	if cache != nil {
		t.Error("New() with disabled cache should return nil")
	}
}

func TestNilCacheOperations(t *testing.T) {
	// All operations on a nil cache must be safe and report disabled
	var cache *Cache

	if _, err := cache.Get("key"); err != ErrCacheDisabled {
		t.Errorf("Get: got %v, want ErrCacheDisabled", err)
	}
	if err := cache.Set("key", "value", time.Minute); err != ErrCacheDisabled {
		t.Errorf("Set: got %v, want ErrCacheDisabled", err)
	}
	if err := cache.SetJSON("key", map[string]int{"n": 1}, time.Minute); err != ErrCacheDisabled {
		t.Errorf("SetJSON: got %v, want ErrCacheDisabled", err)
	}
	if err := cache.Delete("key"); err != ErrCacheDisabled {
		t.Errorf("Delete: got %v, want ErrCacheDisabled", err)
	}
	if _, err := cache.Exists("key"); err != ErrCacheDisabled {
		t.Errorf("Exists: got %v, want ErrCacheDisabled", err)
	}
	if err := cache.Health(context.Background()); err != ErrCacheDisabled {
		t.Errorf("Health: got %v, want ErrCacheDisabled", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close: got %v, want nil", err)
	}
}

func TestNamespaceKey(t *testing.T) {
	var cache *Cache
	if got := cache.namespaceKey("feed:1"); got != "fritter:feed:1" {
		t.Errorf("namespaceKey = %q, want %q", got, "fritter:feed:1")
	}
}

func TestHashKey(t *testing.T) {
	first := HashKey("get_feed", "7", "home", "best")
	second := HashKey("get_feed", "7", "home", "best")
	if first != second {
		t.Error("HashKey is not deterministic")
	}
	if len(first) != 32 {
		t.Errorf("HashKey length = %d, want 32 hex chars", len(first))
	}
	if other := HashKey("get_feed", "7", "home", "hot"); other == first {
		t.Error("different inputs produced the same key")
	}
}
