package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestInMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600) // 1 hour TTL

	if err := c.Set(ctx, "key1", "value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get(ctx, "key1")
	if !ok {
		t.Error("Get should return true for existing key")
	}
	if val != "value1" {
		t.Errorf("Get returned %q, want %q", val, "value1")
	}

	// Test missing key
	val, ok = c.Get(ctx, "nonexistent")
	if ok {
		t.Error("Get should return false for missing key")
	}
	if val != "" {
		t.Errorf("Get should return empty string for missing key, got %q", val)
	}
}

func TestInMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(1) // 1 second TTL

	_ = c.Set(ctx, "key1", "value1")

	if val, ok := c.Get(ctx, "key1"); !ok || val != "value1" {
		t.Error("Value should be available immediately after set")
	}

	time.Sleep(1100 * time.Millisecond)

	if _, ok := c.Get(ctx, "key1"); ok {
		t.Error("Value should be expired after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Expired entry should be removed on read, Len = %d", c.Len())
	}
}

func TestInMemoryCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	_ = c.Set(ctx, "key1", "value1")
	if _, ok := c.Get(ctx, "key1"); !ok {
		t.Error("Value should not expire with TTL 0")
	}
}

func TestInMemoryCache_Overwrite(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600)

	_ = c.Set(ctx, "key1", "value1")
	_ = c.Set(ctx, "key1", "value2")

	if val, _ := c.Get(ctx, "key1"); val != "value2" {
		t.Errorf("Get returned %q, want value2", val)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestInMemoryCache_MaxEntries(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0).WithMaxEntries(2)

	_ = c.Set(ctx, "a", "1")
	time.Sleep(2 * time.Millisecond)
	_ = c.Set(ctx, "b", "2")
	time.Sleep(2 * time.Millisecond)
	_ = c.Set(ctx, "c", "3")

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	for _, k := range []string{"b", "c"} {
		if _, ok := c.Get(ctx, k); !ok {
			t.Errorf("entry %q should still be present", k)
		}
	}

	// Overwriting an existing key does not evict.
	_ = c.Set(ctx, "c", "33")
	if _, ok := c.Get(ctx, "b"); !ok {
		t.Error("overwrite should not evict other entries")
	}
}

func TestInMemoryCache_DeleteClear(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	_ = c.Set(ctx, "a", "1")
	_ = c.Set(ctx, "b", "2")

	c.Delete("a")
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("deleted key should be gone")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestInMemoryCache_Entries(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(0)

	_ = c.Set(ctx, "a", "1")
	_ = c.Set(ctx, "b", "2")

	entries := c.Entries()
	if len(entries) != 2 || entries["a"] != "1" || entries["b"] != "2" {
		t.Errorf("Entries = %v", entries)
	}
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(3600).WithMaxEntries(50)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key%d", n)
			_ = c.Set(ctx, key, "value")
			c.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len = %d, want <= 50", c.Len())
	}
}
