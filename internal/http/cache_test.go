package http

import (
	"strconv"
	"testing"
	"time"
)

func TestLRUCacheBasicOperations(t *testing.T) {
	cache := newLRUCache[int](10, time.Minute)

	if _, found := cache.Get("missing"); found {
		t.Fatal("empty cache should miss")
	}

	cache.Set("a", 1)
	if v, found := cache.Get("a"); !found || v != 1 {
		t.Fatalf("get after set: %v %v", v, found)
	}

	cache.Set("a", 2)
	if v, _ := cache.Get("a"); v != 2 {
		t.Fatalf("overwrite: %v", v)
	}

	cache.Delete("a")
	if _, found := cache.Get("a"); found {
		t.Fatal("deleted entry should miss")
	}
}

func TestLRUCacheEviction(t *testing.T) {
	cache := newLRUCache[int](3, time.Minute)

	for i := 0; i < 3; i++ {
		cache.Set(strconv.Itoa(i), i)
	}
	// Touch "0" so "1" is the least recently used.
	cache.Get("0")
	cache.Set("3", 3)

	if _, found := cache.Get("1"); found {
		t.Fatal("least recently used entry should be evicted")
	}
	if _, found := cache.Get("0"); !found {
		t.Fatal("recently used entry should survive")
	}
	if cache.Size() != 3 {
		t.Fatalf("size: %d", cache.Size())
	}
}

func TestLRUCacheTTLExpiration(t *testing.T) {
	cache := newLRUCache[string](10, 10*time.Millisecond)

	cache.Set("k", "v")
	if _, found := cache.Get("k"); !found {
		t.Fatal("fresh entry should hit")
	}

	time.Sleep(20 * time.Millisecond)
	if _, found := cache.Get("k"); found {
		t.Fatal("expired entry should miss")
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	cache := newLRUCache[int](10, 10*time.Millisecond)

	cache.Set("a", 1)
	cache.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	cache.Set("c", 3)

	if removed := cache.CleanExpired(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if cache.Size() != 1 {
		t.Fatalf("size after cleanup: %d", cache.Size())
	}
}

func TestLRUCachePurge(t *testing.T) {
	cache := newLRUCache[int](10, time.Minute)

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Purge()

	if cache.Size() != 0 {
		t.Fatalf("size after purge: %d", cache.Size())
	}
	if _, found := cache.Get("a"); found {
		t.Fatal("purged entry should miss")
	}
}

func BenchmarkLRUCache(b *testing.B) {
	cache := newLRUCache[int](100, time.Minute)
	for i := 0; i < 100; i++ {
		cache.Set(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get(strconv.Itoa(i % 100))
	}
}
