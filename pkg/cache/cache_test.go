package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheGetLoadsOnce(t *testing.T) {
	c := New(Options{TTL: time.Minute})
	var loads int32

	loader := func(ctx context.Context, key string) (interface{}, bool, error) {
		atomic.AddInt32(&loads, 1)
		return "value-" + key, true, nil
	}

	for i := 0; i < 3; i++ {
		v, ok, err := c.Get(context.Background(), "k1", loader)
		if err != nil || !ok {
			t.Fatalf("unexpected get result: %v %v", ok, err)
		}
		if v.(string) != "value-k1" {
			t.Fatalf("unexpected value %v", v)
		}
	}

	if atomic.LoadInt32(&loads) != 1 {
		t.Fatalf("expected one load, got %d", loads)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(Options{TTL: 10 * time.Millisecond})
	var loads int32
	loader := func(ctx context.Context, key string) (interface{}, bool, error) {
		atomic.AddInt32(&loads, 1)
		return "v", true, nil
	}

	if _, _, err := c.Get(context.Background(), "k", loader); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, _, err := c.Get(context.Background(), "k", loader); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&loads) != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", loads)
	}
}

func TestCacheSingleflightCollapsesConcurrentLoads(t *testing.T) {
	c := New(Options{TTL: time.Minute})
	var loads int32
	loader := func(ctx context.Context, key string) (interface{}, bool, error) {
		atomic.AddInt32(&loads, 1)
		time.Sleep(10 * time.Millisecond)
		return "v", true, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = c.Get(context.Background(), "same", loader)
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(&loads) != 1 {
		t.Fatalf("expected singleflight to collapse loads, got %d", loads)
	}
}

func TestCacheNegativeEntries(t *testing.T) {
	c := New(Options{TTL: time.Minute, NegativeTTL: time.Minute})
	loadErr := errors.New("not found")
	var loads int32
	loader := func(ctx context.Context, key string) (interface{}, bool, error) {
		atomic.AddInt32(&loads, 1)
		return nil, false, loadErr
	}

	for i := 0; i < 2; i++ {
		_, ok, err := c.Get(context.Background(), "missing", loader)
		if ok || !errors.Is(err, loadErr) {
			t.Fatalf("expected cached negative, got ok=%v err=%v", ok, err)
		}
	}
	if atomic.LoadInt32(&loads) != 1 {
		t.Fatalf("expected one load for cached negative, got %d", loads)
	}
}

func TestCacheSetPeekDelete(t *testing.T) {
	c := New(Options{TTL: time.Minute})
	c.Set("k", 42, time.Minute)

	v, ok := c.Peek("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("expected peek hit")
	}

	c.Delete("k")
	if _, ok := c.Peek("k"); ok {
		t.Fatalf("expected delete to remove entry")
	}
}

func TestCacheEviction(t *testing.T) {
	c := New(Options{TTL: time.Minute, MaxEntries: 2})
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Set("c", 3, time.Minute)

	if _, ok := c.Peek("a"); ok {
		t.Fatalf("expected oldest entry evicted")
	}
	if _, ok := c.Peek("c"); !ok {
		t.Fatalf("expected newest entry retained")
	}
}
