package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_SetGetExpire(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	s.Set("k", "v", time.Minute)
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Fatalf("got %q %v", v, ok)
	}

	s.Set("gone", "v", -time.Second)
	if _, ok := s.Get("gone"); ok {
		t.Fatal("expired key should be absent")
	}

	s.Delete("k")
	if _, ok := s.Get("k"); ok {
		t.Fatal("deleted key should be absent")
	}
}

func TestMemoryStore_TryLockExclusive(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := s.TryLock(ctx, "sync:t:jira", time.Minute); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestMemoryStore_UnlockRequiresToken(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	token, ok, _ := s.TryLock(ctx, "lock", time.Minute)
	if !ok {
		t.Fatal("first claim should succeed")
	}

	_ = s.Unlock(ctx, "lock", "someone-else")
	if _, ok, _ := s.TryLock(ctx, "lock", time.Minute); ok {
		t.Fatal("foreign unlock must not release")
	}

	_ = s.Unlock(ctx, "lock", token)
	if _, ok, _ := s.TryLock(ctx, "lock", time.Minute); !ok {
		t.Fatal("owner unlock should release")
	}
}

func TestMemoryStore_LockExpires(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if _, ok, _ := s.TryLock(ctx, "lock", time.Millisecond); !ok {
		t.Fatal("claim should succeed")
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := s.TryLock(ctx, "lock", time.Minute); !ok {
		t.Fatal("expired claim should be reclaimable")
	}
}
