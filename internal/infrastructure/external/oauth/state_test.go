package oauth

import (
	"sync"
	"testing"
	"time"
)

type mapStore struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *mapStore) Set(key, value string, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *mapStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *mapStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

func TestStateManager_OneTimeUse(t *testing.T) {
	sm := NewStateManager(&mapStore{m: map[string]string{}})

	state, err := sm.GenerateState()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !sm.ValidateState(state) {
		t.Fatal("fresh state should validate")
	}
	if sm.ValidateState(state) {
		t.Fatal("state must not validate twice")
	}
	if sm.ValidateState("") || sm.ValidateState("forged") {
		t.Fatal("unknown state must not validate")
	}
}
