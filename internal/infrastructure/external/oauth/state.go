package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

const statePrefix = "oauth:state:"

// Store is the key-value backend for state tokens (memory or Redis)
type Store interface {
	Set(key string, value string, expiration time.Duration)
	Get(key string) (string, bool)
	Delete(key string)
}

// StateManager issues and consumes one-time OAuth state tokens for CSRF protection
type StateManager struct {
	store      Store
	expiration time.Duration
}

// NewStateManager creates a new state manager
func NewStateManager(store Store) *StateManager {
	return &StateManager{
		store:      store,
		expiration: 15 * time.Minute,
	}
}

// GenerateState generates a random state token and stores it
func (sm *StateManager) GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	state := base64.RawURLEncoding.EncodeToString(b)
	sm.store.Set(statePrefix+state, "1", sm.expiration)
	return state, nil
}

// ValidateState consumes state; a token validates at most once
func (sm *StateManager) ValidateState(state string) bool {
	if state == "" {
		return false
	}
	key := statePrefix + state
	if _, exists := sm.store.Get(key); !exists {
		return false
	}
	sm.store.Delete(key)
	return true
}
