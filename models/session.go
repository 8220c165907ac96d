package models

import (
	"context"
	"sync"
	"time"

	"bitbucket.org/prajapati/wealth_backend/config"
)

// SessionStore remembers which token ids are signed in.
type SessionStore interface {
	Save(ctx context.Context, tokenID, uid string, ttl time.Duration) error
	Lookup(ctx context.Context, tokenID string) (string, bool, error)
	Remove(ctx context.Context, tokenID string) error
}

type RedisSessionStore struct{}

func sessionKey(tokenID string) string {
	return "Session:" + tokenID
}

func (RedisSessionStore) Save(ctx context.Context, tokenID, uid string, ttl time.Duration) error {
	return config.SetRedisValue(ctx, sessionKey(tokenID), uid, ttl)
}

func (RedisSessionStore) Lookup(ctx context.Context, tokenID string) (string, bool, error) {
	return config.GetRedisValue(ctx, sessionKey(tokenID))
}

func (RedisSessionStore) Remove(ctx context.Context, tokenID string) error {
	return config.RemoveRedisKey(ctx, sessionKey(tokenID))
}

// MemorySessionStore keeps sessions in process; used when redis is not
// configured and in tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	uid     string
	expires time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

func (m *MemorySessionStore) Save(_ context.Context, tokenID, uid string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[tokenID] = memorySession{uid: uid, expires: time.Now().Add(ttl)}
	return nil
}

func (m *MemorySessionStore) Lookup(_ context.Context, tokenID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tokenID]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(s.expires) {
		delete(m.sessions, tokenID)
		return "", false, nil
	}
	return s.uid, true, nil
}

func (m *MemorySessionStore) Remove(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tokenID)
	return nil
}
