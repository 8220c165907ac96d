package docstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memoryEngine keeps every collection in process memory. Used by tests and
// by DOCSTORE_DRIVER=memory for local development.
type memoryEngine struct {
	mu          sync.RWMutex
	collections map[string]map[string]*Document
	now         func() time.Time
	last        time.Time
}

func NewMemoryStore(opts ...Option) Store {
	e := &memoryEngine{
		collections: make(map[string]map[string]*Document),
		now:         time.Now,
	}
	return newStore("memory", e, opts...)
}

func (m *memoryEngine) get(_ context.Context, key docKey) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc := m.collections[key.collection][key.id]
	return doc.clone(), nil
}

func (m *memoryEngine) getAll(_ context.Context, collection string, ids []string) ([]*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := m.collections[collection][id]; ok {
			out = append(out, doc.clone())
		}
	}
	return out, nil
}

func (m *memoryEngine) list(_ context.Context, collection string) ([]*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.collections[collection]
	out := make([]*Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.clone())
	}
	return out, nil
}

func (m *memoryEngine) version(key docKey) int64 {
	if doc, ok := m.collections[key.collection][key.id]; ok {
		return doc.Version
	}
	return 0
}

func (m *memoryEngine) commit(_ context.Context, reads map[docKey]int64, writes []pendingWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, v := range reads {
		if m.version(key) != v {
			return fmt.Errorf("%s/%s: %w", key.collection, key.id, ErrConflict)
		}
	}

	// strictly increasing timestamps keep creation order stable
	now := m.now()
	if !now.After(m.last) {
		now = m.last.Add(time.Nanosecond)
	}
	m.last = now
	for _, w := range writes {
		docs := m.collections[w.key.collection]
		if docs == nil {
			docs = make(map[string]*Document)
			m.collections[w.key.collection] = docs
		}
		if w.deleted {
			delete(docs, w.key.id)
			continue
		}
		prev, exists := docs[w.key.id]
		doc := &Document{
			Collection: w.key.collection,
			ID:         w.key.id,
			Data:       cloneData(w.data),
			Version:    1,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if exists {
			doc.Version = prev.Version + 1
			doc.CreatedAt = prev.CreatedAt
		}
		docs[w.key.id] = doc
	}
	return nil
}

func (m *memoryEngine) close() error {
	return nil
}
