package docstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bitbucket.org/prajapati/wealth_backend/docstore")

type docKey struct {
	collection string
	id         string
}

// version -1 marks a write whose target was never read inside the transaction.
const blindWrite int64 = -1

type pendingWrite struct {
	key      docKey
	deleted  bool
	data     Data
	expected int64
}

// engine is the persistence half of a store. Commit must apply all writes
// atomically and fail with ErrConflict when any read version is stale.
type engine interface {
	get(ctx context.Context, key docKey) (*Document, error)
	getAll(ctx context.Context, collection string, ids []string) ([]*Document, error)
	list(ctx context.Context, collection string) ([]*Document, error)
	commit(ctx context.Context, reads map[docKey]int64, writes []pendingWrite) error
	close() error
}

type Option func(*store)

func WithMaxAttempts(n int) Option {
	return func(s *store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func WithHub(h *Hub) Option {
	return func(s *store) {
		if h != nil {
			s.hub = h
		}
	}
}

// WithRelay forwards committed collection names to other processes.
func WithRelay(r Relay) Option {
	return func(s *store) {
		s.relay = r
	}
}

type Relay interface {
	Broadcast(ctx context.Context, collections []string) error
}

type store struct {
	engine      engine
	hub         *Hub
	relay       Relay
	maxAttempts int
	name        string
}

func newStore(name string, e engine, opts ...Option) *store {
	s := &store{
		engine:      e,
		maxAttempts: DefaultMaxAttempts,
		name:        name,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hub == nil {
		s.hub = NewHub()
	}
	return s
}

func (s *store) startSpan(ctx context.Context, op, collection string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "docstore."+op, trace.WithAttributes(
		attribute.String("docstore.driver", s.name),
		attribute.String("docstore.collection", collection),
	))
}

func (s *store) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := validName(collection, id); err != nil {
		return nil, err
	}
	ctx, span := s.startSpan(ctx, "Get", collection)
	defer span.End()
	doc, err := s.engine.get(ctx, docKey{collection, id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return doc, nil
}

func (s *store) GetAll(ctx context.Context, collection string, ids []string) ([]*Document, error) {
	ctx, span := s.startSpan(ctx, "GetAll", collection)
	defer span.End()
	if len(ids) == 0 {
		return nil, nil
	}
	return s.engine.getAll(ctx, collection, ids)
}

func (s *store) List(ctx context.Context, q Query) ([]*Document, error) {
	ctx, span := s.startSpan(ctx, "List", q.Collection)
	defer span.End()
	return s.list(ctx, q)
}

func (s *store) list(ctx context.Context, q Query) ([]*Document, error) {
	all, err := s.engine.list(ctx, q.Collection)
	if err != nil {
		return nil, err
	}
	out := make([]*Document, 0, len(all))
	for _, d := range all {
		if q.Matches(d) {
			out = append(out, d)
		}
	}
	q.sort(out)
	return out, nil
}

func (s *store) Create(ctx context.Context, collection string, data Data) (string, error) {
	var id string
	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		id, err = tx.Create(collection, data)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *store) Set(ctx context.Context, collection, id string, data Data) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Set(collection, id, data)
	})
}

func (s *store) Merge(ctx context.Context, collection, id string, fields Data) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		doc, err := tx.Get(collection, id)
		if errors.Is(err, ErrNotFound) {
			return tx.Set(collection, id, fields)
		}
		if err != nil {
			return err
		}
		normalized, err := normalizeFields(fields)
		if err != nil {
			return err
		}
		merged := cloneData(doc.Data)
		applyFields(merged, normalized)
		return tx.Set(collection, id, merged)
	})
}

func (s *store) Update(ctx context.Context, collection, id string, fields Data) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Update(collection, id, fields)
	})
}

func (s *store) Delete(ctx context.Context, collection, id string) error {
	if err := validName(collection, id); err != nil {
		return err
	}
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		tx.Delete(collection, id)
		return nil
	})
}

func (s *store) ArrayUnion(ctx context.Context, collection, id, field string, values ...any) error {
	return s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		doc, err := tx.Get(collection, id)
		if err != nil {
			return err
		}
		current, _ := lookupPath(doc.Data, field)
		arr, _ := current.([]any)
		arr = append([]any(nil), arr...)
		for _, v := range values {
			nv := normalizeValue(v)
			if !containsValue(arr, nv) {
				arr = append(arr, nv)
			}
		}
		return tx.Update(collection, id, Data{field: arr})
	})
}

func containsValue(arr []any, v any) bool {
	for _, item := range arr {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}

func (s *store) RunTransaction(ctx context.Context, fn TxFunc) error {
	ctx, span := s.startSpan(ctx, "RunTransaction", "")
	defer span.End()

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := newTransaction(ctx, s.engine)
		if err := fn(ctx, tx); err != nil {
			return err
		}
		writes := tx.pendingWrites()
		if len(writes) == 0 {
			return nil
		}
		err := s.engine.commit(ctx, tx.reads, writes)
		if err == nil {
			span.SetAttributes(attribute.Int("docstore.attempts", attempt))
			s.publish(ctx, writes)
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return err
		}
		lastErr = err
		transactionRetries.WithLabelValues(s.name).Inc()
		backoff := time.NewTimer(time.Duration(rand.Intn(attempt*5)+1) * time.Millisecond)
		select {
		case <-ctx.Done():
			backoff.Stop()
			return ctx.Err()
		case <-backoff.C:
		}
	}
	transactionAborts.WithLabelValues(s.name).Inc()
	return fmt.Errorf("%w after %d attempts: %w", ErrTransactionAborted, s.maxAttempts, lastErr)
}

func (s *store) publish(ctx context.Context, writes []pendingWrite) {
	seen := make(map[string]bool)
	var collections []string
	for _, w := range writes {
		if !seen[w.key.collection] {
			seen[w.key.collection] = true
			collections = append(collections, w.key.collection)
		}
	}
	sort.Strings(collections)
	s.hub.Publish(collections...)
	if s.relay != nil {
		// the local hub already has the change; a relay failure only delays
		// other instances until their next change
		_ = s.relay.Broadcast(ctx, collections)
	}
}

func (s *store) Subscribe(q Query, onChange func([]*Document), onError func(error)) func() {
	sub := s.hub.add(q.Collection)
	// The listing can outlast an unsubscribe, so stopped is checked right
	// before each callback.
	deliver := func() {
		docs, err := s.list(context.Background(), q)
		if err != nil {
			if onError != nil && !sub.stopped() {
				onError(err)
			}
			return
		}
		if sub.stopped() {
			return
		}
		onChange(docs)
	}
	go func() {
		deliver()
		for {
			select {
			case <-sub.done:
				return
			case <-sub.wake:
				deliver()
			}
		}
	}()
	return func() {
		s.hub.remove(sub)
	}
}

func (s *store) Close() error {
	s.hub.closeAll()
	return s.engine.close()
}

type transaction struct {
	ctx    context.Context
	engine engine
	reads  map[docKey]int64
	state  map[docKey]*Document
	order  []docKey
	writes map[docKey]*pendingWrite
	mu     sync.Mutex
}

func newTransaction(ctx context.Context, e engine) *transaction {
	return &transaction{
		ctx:    ctx,
		engine: e,
		reads:  make(map[docKey]int64),
		state:  make(map[docKey]*Document),
		writes: make(map[docKey]*pendingWrite),
	}
}

func (t *transaction) Get(collection, id string) (*Document, error) {
	if err := validName(collection, id); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	key := docKey{collection, id}
	if doc, ok := t.state[key]; ok {
		if doc == nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return doc.clone(), nil
	}
	doc, err := t.engine.get(t.ctx, key)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		t.reads[key] = 0
		t.state[key] = nil
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	t.reads[key] = doc.Version
	t.state[key] = doc
	return doc.clone(), nil
}

func (t *transaction) Set(collection, id string, data Data) error {
	if err := validName(collection, id); err != nil {
		return err
	}
	normalized, err := Normalize(data)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	key := docKey{collection, id}
	t.record(key, &pendingWrite{key: key, data: normalized})
	t.state[key] = &Document{Collection: collection, ID: id, Data: cloneData(normalized)}
	return nil
}

func (t *transaction) Create(collection string, data Data) (string, error) {
	id := NewID()
	if err := t.Set(collection, id, data); err != nil {
		return "", err
	}
	t.mu.Lock()
	// a fresh id must not exist yet
	t.reads[docKey{collection, id}] = 0
	t.mu.Unlock()
	return id, nil
}

func (t *transaction) Update(collection, id string, fields Data) error {
	doc, err := t.Get(collection, id)
	if err != nil {
		return err
	}
	normalized, err := normalizeFields(fields)
	if err != nil {
		return err
	}
	merged := doc.Data
	if merged == nil {
		merged = Data{}
	}
	applyFields(merged, normalized)
	return t.Set(collection, id, merged)
}

func (t *transaction) Delete(collection, id string) {
	if validName(collection, id) != nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	key := docKey{collection, id}
	t.record(key, &pendingWrite{key: key, deleted: true})
	t.state[key] = nil
}

func (t *transaction) record(key docKey, w *pendingWrite) {
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = w
}

func (t *transaction) pendingWrites() []pendingWrite {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]pendingWrite, 0, len(t.order))
	for _, key := range t.order {
		w := *t.writes[key]
		if v, ok := t.reads[key]; ok {
			w.expected = v
		} else {
			w.expected = blindWrite
		}
		out = append(out, w)
	}
	return out
}
