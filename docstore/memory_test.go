package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

func waitSnapshot(t *testing.T, ch <-chan []*Document, want int) []*Document {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case docs := <-ch:
			if len(docs) == want {
				return docs
			}
		case <-deadline:
			t.Fatalf("no snapshot with %d documents", want)
		}
	}
}

func TestUpdate_MergesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	id, err := s.Create(ctx, "clients", Data{
		"name":    "Asha",
		"city":    "Pune",
		"address": map[string]any{"city": "Pune", "pin": "411001"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, _ := s.Get(ctx, "clients", id)

	if err := s.Update(ctx, "clients", id, Data{"name": "Asha K", "address.pin": "411002"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	after, err := s.Get(ctx, "clients", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if after.Data["name"] != "Asha K" {
		t.Fatalf("name not updated: %v", after.Data["name"])
	}
	if !reflect.DeepEqual(after.Data["city"], before.Data["city"]) {
		t.Fatalf("untouched field changed: %v", after.Data["city"])
	}
	addr := after.Data["address"].(map[string]any)
	if addr["city"] != "Pune" || addr["pin"] != "411002" {
		t.Fatalf("nested merge wrong: %v", addr)
	}
	if after.Version != before.Version+1 {
		t.Fatalf("expected version %d, got %d", before.Version+1, after.Version)
	}
}

func TestUpdate_MissingDocument(t *testing.T) {
	s := NewMemoryStore()
	err := s.Update(context.Background(), "clients", "nope", Data{"name": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id, _ := s.Create(ctx, "areas", Data{"name": "Kothrud"})

	for i := 0; i < 2; i++ {
		if err := s.Delete(ctx, "areas", id); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
	if _, err := s.Get(ctx, "areas", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected document to be gone, got %v", err)
	}
	if err := s.Delete(ctx, "areas", "never-existed"); err != nil {
		t.Fatalf("delete of unknown id: %v", err)
	}
}

func TestArrayUnion_SkipsEqualMembers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	id, _ := s.Create(ctx, "clients", Data{"name": "Ravi"})

	member := map[string]any{"relation": "Wife", "name": "Meera"}
	if err := s.ArrayUnion(ctx, "clients", id, "familyMembers", member); err != nil {
		t.Fatalf("first union: %v", err)
	}
	if err := s.ArrayUnion(ctx, "clients", id, "familyMembers", member, map[string]any{"relation": "Father", "name": "Ram"}); err != nil {
		t.Fatalf("second union: %v", err)
	}
	doc, _ := s.Get(ctx, "clients", id)
	members := doc.Data["familyMembers"].([]any)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].(map[string]any)["name"] != "Meera" {
		t.Fatalf("order not kept: %v", members)
	}
}

func TestList_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Create(ctx, "employees", Data{"name": "zara", "createdBy": "a"})
	s.Create(ctx, "employees", Data{"name": "Amit", "createdBy": "a"})
	s.Create(ctx, "employees", Data{"name": "Bela", "createdBy": "b"})

	docs, err := s.List(ctx, Collection("employees").WhereEqual("createdBy", "a").Order("name", false))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 || docs[0].Data["name"] != "Amit" || docs[1].Data["name"] != "zara" {
		t.Fatalf("unexpected list: %+v", docs)
	}
}

func TestSubscribe_ImmediateThenOnChange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Create(ctx, "locations", Data{"name": "Thane"})

	ch := make(chan []*Document, 16)
	unsubscribe := s.Subscribe(Collection("locations"), func(docs []*Document) {
		ch <- docs
	}, func(err error) {
		t.Errorf("unexpected subscription error: %v", err)
	})

	waitSnapshot(t, ch, 1)

	id, _ := s.Create(ctx, "locations", Data{"name": "Vashi"})
	waitSnapshot(t, ch, 2)

	s.Delete(ctx, "locations", id)
	waitSnapshot(t, ch, 1)

	unsubscribe()
	unsubscribe()
	s.Create(ctx, "locations", Data{"name": "Dadar"})
	select {
	case docs := <-ch:
		if len(docs) == 2 {
			t.Fatalf("snapshot delivered after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribe_IgnoresOtherCollections(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	calls := make(chan struct{}, 16)
	unsubscribe := s.Subscribe(Collection("areas"), func([]*Document) { calls <- struct{}{} }, nil)
	defer unsubscribe()
	<-calls

	s.Create(ctx, "locations", Data{"name": "Vashi"})
	select {
	case <-calls:
		t.Fatalf("woken by a write to another collection")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRunTransaction_RetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Set(ctx, "metadata", "counter", Data{"count": 0})

	attempts := 0
	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		attempts++
		doc, err := tx.Get("metadata", "counter")
		if err != nil {
			return err
		}
		if attempts == 1 {
			// a write landing between read and commit
			if err := s.Set(ctx, "metadata", "counter", Data{"count": 10}); err != nil {
				return err
			}
		}
		return tx.Set("metadata", "counter", Data{"count": doc.Data["count"].(float64) + 1})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	doc, _ := s.Get(ctx, "metadata", "counter")
	if doc.Data["count"] != float64(11) {
		t.Fatalf("expected count 11, got %v", doc.Data["count"])
	}
}

func TestRunTransaction_AbortsAfterBudget(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithMaxAttempts(2))
	s.Set(ctx, "metadata", "counter", Data{"count": 0})

	n := 0
	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.Get("metadata", "counter"); err != nil {
			return err
		}
		n++
		s.Set(ctx, "metadata", "counter", Data{"count": n})
		_, err := tx.Create("clients", Data{"name": fmt.Sprint("c", n)})
		return err
	})
	if !errors.Is(err, ErrTransactionAborted) || !errors.Is(err, ErrConflict) {
		t.Fatalf("expected aborted conflict, got %v", err)
	}
	docs, _ := s.List(ctx, Collection("clients"))
	if len(docs) != 0 {
		t.Fatalf("aborted transaction left %d documents", len(docs))
	}
}

func TestRunTransaction_CancelledDuringRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewMemoryStore(WithMaxAttempts(50))
	s.Set(ctx, "metadata", "counter", Data{"count": 0})

	attempts := 0
	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		attempts++
		if _, err := tx.Get("metadata", "counter"); err != nil {
			return err
		}
		s.Set(context.Background(), "metadata", "counter", Data{"count": attempts})
		cancel()
		return tx.Set("metadata", "counter", Data{"count": -1})
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
	doc, _ := s.Get(context.Background(), "metadata", "counter")
	if doc.Data["count"] != float64(1) {
		t.Fatalf("count = %v, want 1", doc.Data["count"])
	}
}

func TestSubscribe_NoCallbacksAfterUnsubscribe(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var mu sync.Mutex
	stopped := false
	late := 0
	first := make(chan struct{}, 1)
	unsubscribe := s.Subscribe(Collection("areas"), func([]*Document) {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			late++
		}
		select {
		case first <- struct{}{}:
		default:
		}
	}, nil)
	<-first

	unsubscribe()
	mu.Lock()
	stopped = true
	mu.Unlock()
	for i := 0; i < 20; i++ {
		s.Create(ctx, "areas", Data{"name": fmt.Sprint("a", i)})
	}
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if late != 0 {
		t.Fatalf("%d snapshots delivered after unsubscribe", late)
	}
}

func TestRunTransaction_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	const workers = 20
	s := NewMemoryStore(WithMaxAttempts(workers))

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
				count := 0.0
				doc, err := tx.Get("metadata", "counter")
				if err == nil {
					count = doc.Data["count"].(float64)
				} else if !errors.Is(err, ErrNotFound) {
					return err
				}
				return tx.Set("metadata", "counter", Data{"count": count + 1})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("transaction: %v", err)
		}
	}
	doc, _ := s.Get(ctx, "metadata", "counter")
	if doc.Data["count"] != float64(workers) {
		t.Fatalf("expected %d, got %v", workers, doc.Data["count"])
	}
}
