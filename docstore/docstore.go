// Package docstore is the document database behind every repository: untyped
// field bags grouped in collections, partial updates, optimistic transactions
// and live collection subscriptions.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrConflict           = errors.New("document changed by a concurrent write")
	ErrTransactionAborted = errors.New("transaction aborted")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// DefaultMaxAttempts is the retry budget of RunTransaction.
const DefaultMaxAttempts = 5

type Data map[string]any

type Document struct {
	Collection string    `json:"-"`
	ID         string    `json:"id"`
	Data       Data      `json:"data"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (d *Document) clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Data = cloneData(d.Data)
	return &c
}

type Filter struct {
	Field string
	Value any
}

// Query selects documents of one collection. Only equality filters are
// supported; ordering falls back to creation time.
type Query struct {
	Collection string
	Where      []Filter
	OrderBy    string
	Descending bool
}

func Collection(name string) Query {
	return Query{Collection: name}
}

func (q Query) WhereEqual(field string, value any) Query {
	where := make([]Filter, 0, len(q.Where)+1)
	where = append(where, q.Where...)
	q.Where = append(where, Filter{Field: field, Value: normalizeValue(value)})
	return q
}

func (q Query) Order(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

func (q Query) Matches(doc *Document) bool {
	if doc == nil || doc.Collection != q.Collection {
		return false
	}
	for _, f := range q.Where {
		v, _ := lookupPath(doc.Data, f.Field)
		if !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

func (q Query) sort(docs []*Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if q.OrderBy != "" {
			av, _ := lookupPath(a.Data, q.OrderBy)
			bv, _ := lookupPath(b.Data, q.OrderBy)
			if c := compareValues(av, bv); c != 0 {
				if q.Descending {
					return c > 0
				}
				return c < 0
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

type TxFunc func(ctx context.Context, tx Tx) error

// Tx buffers writes until commit. Reads see the transaction's own writes.
type Tx interface {
	Get(collection, id string) (*Document, error)
	Set(collection, id string, data Data) error
	Create(collection string, data Data) (string, error)
	Update(collection, id string, fields Data) error
	Delete(collection, id string)
}

type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	GetAll(ctx context.Context, collection string, ids []string) ([]*Document, error)
	List(ctx context.Context, q Query) ([]*Document, error)
	Create(ctx context.Context, collection string, data Data) (string, error)
	// Set replaces the whole document, creating it when absent.
	Set(ctx context.Context, collection, id string, data Data) error
	// Merge writes the given fields, creating the document when absent.
	Merge(ctx context.Context, collection, id string, fields Data) error
	// Update writes the given fields into an existing document. Keys may be
	// dotted paths ("address.city").
	Update(ctx context.Context, collection, id string, fields Data) error
	// Delete succeeds when the document does not exist.
	Delete(ctx context.Context, collection, id string) error
	// ArrayUnion appends values not already present in the array field.
	ArrayUnion(ctx context.Context, collection, id, field string, values ...any) error
	RunTransaction(ctx context.Context, fn TxFunc) error
	Subscribe(q Query, onChange func([]*Document), onError func(error)) (unsubscribe func())
	Close() error
}

func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Normalize converts any JSON-encodable value (structs, decimals, maps) into
// the plain representation stored in documents.
func Normalize(v any) (Data, error) {
	if v == nil {
		return Data{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	var out Data
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: document must be an object: %v", ErrInvalidArgument, err)
	}
	if out == nil {
		out = Data{}
	}
	return out, nil
}

func normalizeValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func cloneData(d Data) Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(cloneData(t))
	case Data:
		return cloneData(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

func lookupPath(d Data, path string) (any, bool) {
	var cur any = map[string]any(d)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Data:
		return t, true
	}
	return nil, false
}

// applyFields merges already-normalized fields into dst. Dotted keys address
// nested maps, creating intermediate maps as needed.
func applyFields(dst Data, fields Data) {
	for k, v := range fields {
		if !strings.Contains(k, ".") {
			dst[k] = cloneValue(v)
			continue
		}
		parts := strings.Split(k, ".")
		cur := map[string]any(dst)
		for _, p := range parts[:len(parts)-1] {
			next, ok := asMap(cur[p])
			if !ok {
				next = map[string]any{}
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = cloneValue(v)
	}
}

func normalizeFields(fields Data) (Data, error) {
	out := make(Data, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("%w: empty field name", ErrInvalidArgument)
		}
		out[k] = normalizeValue(v)
	}
	return out, nil
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

func validName(collection, id string) error {
	if strings.TrimSpace(collection) == "" || strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: collection and id are required", ErrInvalidArgument)
	}
	if strings.Contains(id, "/") {
		return fmt.Errorf("%w: id %q contains '/'", ErrInvalidArgument, id)
	}
	return nil
}
