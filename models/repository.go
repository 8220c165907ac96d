package models

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("bitbucket.org/prajapati/wealth_backend/models")

// Repository is the typed view of one collection. Filters and ordering set
// with Where and OrderBy apply to Subscribe and List; filters also limit
// which ids Get, Update and Remove reach.
type Repository[T any] struct {
	store docstore.Store
	query docstore.Query
}

func NewRepository[T any](store docstore.Store, collection string) *Repository[T] {
	return &Repository[T]{store: store, query: docstore.Collection(collection)}
}

func (r *Repository[T]) Collection() string {
	return r.query.Collection
}

func (r *Repository[T]) Store() docstore.Store {
	return r.store
}

// Where returns a copy of the repository restricted to field == value.
func (r *Repository[T]) Where(field string, value any) *Repository[T] {
	return &Repository[T]{store: r.store, query: r.query.WhereEqual(field, value)}
}

func (r *Repository[T]) OrderBy(field string) *Repository[T] {
	return &Repository[T]{store: r.store, query: r.query.Order(field, false)}
}

func (r *Repository[T]) span(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Repository."+op, trace.WithAttributes(
		attribute.String("collection", r.query.Collection),
	))
}

// Subscribe delivers the current records immediately and again after every
// change to the collection until the returned func is called.
func (r *Repository[T]) Subscribe(onChange func([]*T), onError func(error)) func() {
	return r.store.Subscribe(r.query, func(docs []*docstore.Document) {
		records, err := decodeAll[T](docs)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(records)
	}, onError)
}

// Create stores record under a fresh id. Its metadata fields are ignored.
func (r *Repository[T]) Create(ctx context.Context, record *T) (string, error) {
	data, err := encodeRecord(record)
	if err != nil {
		return "", err
	}
	return r.CreateFields(ctx, data)
}

func (r *Repository[T]) CreateFields(ctx context.Context, fields docstore.Data) (string, error) {
	ctx, span := r.span(ctx, "Create")
	defer span.End()
	return r.store.Create(ctx, r.query.Collection, sanitizeFields[T](fields))
}

// Update merges partial into an existing record; unknown keys are dropped.
func (r *Repository[T]) Update(ctx context.Context, id string, partial docstore.Data) error {
	ctx, span := r.span(ctx, "Update")
	defer span.End()
	fields := sanitizeFields[T](partial)
	if len(fields) == 0 || len(r.query.Where) > 0 {
		// still report a missing or out of scope record
		if _, err := r.Document(ctx, id); err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
	}
	return r.store.Update(ctx, r.query.Collection, id, fields)
}

// Remove deletes the record. Removing a missing or out of scope record is
// not an error and deletes nothing.
func (r *Repository[T]) Remove(ctx context.Context, id string) error {
	ctx, span := r.span(ctx, "Remove")
	defer span.End()
	if len(r.query.Where) > 0 {
		_, err := r.Document(ctx, id)
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return r.store.Delete(ctx, r.query.Collection, id)
}

// Document returns the stored fields of the record with id. A record outside
// the repository's Where filters is reported as not found.
func (r *Repository[T]) Document(ctx context.Context, id string) (*docstore.Document, error) {
	doc, err := r.store.Get(ctx, r.query.Collection, id)
	if err != nil {
		return nil, err
	}
	if len(r.query.Where) > 0 && !r.query.Matches(doc) {
		return nil, docstore.ErrNotFound
	}
	return doc, nil
}

func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	ctx, span := r.span(ctx, "Get")
	defer span.End()
	doc, err := r.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	return decodeDocument[T](doc)
}

func (r *Repository[T]) List(ctx context.Context) ([]*T, error) {
	ctx, span := r.span(ctx, "List")
	defer span.End()
	docs, err := r.store.List(ctx, r.query)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](docs)
}

// GetMany loads the records with the given ids; missing ids are left out.
func (r *Repository[T]) GetMany(ctx context.Context, ids []string) (map[string]*T, error) {
	ctx, span := r.span(ctx, "GetMany")
	defer span.End()
	docs, err := r.store.GetAll(ctx, r.query.Collection, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*T, len(docs))
	for _, doc := range docs {
		if len(r.query.Where) > 0 && !r.query.Matches(doc) {
			continue
		}
		rec, err := decodeDocument[T](doc)
		if err != nil {
			return nil, err
		}
		out[doc.ID] = rec
	}
	return out, nil
}

// Raw returns the stored fields of a record, used by exports that keep
// fields the typed record does not know about.
func (r *Repository[T]) Raw(ctx context.Context) ([]*docstore.Document, error) {
	return r.store.List(ctx, r.query)
}

func decodeAll[T any](docs []*docstore.Document) ([]*T, error) {
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		rec, err := decodeDocument[T](doc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.Collection, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
