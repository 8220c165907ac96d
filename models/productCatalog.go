package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"github.com/google/uuid"
)

type CatalogItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CatalogCategory struct {
	Name  string        `json:"name"`
	Items []CatalogItem `json:"items"`
}

// ProductCatalog maps a category name to its items in insertion order.
type ProductCatalog map[string][]CatalogItem

// Categories lists the catalog sorted by category name.
func (c ProductCatalog) Categories() []CatalogCategory {
	out := make([]CatalogCategory, 0, len(c))
	for name, items := range c {
		if items == nil {
			items = []CatalogItem{}
		}
		out = append(out, CatalogCategory{Name: name, Items: items})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CatalogRepository edits the single ProductMaster/masterData document.
// Every change reads and rewrites it inside a transaction.
type CatalogRepository struct {
	store docstore.Store
}

func NewCatalogRepository(store docstore.Store) *CatalogRepository {
	return &CatalogRepository{store: store}
}

func decodeCatalog(doc *docstore.Document) (ProductCatalog, error) {
	catalog := ProductCatalog{}
	if doc == nil {
		return catalog, nil
	}
	if err := decodeData(doc.Data, &catalog); err != nil {
		return nil, fmt.Errorf("decode product catalog: %w", err)
	}
	return catalog, nil
}

func (r *CatalogRepository) Get(ctx context.Context) (ProductCatalog, error) {
	doc, err := r.store.Get(ctx, CatalogCollection, CatalogDocID)
	if errors.Is(err, docstore.ErrNotFound) {
		return ProductCatalog{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeCatalog(doc)
}

func (r *CatalogRepository) Subscribe(onChange func(ProductCatalog), onError func(error)) func() {
	q := docstore.Collection(CatalogCollection)
	return r.store.Subscribe(q, func(docs []*docstore.Document) {
		var master *docstore.Document
		for _, d := range docs {
			if d.ID == CatalogDocID {
				master = d
			}
		}
		catalog, err := decodeCatalog(master)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(catalog)
	}, onError)
}

func (r *CatalogRepository) modify(ctx context.Context, fn func(ProductCatalog) error) error {
	return r.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		doc, err := tx.Get(CatalogCollection, CatalogDocID)
		if err != nil && !errors.Is(err, docstore.ErrNotFound) {
			return err
		}
		catalog, err := decodeCatalog(doc)
		if err != nil {
			return err
		}
		if err := fn(catalog); err != nil {
			return err
		}
		data, err := docstore.Normalize(catalog)
		if err != nil {
			return err
		}
		return tx.Set(CatalogCollection, CatalogDocID, data)
	})
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", docstore.ErrInvalidArgument)
	}
	return name, nil
}

// AddCategory adds an empty category. Names are case-sensitive.
func (r *CatalogRepository) AddCategory(ctx context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return r.modify(ctx, func(c ProductCatalog) error {
		if _, ok := c[name]; ok {
			return ErrCategoryExists
		}
		c[name] = []CatalogItem{}
		return nil
	})
}

func (r *CatalogRepository) DeleteCategory(ctx context.Context, name string) error {
	return r.modify(ctx, func(c ProductCatalog) error {
		delete(c, name)
		return nil
	})
}

func (r *CatalogRepository) AddItem(ctx context.Context, category, name string) (CatalogItem, error) {
	name, err := cleanName(name)
	if err != nil {
		return CatalogItem{}, err
	}
	item := CatalogItem{ID: uuid.NewString(), Name: name}
	err = r.modify(ctx, func(c ProductCatalog) error {
		items, ok := c[category]
		if !ok {
			return ErrCategoryNotFound
		}
		c[category] = append(items, item)
		return nil
	})
	if err != nil {
		return CatalogItem{}, err
	}
	return item, nil
}

func (r *CatalogRepository) EditItem(ctx context.Context, category, itemID, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return r.modify(ctx, func(c ProductCatalog) error {
		items, ok := c[category]
		if !ok {
			return ErrCategoryNotFound
		}
		for i := range items {
			if items[i].ID == itemID {
				items[i].Name = name
				return nil
			}
		}
		return ErrCatalogItemNotFound
	})
}

// DeleteItem is a no-op for a missing item.
func (r *CatalogRepository) DeleteItem(ctx context.Context, category, itemID string) error {
	return r.modify(ctx, func(c ProductCatalog) error {
		items, ok := c[category]
		if !ok {
			return nil
		}
		kept := items[:0]
		for _, it := range items {
			if it.ID != itemID {
				kept = append(kept, it)
			}
		}
		c[category] = kept
		return nil
	})
}
