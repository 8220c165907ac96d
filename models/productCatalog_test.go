package models

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCatalog_Categories(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	catalog := repos.Catalog

	if err := catalog.AddCategory(ctx, "FD"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := catalog.AddCategory(ctx, "FD"); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("duplicate err = %v", err)
	}
	if err := catalog.AddCategory(ctx, "fd"); err != nil {
		t.Fatalf("names are case-sensitive: %v", err)
	}
	if err := catalog.AddCategory(ctx, "  "); err == nil {
		t.Fatalf("blank category accepted")
	}
	got, _ := catalog.Get(ctx)
	if len(got) != 2 {
		t.Fatalf("catalog = %v", got)
	}
	if err := catalog.DeleteCategory(ctx, "fd"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = catalog.Get(ctx)
	if _, ok := got["fd"]; ok {
		t.Fatalf("category not deleted: %v", got)
	}
}

func TestCatalog_Items(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	catalog := repos.Catalog

	if _, err := catalog.AddItem(ctx, "Missing", "x"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("missing category err = %v", err)
	}
	_ = catalog.AddCategory(ctx, "Insurance")
	first, err := catalog.AddItem(ctx, "Insurance", "LIC Jeevan")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	second, _ := catalog.AddItem(ctx, "Insurance", "Term Plan")
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("item ids %q %q", first.ID, second.ID)
	}

	if err := catalog.EditItem(ctx, "Insurance", first.ID, "LIC Jeevan Anand"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := catalog.EditItem(ctx, "Insurance", "nope", "x"); !errors.Is(err, ErrCatalogItemNotFound) {
		t.Fatalf("edit missing err = %v", err)
	}
	if err := catalog.DeleteItem(ctx, "Insurance", second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, _ := catalog.Get(ctx)
	items := got["Insurance"]
	if len(items) != 1 || items[0].Name != "LIC Jeevan Anand" || items[0].ID != first.ID {
		t.Fatalf("items = %+v", items)
	}
}

func TestCatalog_Subscribe(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	updates := make(chan ProductCatalog, 10)
	stop := repos.Catalog.Subscribe(func(c ProductCatalog) { updates <- c }, nil)
	defer stop()

	select {
	case c := <-updates:
		if len(c) != 0 {
			t.Fatalf("initial catalog = %v", c)
		}
	case <-time.After(time.Second):
		t.Fatalf("no initial snapshot")
	}
	_ = repos.Catalog.AddCategory(ctx, "Postal")
	deadline := time.After(time.Second)
	for {
		select {
		case c := <-updates:
			if _, ok := c["Postal"]; ok {
				return
			}
		case <-deadline:
			t.Fatalf("no snapshot with the new category")
		}
	}
}
