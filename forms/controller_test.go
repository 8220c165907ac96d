package forms

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/models"
)

func validClient() Fields {
	return Fields{
		"name":          "Asha",
		"familyName":    "Rao",
		"dob":           "1980-04-12",
		"number":        "9876543210",
		"maritalStatus": "No",
	}
}

func TestController_NextStaysOnFailingStep(t *testing.T) {
	c := NewController(ClientForm, func(context.Context, string, Fields) error { return nil })
	c.Open("", nil)
	c.Set("name", "Asha")

	if c.Next() {
		t.Fatalf("Next advanced with missing required fields")
	}
	if c.Step() != 0 {
		t.Fatalf("step = %d, want 0", c.Step())
	}
	errs := c.Errors()
	for _, f := range []string{"familyName", "dob", "number"} {
		if errs[f] == "" {
			t.Fatalf("missing error for %s: %v", f, errs)
		}
	}
	if _, ok := errs["name"]; ok {
		t.Fatalf("error reported for filled field: %v", errs)
	}
}

func TestController_BackAlwaysSucceeds(t *testing.T) {
	c := NewController(ClientForm, nil)
	c.Open("", validClient())
	if !c.Next() || c.Step() != 1 {
		t.Fatalf("Next failed: %v", c.Errors())
	}
	c.Set("panCard", "bad")
	c.Back()
	if c.Step() != 0 {
		t.Fatalf("step = %d after Back", c.Step())
	}
	c.Back()
	if c.Step() != 0 {
		t.Fatalf("Back went before the first step")
	}
}

func TestController_SubmitOnlyFromLastStep(t *testing.T) {
	calls := 0
	c := NewController(ClientForm, func(context.Context, string, Fields) error {
		calls++
		return nil
	})
	c.Open("", validClient())
	if err := c.Submit(context.Background()); !errors.Is(err, ErrNotLastStep) {
		t.Fatalf("Submit from step 0 err = %v", err)
	}
	c.Next()
	c.Next()
	if !c.IsLastStep() {
		t.Fatalf("not on last step: %d", c.Step())
	}
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if calls != 1 || c.IsOpen() || c.Step() != 0 || len(c.Fields()) != 0 {
		t.Fatalf("form not reset after submit: calls=%d open=%v step=%d", calls, c.IsOpen(), c.Step())
	}
}

func TestController_SubmitFailureKeepsState(t *testing.T) {
	storeErr := errors.New("store unavailable")
	var gotID string
	c := NewController(LocationForm, func(_ context.Context, id string, _ Fields) error {
		gotID = id
		return storeErr
	})
	c.Open("loc-1", Fields{"name": "Andheri"})
	if err := c.Submit(context.Background()); !errors.Is(err, storeErr) {
		t.Fatalf("err = %v", err)
	}
	if gotID != "loc-1" {
		t.Fatalf("edit id = %q", gotID)
	}
	if !c.IsOpen() || c.Fields()["name"] != "Andheri" || c.EditID() != "loc-1" {
		t.Fatalf("state lost after failed submit")
	}
}

func TestController_CancelCloses(t *testing.T) {
	c := NewController(ClientForm, nil)
	c.Open("x", validClient())
	c.Next()
	c.Cancel()
	if c.IsOpen() || c.Step() != 0 || c.EditID() != "" {
		t.Fatalf("cancel did not close the form")
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrFormClosed) {
		t.Fatalf("submit on closed form err = %v", err)
	}
}

func TestRepositorySubmit_CreatesAndEdits(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	locations := models.NewRepository[models.Location](store, models.LocationCollection)
	c := NewController(LocationForm, RepositorySubmit(locations.CreateFields, locations.Update))

	c.Open("", nil)
	c.Set("name", "Pune")
	if err := c.Submit(ctx); err != nil {
		t.Fatalf("submit new: %v", err)
	}
	list, err := locations.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Pune" {
		t.Fatalf("locations = %+v, %v", list, err)
	}

	loc, err := locations.Get(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	c.Open(loc.ID, Fields{"name": loc.Name})
	c.Set("name", "Pune East")
	if err := c.Submit(ctx); err != nil {
		t.Fatalf("submit edit: %v", err)
	}
	if c.IsOpen() {
		t.Fatalf("form still open after submit")
	}
	list, _ = locations.List(ctx)
	if len(list) != 1 || list[0].ID != loc.ID || list[0].Name != "Pune East" {
		t.Fatalf("locations after edit = %+v", list)
	}

	c.Open("missing", Fields{"name": "Nowhere"})
	if err := c.Submit(ctx); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("edit of missing record err = %v, want not found", err)
	}
	if !c.IsOpen() {
		t.Fatalf("failed submit closed the form")
	}
}
