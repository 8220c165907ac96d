package models

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/prajapati/wealth_backend/docstore"
)

func TestCreateClient_MaritalStatus(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	single, err := repos.Clients.CreateClient(ctx, docstore.Data{"name": "A", "spouseName": "B"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if single.MaritalStatus != "No" || single.SpouseName != "" {
		t.Fatalf("got maritalStatus=%q spouseName=%q", single.MaritalStatus, single.SpouseName)
	}

	married, err := repos.Clients.CreateClient(ctx, docstore.Data{"name": "C", "maritalStatus": "Yes", "spouseName": "D"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if married.SpouseName != "D" {
		t.Fatalf("spouseName = %q, want D", married.SpouseName)
	}

	if err := repos.Clients.Update(ctx, married.ID, docstore.Data{"maritalStatus": "No"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repos.Clients.Get(ctx, married.ID)
	if got.SpouseName != "" {
		t.Fatalf("spouseName kept after divorce: %q", got.SpouseName)
	}
}

func TestUpdateClient_DropsUnknownFieldsAndKeepsOthers(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c, _ := repos.Clients.CreateClient(ctx, docstore.Data{"name": "A", "city": "Pune", "email": "a@example.com"})

	if err := repos.Clients.Update(ctx, c.ID, docstore.Data{"city": "Mumbai", "isAdmin": true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	doc, err := repos.Store.Get(ctx, ClientCollection, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := doc.Data["isAdmin"]; ok {
		t.Fatalf("unknown field stored: %v", doc.Data)
	}
	if doc.Data["city"] != "Mumbai" || doc.Data["email"] != "a@example.com" {
		t.Fatalf("unexpected data %v", doc.Data)
	}
}

func TestUpdateClient_MissingClient(t *testing.T) {
	repos := newTestRepos(t)
	err := repos.Clients.Update(context.Background(), "nope", docstore.Data{"city": "X"})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAddFamilyMember_AppendsOnce(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c, _ := repos.Clients.CreateClient(ctx, docstore.Data{"name": "A"})

	wife := FamilyMember{Relation: RelationWife, Name: "W"}
	son := FamilyMember{Relation: RelationChildren, Name: "S"}
	for _, m := range []FamilyMember{wife, son, wife} {
		if err := repos.Clients.AddFamilyMember(ctx, c.ID, m); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	got, _ := repos.Clients.Get(ctx, c.ID)
	if len(got.FamilyMembers) != 2 {
		t.Fatalf("family = %+v, want 2 members", got.FamilyMembers)
	}
	if got.FamilyMembers[0].Name != "W" || got.FamilyMembers[1].Relation != RelationChildren {
		t.Fatalf("order not kept: %+v", got.FamilyMembers)
	}

	err := repos.Clients.Update(ctx, c.ID, docstore.Data{"familyMembers": []FamilyMember{}})
	if !errors.Is(err, ErrFamilyMembersAppendOnly) {
		t.Fatalf("err = %v, want ErrFamilyMembersAppendOnly", err)
	}
}

func TestRemoveClient_Idempotent(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c, _ := repos.Clients.CreateClient(ctx, docstore.Data{"name": "A"})
	for i := 0; i < 2; i++ {
		if err := repos.Clients.Remove(ctx, c.ID); err != nil {
			t.Fatalf("remove %d: %v", i, err)
		}
	}
	if _, err := repos.Clients.Get(ctx, c.ID); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("get after remove: %v", err)
	}
}

func TestRecordViews_ResolvesClientNames(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	a, _ := repos.Clients.CreateClient(ctx, docstore.Data{"name": "Asha"})
	b, _ := repos.Clients.CreateClient(ctx, docstore.Data{"name": "Bala"})

	if _, err := repos.FdEntries.CreateFields(ctx, docstore.Data{
		"customer1Id":     a.ID,
		"customer2Id":     b.ID,
		"amountDeposited": "Rs. 50,000",
	}); err != nil {
		t.Fatalf("create fd: %v", err)
	}
	if _, err := repos.FdEntries.CreateFields(ctx, docstore.Data{"customer1Id": "gone"}); err != nil {
		t.Fatalf("create fd: %v", err)
	}
	entries, err := repos.FdEntries.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if entries[0].AmountDeposited.String() != "50000" {
		t.Fatalf("amount = %s, want 50000", entries[0].AmountDeposited)
	}

	views, err := RecordViews(ctx, repos.Clients, entries)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	if views[0]["customer1"] != "Asha (PI0001)" || views[0]["customer2"] != "Bala (PI0002)" {
		t.Fatalf("view = %v", views[0])
	}
	if views[1]["customer1"] != "Unknown client (gone)" || views[1]["customer2"] != "" {
		t.Fatalf("view = %v", views[1])
	}
	if views[0]["id"] == "" {
		t.Fatalf("view lost its id: %v", views[0])
	}
}

func TestRepository_OrderedLists(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	for _, name := range []string{"zoya", "Arun", "meera"} {
		if _, err := repos.Executives.Create(ctx, &Executive{Name: name}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list, err := repos.Executives.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{list[0].Name, list[1].Name, list[2].Name}
	want := []string{"Arun", "meera", "zoya"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
