package models

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"bitbucket.org/prajapati/wealth_backend/docstore"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	store := docstore.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewRepositories(store, Dependencies{Sessions: NewMemorySessionStore()})
}

func TestFormatClientCode(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{1, "PI0001"},
		{42, "PI0042"},
		{9999, "PI9999"},
		{10000, "PI10000"},
	}
	for _, tc := range cases {
		if got := FormatClientCode(tc.n); got != tc.want {
			t.Fatalf("FormatClientCode(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestCreateClient_SequentialCodes(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	for i, want := range []string{"PI0001", "PI0002"} {
		c, err := repos.Clients.CreateClient(ctx, docstore.Data{"name": "Client", "clientNumber": "PI9999"})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if c.ClientNumber != want {
			t.Fatalf("create %d: clientNumber = %q, want %q", i, c.ClientNumber, want)
		}
	}
	n, err := CurrentClientCounter(ctx, repos.Store)
	if err != nil || n != 2 {
		t.Fatalf("counter = %d, %v; want 2", n, err)
	}
}

func TestCreateClient_ContinuesFromExistingCounter(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	if err := repos.Store.Set(ctx, CounterCollection, ClientCounterID, docstore.Data{"count": 41}); err != nil {
		t.Fatalf("seed counter: %v", err)
	}
	c, err := repos.Clients.CreateClient(ctx, docstore.Data{"name": "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ClientNumber != "PI0042" {
		t.Fatalf("clientNumber = %q, want PI0042", c.ClientNumber)
	}
}

func TestCreateClient_ConcurrentCreatesGetDistinctCodes(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	var wg sync.WaitGroup
	codes := make([]string, 3)
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := repos.Clients.CreateClient(ctx, docstore.Data{"name": "Concurrent"})
			errs[i] = err
			if err == nil {
				codes[i] = c.ClientNumber
			}
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	sort.Strings(codes)
	want := []string{"PI0001", "PI0002", "PI0003"}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
	n, _ := CurrentClientCounter(ctx, repos.Store)
	if n != 3 {
		t.Fatalf("counter = %d, want 3", n)
	}
}

func TestUpdateClient_ClientNumberIsImmutable(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c, err := repos.Clients.CreateClient(ctx, docstore.Data{"name": "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	err = repos.Clients.Update(ctx, c.ID, docstore.Data{"clientNumber": "PI0500"})
	if !errors.Is(err, ErrClientNumberImmutable) {
		t.Fatalf("err = %v, want ErrClientNumberImmutable", err)
	}
	got, _ := repos.Clients.Get(ctx, c.ID)
	if got.ClientNumber != "PI0001" {
		t.Fatalf("clientNumber changed to %q", got.ClientNumber)
	}
}

func TestUpdateClient_UnchangedProtectedFields(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	c, err := repos.Clients.CreateClient(ctx, docstore.Data{"name": "A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wife := FamilyMember{Relation: RelationWife, Name: "Meera"}
	if err := repos.Clients.AddFamilyMember(ctx, c.ID, wife); err != nil {
		t.Fatalf("add member: %v", err)
	}
	stored, err := repos.Clients.Document(ctx, c.ID)
	if err != nil {
		t.Fatalf("document: %v", err)
	}

	tests := []struct {
		name    string
		partial docstore.Data
		wantErr error
	}{
		{"same number and members", docstore.Data{"clientNumber": "PI0001", "familyMembers": stored.Data["familyMembers"], "city": "Mumbai"}, nil},
		{"members indexed by path", docstore.Data{"familyMembers.0.name": "Mira"}, ErrFamilyMembersAppendOnly},
		{"member removed", docstore.Data{"familyMembers": []any{}}, ErrFamilyMembersAppendOnly},
		{"member appended", docstore.Data{"familyMembers": []FamilyMember{wife, {Relation: RelationFather, Name: "Gopal"}}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repos.Clients.Update(ctx, c.ID, tt.partial)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, _ := repos.Clients.Get(ctx, c.ID)
	if got.City != "Mumbai" || got.ClientNumber != "PI0001" {
		t.Fatalf("client = %+v", got)
	}
	if len(got.FamilyMembers) != 2 || got.FamilyMembers[0] != wife || got.FamilyMembers[1].Name != "Gopal" {
		t.Fatalf("family members = %+v", got.FamilyMembers)
	}
}
