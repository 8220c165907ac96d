// seed-admin creates the administrator account and records its email as the
// admin address. An existing account with the same email is kept as is.
//
// Usage (from backend directory):
//
//	ADMIN_EMAIL=... ADMIN_PASSWORD=... DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/models"
)

func main() {
	ctx := context.Background()
	settings := config.LoadSettings()
	if settings.DocstoreDriver == "memory" {
		fmt.Fprintln(os.Stderr, "seed-admin needs a persistent store; unset DOCSTORE_DRIVER=memory")
		os.Exit(2)
	}

	email := strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")
	name := strings.TrimSpace(os.Getenv("ADMIN_NAME"))
	if name == "" {
		name = "Admin"
	}
	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_EMAIL and ADMIN_PASSWORD are required")
		os.Exit(2)
	}

	store, _, err := config.OpenStore(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	repos := models.NewRepositories(store, models.Dependencies{
		Sessions:      models.NewMemorySessionStore(),
		TokenLifespan: settings.TokenLifespan,
	})

	_, err = repos.Accounts.SignUp(ctx, email, password, name)
	switch {
	case err == nil:
		fmt.Printf("Created admin account: email=%q\n", email)
	case errors.Is(err, models.ErrEmailAlreadyInUse):
		fmt.Printf("Account %q already exists; keeping its password\n", email)
	default:
		fmt.Fprintf(os.Stderr, "failed to create admin account: %v\n", err)
		os.Exit(1)
	}

	if err := repos.Admin.SetEmail(ctx, email); err != nil {
		fmt.Fprintf(os.Stderr, "failed to record admin email: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Admin email set to %q\n", email)
}
