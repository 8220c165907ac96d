// client-ref-backfill links entries saved before client ids were stored.
// Entries whose customer field reads "Name (PI0001)" get the matching
// client id; entries that already carry an id are left alone.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/client-ref-backfill [-apply]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/models"
)

func main() {
	apply := flag.Bool("apply", false, "write the changes (default is a dry run)")
	flag.Parse()

	ctx := context.Background()
	settings := config.LoadSettings()
	if settings.DocstoreDriver == "memory" {
		fmt.Fprintln(os.Stderr, "client-ref-backfill needs a persistent store; unset DOCSTORE_DRIVER=memory")
		os.Exit(2)
	}

	store, _, err := config.OpenStore(ctx, settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	report, err := models.BackfillClientRefs(ctx, store, *apply)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
		os.Exit(1)
	}

	mode := "dry run"
	if *apply {
		mode = "applied"
	}
	fmt.Printf("%s: scanned=%d updated=%d unmatched=%d\n", mode, report.Scanned, report.Updated, len(report.Unmatched))
	for _, ref := range report.Unmatched {
		fmt.Printf("  no client for %s\n", ref)
	}
}
