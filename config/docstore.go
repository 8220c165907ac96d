package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"github.com/sirupsen/logrus"
)

// OpenStore connects the backing services for the configured docstore
// driver and returns the store with its relay, if any. The relay must be
// started with Listen by the caller.
//
// Drivers:
// - mysql (default): DB_* env, REDIS_ADDRESS for the change relay
// - memory: process-local; Redis is used only when REDIS_ADDRESS is set
func OpenStore(ctx context.Context, settings Settings) (docstore.Store, *docstore.RedisRelay, error) {
	logger := GetLogger()
	hub := docstore.NewHub()

	switch settings.DocstoreDriver {
	case "memory":
		if strings.TrimSpace(os.Getenv("REDIS_ADDRESS")) != "" {
			ConnectRedisWithRetry(ctx)
		}
		logger.WithFields(logrus.Fields{"field": "docstore"}).Warn("using the in-memory document store; data is lost on restart")
		return docstore.NewMemoryStore(docstore.WithHub(hub)), nil, nil
	case "mysql":
		ConnectDatabaseWithRetry()
		ConnectRedisWithRetry(ctx)
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		// AutoMigrate can hold table locks; run it as a separate job when needed.
		if !EnvBool("SKIP_MIGRATIONS", false) {
			if err := docstore.Migrate(GetDB()); err != nil {
				return nil, nil, fmt.Errorf("migrate documents: %w", err)
			}
		} else {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
		}
		relay := docstore.NewRedisRelay(GetRedisDB(), hub, settings.RelayChannel)
		store, err := docstore.NewGormStore(GetDB(), docstore.WithHub(hub), docstore.WithRelay(relay))
		if err != nil {
			return nil, nil, err
		}
		return store, relay, nil
	default:
		return nil, nil, fmt.Errorf("unknown DOCSTORE_DRIVER %q", settings.DocstoreDriver)
	}
}
