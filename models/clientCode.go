package models

import (
	"context"
	"errors"
	"fmt"
	"math"

	"bitbucket.org/prajapati/wealth_backend/docstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const ClientCodePrefix = "PI"

var clientCodesIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "client_codes_issued_total",
	Help: "Client codes handed out by the sequential generator.",
})

// FormatClientCode pads n to four digits; larger counters keep all digits.
func FormatClientCode(n int64) string {
	return fmt.Sprintf("%s%04d", ClientCodePrefix, n)
}

// nextCounter increments collection/id inside tx. A missing counter starts at 0.
func nextCounter(tx docstore.Tx, collection, id string) (int64, error) {
	var count int64
	doc, err := tx.Get(collection, id)
	switch {
	case err == nil:
		count = toInt64(doc.Data["count"])
	case errors.Is(err, docstore.ErrNotFound):
	default:
		return 0, err
	}
	next := count + 1
	if err := tx.Set(collection, id, docstore.Data{"count": next}); err != nil {
		return 0, err
	}
	return next, nil
}

// CurrentClientCounter reports the last number handed out.
func CurrentClientCounter(ctx context.Context, store docstore.Store) (int64, error) {
	doc, err := store.Get(ctx, CounterCollection, ClientCounterID)
	if errors.Is(err, docstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return toInt64(doc.Data["count"]), nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(math.Round(n))
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
