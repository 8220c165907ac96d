package config

import (
	"os"
	"strings"
)

// EnvBool reads a yes/no style flag ("1", "true", "yes", "y").
func EnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// QueueNotifications sends notification requests through Pub/Sub instead of
// delivering mail inside the HTTP request.
//
// Set via env:
// - NOTIFY_VIA_PUBSUB=true
func QueueNotifications() bool {
	return EnvBool("NOTIFY_VIA_PUBSUB", false)
}

// MigrateLegacyProfileImages moves inline data-URI pictures found in client
// writes to object storage.
//
// Set via env:
// - MIGRATE_INLINE_PROFILE_IMAGES=false to keep them untouched
func MigrateLegacyProfileImages() bool {
	return EnvBool("MIGRATE_INLINE_PROFILE_IMAGES", true)
}
