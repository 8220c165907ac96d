package utils

import (
	"net/url"
	"strings"
)

// BuildObjectAccessURL derives the public URL of an object. base may contain
// an {objectKey} placeholder; without base the public GCS host is used.
func BuildObjectAccessURL(base, bucket, objectKey string) string {
	base = strings.TrimSpace(base)
	if base != "" {
		if strings.Contains(base, "{objectKey}") {
			return strings.ReplaceAll(base, "{objectKey}", url.PathEscape(objectKey))
		}
		return strings.TrimRight(base, "/") + "/" + escapePath(objectKey)
	}
	if bucket == "" {
		return objectKey
	}
	return "https://storage.googleapis.com/" + bucket + "/" + escapePath(objectKey)
}

func escapePath(objectKey string) string {
	parts := strings.Split(objectKey, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
