package utils

import (
	"context"
	"os"
	"reflect"
	"strconv"
	"time"

	"bitbucket.org/prajapati/wealth_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

func cacheKey[T any](id string) string {
	return GetTypeName[T]() + ":" + id
}

// StoreRedis caches obj under Type:id.
func StoreRedis[T any](ctx context.Context, obj *T, id string) error {
	return config.SetRedisObject(ctx, cacheKey[T](id), obj, GetCacheLifespan())
}

// RetrieveRedis returns nil when the key is absent.
func RetrieveRedis[T any](ctx context.Context, id string) (*T, error) {
	var result T
	exists, err := config.GetRedisObject(ctx, cacheKey[T](id), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &result, nil
}

func RemoveRedisItem[T any](ctx context.Context, id string) error {
	return config.RemoveRedisKey(ctx, cacheKey[T](id))
}
