package utils

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode"

	"bitbucket.org/prajapati/wealth_backend/config"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

var CountryCode = "IN"

var ErrLockNotObtained = errors.New("resource is locked by another worker")

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil
}

func GenerateUniqueFilename() string {
	timestamp := time.Now().UnixNano()
	random := rand.Intn(1000)
	return fmt.Sprintf("%d_%d", timestamp, random)
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]bool, len(slice))
	out := make([]T, 0, len(slice))
	for _, v := range slice {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// turn address to Address
func UppercaseFirst(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

var currencyPrefix = regexp.MustCompile(`^(?i)(rs\.?|inr|₹)\s*`)

// ParseDecimal accepts amounts typed by hand: "50,000", "Rs. 1,234.50", "₹ 900".
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	value = currencyPrefix.ReplaceAllString(value, "")
	value = strings.ReplaceAll(value, ",", "")
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}
	return decimal.NewFromString(value)
}

// ObtainLock takes a redis lock on kind:key. The caller releases it.
// Without redis the returned lock is nil and the call succeeds.
func ObtainLock(ctx context.Context, kind string, key string, ttl time.Duration, moduleName string, functionName string) (*redislock.Lock, error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		return nil, nil
	}
	lockKey := fmt.Sprintf("%s:%s", kind, key)
	lock, err := locker.Obtain(ctx, lockKey, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock", lockKey, err)
		return nil, ErrLockNotObtained
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock", lockKey, err)
		return nil, err
	}
	return lock, nil
}

func ReleaseLock(ctx context.Context, lock *redislock.Lock) {
	if lock != nil {
		_ = lock.Release(ctx)
	}
}
