package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.StandardClaims
}

var ErrMissingJwtSecret = errors.New("API_SECRET is required in production")

func getJwtSecret() ([]byte, error) {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
			return nil, ErrMissingJwtSecret
		}
		return []byte("wealth-dev-secret"), nil
	}
	return []byte(secret), nil
}

func JwtGenerate(userID string, email string, lifespan time.Duration) (string, error) {
	secret, err := getJwtSecret()
	if err != nil {
		return "", err
	}
	if lifespan <= 0 {
		lifespan = 12 * time.Hour
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		UserID: userID,
		Email:  email,
		StandardClaims: jwt.StandardClaims{
			Id:        GenerateUniqueFilename(),
			ExpiresAt: time.Now().Add(lifespan).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	return t.SignedString(secret)
}

func JwtValidate(token string) (*JwtCustomClaim, error) {
	secret, err := getJwtSecret()
	if err != nil {
		return nil, err
	}
	parsed, err := jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || !parsed.Valid {
		return nil, ErrorUnauthorized
	}
	return claims, nil
}
