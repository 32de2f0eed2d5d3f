package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleCustomer = "customer"
	RoleWorker   = "worker"
	RoleAdmin    = "admin"
)

type Claim struct {
	Metadata Metadata `json:"metadata"`
	jwt.RegisteredClaims
}

type Metadata struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

var ErrInvalidToken = errors.New("invalid token")

// Parse verifies an HS256 bearer token and returns its claim.
func Parse(raw, secret string) (*Claim, error) {
	claim := new(Claim)
	tkn, err := jwt.ParseWithClaims(raw, claim, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	switch claim.Metadata.Role {
	case RoleCustomer, RoleWorker, RoleAdmin:
	default:
		return nil, ErrInvalidToken
	}
	if claim.Metadata.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claim, nil
}

// Sign issues a token; used by tooling and tests.
func Sign(meta Metadata, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claim := Claim{
		Metadata: meta,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   meta.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claim).SignedString([]byte(secret))
}
