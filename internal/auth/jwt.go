// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/rocksky-relay/internal/config"
)

// ErrInvalidToken is returned for every token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// ErrMissingAccount is returned when a valid token carries no account id.
var ErrMissingAccount = errors.New("token carries no account identifier")

// Claims are the claims the identity layer puts in device tokens. The
// account identifier is the user's DID.
type Claims struct {
	DID string `json:"did"`
	jwt.RegisteredClaims
}

// AccountID returns the DID claim, falling back to the subject.
func (c *Claims) AccountID() string {
	if c.DID != "" {
		return c.DID
	}
	return c.Subject
}

// Verifier checks HS256 device tokens. It holds no mutable state and is
// safe for concurrent use.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier from the security configuration.
//
//	verifier, err := auth.NewVerifier(&cfg.Security)
//	accountID, err := verifier.Verify(frame.Token)
func NewVerifier(cfg *config.SecurityConfig) (*Verifier, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}
	return &Verifier{secret: []byte(cfg.JWTSecret)}, nil
}

// Verify validates tokenString and returns the account it was issued to.
//
// Only HMAC signing methods are accepted, which rules out "none" and
// RS/HS algorithm confusion. Expiry and not-before are enforced when the
// token carries them. Every failure wraps ErrInvalidToken or
// ErrMissingAccount.
func (v *Verifier) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		verifications.WithLabelValues(outcomeInvalid).Inc()
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		verifications.WithLabelValues(outcomeInvalid).Inc()
		return "", ErrInvalidToken
	}

	accountID := claims.AccountID()
	if accountID == "" {
		verifications.WithLabelValues(outcomeNoAccount).Inc()
		return "", ErrMissingAccount
	}

	verifications.WithLabelValues(outcomeValid).Inc()
	return accountID, nil
}

// GenerateToken signs a token for did that expires after ttl. A zero ttl
// produces a token without an expiry, matching tokens minted by the
// identity layer for long-lived devices.
func (v *Verifier) GenerateToken(did string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		DID: did,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
