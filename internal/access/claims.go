// Package access decides whether a request may reach a route, given the session token.
package access

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the custom claims embedded in every session token.
type Claims struct {
	UserID             string           `json:"user_id"`
	TenantID           string           `json:"tenant_id"`
	Role               string           `json:"role"`
	SubscriptionStatus string           `json:"subscription_status"`
	TrialEndsAt        *jwt.NumericDate `json:"trial_ends_at,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs c with HS256, valid from now for ttl.
func IssueToken(secret string, c Claims, now time.Time, ttl time.Duration) (string, error) {
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	c.Subject = c.UserID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry of raw and returns its claims.
func ParseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
