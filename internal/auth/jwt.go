// Package auth verifies and mints the HS256 tokens guarding catalog writes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JamesLuiz/abuja-connect-shop-sub000/pkg/middleware"
)

// Roles recognized by the catalog write routes.
const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
)

const issuer = "abuja-emall"

// Claims is the token payload.
type Claims struct {
	Role     string `json:"role"`
	VendorID string `json:"vendor_id,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and validates tokens with a shared secret.
type Manager struct {
	secret []byte
}

// NewManager creates a Manager. An empty secret is rejected.
func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Manager{secret: []byte(secret)}, nil
}

// Mint returns a signed token for subject valid for ttl.
func (m *Manager) Mint(subject, role, vendorID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Role:     role,
		VendorID: vendorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// Validator adapts Parse to the middleware.Auth contract.
func (m *Manager) Validator() middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		c, err := m.Parse(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{Subject: c.Subject, Role: c.Role, VendorID: c.VendorID}, nil
	}
}
