package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stemsi/feeledger-backend/internal/model"
)

// TokenTypeAdmin is the only token type accepted by the fee API.
const TokenTypeAdmin = "admin"

// Claims extends JWT standard claims with app-specific fields. Subject is
// the staff identity recorded as proposer, approver or payment recorder.
type Claims struct {
	jwt.RegisteredClaims
	TokenType   string   `json:"token_type"`
	SchoolCode  string   `json:"school_code,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// HasPermission reports whether the token grants code.
func (c *Claims) HasPermission(code model.Permission) bool {
	for _, p := range c.Permissions {
		if p == string(code) {
			return true
		}
	}
	return false
}

// CanAccess reports whether the token may act on school. Tokens without a
// school_code claim are platform-wide.
func (c *Claims) CanAccess(school model.SchoolCode) bool {
	return c.SchoolCode == "" || c.SchoolCode == school.String()
}

// AuthService issues and validates admin JWTs. Staff accounts live in an
// external system; this service only deals with tokens.
type AuthService struct {
	secret []byte
	expiry time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(secret string, expiry time.Duration) *AuthService {
	return &AuthService{secret: []byte(secret), expiry: expiry}
}

// GenerateAdminToken creates a signed token for a staff member.
func (s *AuthService) GenerateAdminToken(subject, schoolCode string, permissions []string) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
		TokenType:   TokenTypeAdmin,
		SchoolCode:  schoolCode,
		Permissions: permissions,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
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
