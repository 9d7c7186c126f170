// Package auth issues and validates the bearer tokens used by staff and members.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token subjects.
const (
	KindStaff  = "staff"
	KindMember = "member"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// Claims represents the custom JWT claims for a session.
// Staff tokens carry AccountID, Email and Role; member tokens carry Phone.
type Claims struct {
	Kind      string `json:"kind"`
	AccountID string `json:"account_id,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Phone     string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a new JWT manager with the given secret and token duration.
// PRE: secretKey is at least 32 bytes in production
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// IssueStaff creates a token for a logged-in account.
func (m *JWTManager) IssueStaff(accountID, email, role string) (string, error) {
	return m.sign(Claims{Kind: KindStaff, AccountID: accountID, Email: email, Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: accountID}})
}

// IssueMember creates a token for a phone proven by OTP.
func (m *JWTManager) IssueMember(normalizedPhone string) (string, error) {
	return m.sign(Claims{Kind: KindMember, Phone: normalizedPhone, RegisteredClaims: jwt.RegisteredClaims{Subject: normalizedPhone}})
}

func (m *JWTManager) sign(claims Claims) (string, error) {
	now := m.now()
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.tokenDuration))
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and validates a JWT token, returning the claims if valid.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || (claims.Kind != KindStaff && claims.Kind != KindMember) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
