package jwtutil

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	mu         sync.RWMutex
	secret     = []byte("catalogservicesecretkey")
	expiration = 24 * time.Hour
)

// UserClaims represents the JWT claims for user authentication
type UserClaims struct {
	Email   string `json:"email"`
	UserID  uint   `json:"user_id"`
	Role    string `json:"role,omitempty"`
	IsStaff bool   `json:"is_staff,omitempty"`
	jwt.RegisteredClaims
}

// Initialize sets the signing key and token lifetime
func Initialize(signingKey string, expirationHours int) {
	mu.Lock()
	defer mu.Unlock()
	secret = []byte(signingKey)
	if expirationHours > 0 {
		expiration = time.Duration(expirationHours) * time.Hour
	}
}

func signingKey() []byte {
	mu.RLock()
	defer mu.RUnlock()
	return secret
}

// GenerateToken issues an HS256 token for a user
func GenerateToken(userID uint, email, role string, isStaff bool) (string, error) {
	mu.RLock()
	ttl := expiration
	mu.RUnlock()

	now := time.Now()
	claims := UserClaims{
		Email:   email,
		UserID:  userID,
		Role:    role,
		IsStaff: isStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey())
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return signingKey(), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// RoleClaim returns the role name the claims grant. The is_staff flag wins over role.
func (c *UserClaims) RoleClaim() string {
	if c.IsStaff {
		return "staff"
	}
	if c.Role == "" {
		return "customer"
	}
	return c.Role
}
