package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	Initialize("test-key", 1)

	token, err := GenerateToken(42, "barista@example.com", "admin", false)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "barista@example.com", claims.Email)
	assert.Equal(t, "admin", claims.RoleClaim())
	assert.Equal(t, "42", claims.Subject)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	Initialize("one-key", 1)
	token, err := GenerateToken(1, "a@example.com", "", false)
	require.NoError(t, err)

	Initialize("other-key", 1)
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	Initialize("test-key", 1)
	claims := UserClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestRoleClaim(t *testing.T) {
	assert.Equal(t, "staff", (&UserClaims{IsStaff: true, Role: "customer"}).RoleClaim())
	assert.Equal(t, "customer", (&UserClaims{}).RoleClaim())
	assert.Equal(t, "wholesale", (&UserClaims{Role: "wholesale"}).RoleClaim())
}
