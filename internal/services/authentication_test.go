package services

import (
	"testing"
	"time"

	"vitrine/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationRoundTrip(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	user := &models.User{ID: "user-1", Email: "marchand@example.fr", Name: "Marchand"}

	token, err := authentication.CreateToken(user)
	require.NoError(t, err)

	parsed, err := authentication.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsed.ID)
	assert.Equal(t, user.Email, parsed.Email)
	assert.Equal(t, user.Name, parsed.Name)
}

func TestAuthenticationRejectsForeignToken(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	other, err := NewAuthentication("other-secret")
	require.NoError(t, err)

	token, err := other.CreateToken(&models.User{ID: "user-1"})
	require.NoError(t, err)

	_, err = authentication.Validate(token)
	assert.Error(t, err)

	_, err = authentication.Validate("not-a-token")
	assert.Error(t, err)
}

func TestAuthenticationRejectsOtherSigningMethods(t *testing.T) {
	authentication, err := NewAuthentication("test-secret")
	require.NoError(t, err)

	claims := &CustomClaims{
		ID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	// same secret, different HMAC variant
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = authentication.Validate(token)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = authentication.Validate(unsigned)
	assert.Error(t, err)
}
