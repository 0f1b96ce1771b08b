package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-that-is-long-enough",
		Expiration: 30 * 24 * time.Hour,
		Issuer:     "marketplace-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	issued, err := svc.Generate("u1", "seller")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Token)
	assert.NotEmpty(t, issued.ID)

	claims, err := svc.Validate(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "seller", claims.Role)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "marketplace-test", claims.Issuer)
}

func TestJWTService_Generate_MissingUser(t *testing.T) {
	_, err := newTestJWTService().Generate("", "buyer")
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestJWTService_Validate_Expired(t *testing.T) {
	svc := newTestJWTService()
	issued, err := svc.Generate("u1", "buyer")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	_, err = svc.Validate(issued.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_Validate_WrongSecret(t *testing.T) {
	issued, err := newTestJWTService().Generate("u1", "buyer")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", Expiration: time.Hour, Issuer: "marketplace-test"})
	_, err = other.Validate(issued.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Validate_WrongAlgorithm(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "marketplace-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "u1",
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().Validate(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_Validate_Garbage(t *testing.T) {
	_, err := newTestJWTService().Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RemainingTTL(t *testing.T) {
	svc := newTestJWTService()
	issued, err := svc.Generate("u1", "buyer")
	require.NoError(t, err)
	claims, err := svc.Validate(issued.Token)
	require.NoError(t, err)

	ttl := svc.RemainingTTL(claims)
	assert.Greater(t, ttl, 29*24*time.Hour)

	svc.now = func() time.Time { return time.Now().Add(40 * 24 * time.Hour) }
	assert.Equal(t, time.Duration(0), svc.RemainingTTL(claims))
}
