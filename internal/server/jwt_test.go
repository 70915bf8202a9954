package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yusuf-polat/AI-Translate/internal/config"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:          "test-secret-key-0123456789",
		ExpirationHours: 24,
		Issuer:          config.DefaultIssuer,
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	token, err := svc.GenerateToken("ops")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Operator)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, config.DefaultIssuer, claims.Issuer)
}

func TestJWTService_RequiresOperator(t *testing.T) {
	_, err := NewJWTService(testJWTConfig()).GenerateToken("")
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	svc.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, err := svc.GenerateToken("ops")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, err := NewJWTService(testJWTConfig()).GenerateToken("ops")
	require.NoError(t, err)

	other := testJWTConfig()
	other.Secret = "another-secret-key-0123456789"
	_, err = NewJWTService(other).ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_WrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Issuer = "someone-else"
	token, err := NewJWTService(cfg).GenerateToken("ops")
	require.NoError(t, err)

	_, err = NewJWTService(testJWTConfig()).ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{Operator: "ops", RegisteredClaims: jwt.RegisteredClaims{Issuer: config.DefaultIssuer}}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService(testJWTConfig()).ValidateToken(signed)
	assert.Error(t, err)
}

func TestJWTService_Malformed(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	_, err := svc.ValidateToken("")
	assert.Error(t, err)

	_, err = svc.ValidateToken("not.a.jwt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed token")
}
