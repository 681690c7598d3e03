package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smashenglish/review-api/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "this-is-a-test-secret-with-32-chars!!",
		TokenLifetimeMinutes: 60,
	}
}

func newTestJWTService(t *testing.T, timeFunc func() time.Time) *hmacJWTService {
	t.Helper()

	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)

	impl, ok := svc.(*hmacJWTService)
	require.True(t, ok)
	if timeFunc != nil {
		impl.timeFunc = timeFunc
	}
	return impl
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTSecret = "too-short"

	_, err := NewJWTService(cfg)
	assert.Error(t, err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	svc := newTestJWTService(t, func() time.Time { return now })

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.True(t, claims.IssuedAt.Equal(now))
	assert.True(t, claims.ExpiresAt.Equal(now.Add(time.Hour)))
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenExpired(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	current := issued
	svc := newTestJWTService(t, func() time.Time { return current })

	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	// Advance past the lifetime plus clock skew allowance.
	current = issued.Add(time.Hour + 5*time.Minute)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenWithinClockSkew(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	current := issued
	svc := newTestJWTService(t, func() time.Time { return current })

	token, err := svc.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	// Just past expiry but inside the leeway window.
	current = issued.Add(time.Hour + time.Minute)

	_, err = svc.ValidateToken(ctx, token)
	assert.NoError(t, err)
}

func TestValidateTokenMalformed(t *testing.T) {
	svc := newTestJWTService(t, nil)

	_, err := svc.ValidateToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongSignature(t *testing.T) {
	ctx := context.Background()

	svc := newTestJWTService(t, nil)

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "a-completely-different-32-char-secret!!"
	other, err := NewJWTService(otherCfg)
	require.NoError(t, err)

	token, err := other.GenerateToken(ctx, uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongType(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService(t, nil)
	now := time.Now()

	claims := jwtCustomClaims{
		UserID:    uuid.New(),
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(svc.signingKey)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongAlgorithm(t *testing.T) {
	ctx := context.Background()
	svc := newTestJWTService(t, nil)
	now := time.Now()

	claims := jwtCustomClaims{
		UserID:    uuid.New(),
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).
		SignedString(svc.signingKey)
	require.NoError(t, err)

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
