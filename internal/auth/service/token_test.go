package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "b8a3c2267dc85f855dea9b46b452bf20"

func TestNewTokenGenerator(t *testing.T) {
	tg := NewTokenGenerator("test-secret-key", time.Hour, 7*24*time.Hour)

	assert.NotNil(t, tg)
	assert.Equal(t, []byte("test-secret-key"), tg.secret)
	assert.Equal(t, time.Hour, tg.accessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, tg.refreshTokenExpiry)
}

func TestTokenGenerator_GenerateTokens(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, 30*24*time.Hour)

	accessToken, refreshToken, err := tg.GenerateTokens("42", true)
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	access, err := tg.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, "42", access.Subject)
	assert.Equal(t, KindAccess, access.Type)
	assert.True(t, access.Fresh)
	assert.WithinDuration(t, time.Now().Add(time.Hour), access.ExpiresAt.Time, 5*time.Second)
	assert.NotEmpty(t, access.ID)

	refresh, err := tg.ValidateRefreshToken(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, "42", refresh.Subject)
	assert.Equal(t, KindRefresh, refresh.Type)
	assert.False(t, refresh.Fresh)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), refresh.ExpiresAt.Time, 5*time.Second)
}

func TestTokenGenerator_GenerateAccessToken_NotFresh(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, time.Hour)

	token, err := tg.GenerateAccessToken("7", false)
	require.NoError(t, err)

	claims, err := tg.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.False(t, claims.Fresh)
}

func TestTokenGenerator_EmptySubject(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, time.Hour)

	_, _, err := tg.GenerateTokens("", true)
	assert.Error(t, err)
}

func TestTokenGenerator_UniqueTokens(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, time.Hour)

	first, err := tg.GenerateAccessToken("1", true)
	require.NoError(t, err)
	second, err := tg.GenerateAccessToken("1", true)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenGenerator_ValidateAccessToken_Invalid(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, time.Hour)
	expired := NewTokenGenerator(testSecret, -time.Minute, -time.Minute)
	otherSecret := NewTokenGenerator("another-secret", time.Hour, time.Hour)

	validRefresh, err := tg.GenerateRefreshToken("1")
	require.NoError(t, err)
	expiredAccess, err := expired.GenerateAccessToken("1", true)
	require.NoError(t, err)
	foreignAccess, err := otherSecret.GenerateAccessToken("1", true)
	require.NoError(t, err)
	validAccess, err := tg.GenerateAccessToken("1", true)
	require.NoError(t, err)

	parts := strings.Split(validAccess, ".")
	require.Len(t, parts, 3)
	tamperedSignature := parts[0] + "." + parts[1] + ".c2lnbmF0dXJl"

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Type:             KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Type:             KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Type:             KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "refresh token used as access", token: validRefresh},
		{name: "expired", token: expiredAccess},
		{name: "wrong secret", token: foreignAccess},
		{name: "tampered signature", token: tamperedSignature},
		{name: "alg none", token: noneToken},
		{name: "missing expiry", token: noExpiry},
		{name: "missing subject", token: noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := tg.ValidateAccessToken(tt.token)

			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenGenerator_ValidateRefreshToken_RejectsAccess(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, time.Hour)

	access, err := tg.GenerateAccessToken("1", true)
	require.NoError(t, err)

	claims, err := tg.ValidateRefreshToken(access)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGenerator_ClockSkew(t *testing.T) {
	tg := NewTokenGenerator(testSecret, time.Hour, time.Hour)
	issued := time.Now()
	tg.now = func() time.Time { return issued }

	token, err := tg.GenerateAccessToken("1", true)
	require.NoError(t, err)

	tg.now = func() time.Time { return issued.Add(59 * time.Minute) }
	_, err = tg.ValidateAccessToken(token)
	assert.NoError(t, err)

	tg.now = func() time.Time { return issued.Add(61 * time.Minute) }
	_, err = tg.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
