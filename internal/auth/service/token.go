package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind tells access tokens apart from refresh tokens
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// ErrInvalidToken is returned for tokens with a bad signature, an expired
// lifetime, a wrong kind or a malformed payload
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of every token issued by TokenGenerator.
// Subject holds the user ID as a string.
type Claims struct {
	Type  TokenKind `json:"type"`
	Fresh bool      `json:"fresh,omitempty"`
	jwt.RegisteredClaims
}

// TokenGenerator handles JWT token generation and validation
type TokenGenerator struct {
	secret             []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	now                func() time.Time
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry, refreshExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:             []byte(secret),
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
		now:                time.Now,
	}
}

// GenerateTokens generates both access and refresh tokens for a subject
func (tg *TokenGenerator) GenerateTokens(subject string, fresh bool) (string, string, error) {
	accessToken, err := tg.GenerateAccessToken(subject, fresh)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := tg.GenerateRefreshToken(subject)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// GenerateAccessToken creates an access token. fresh marks a token
// issued directly from a password check.
func (tg *TokenGenerator) GenerateAccessToken(subject string, fresh bool) (string, error) {
	token, err := tg.sign(subject, KindAccess, fresh, tg.accessTokenExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// GenerateRefreshToken creates a refresh token
func (tg *TokenGenerator) GenerateRefreshToken(subject string) (string, error) {
	token, err := tg.sign(subject, KindRefresh, false, tg.refreshTokenExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

func (tg *TokenGenerator) sign(subject string, kind TokenKind, fresh bool, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject cannot be empty")
	}

	now := tg.now()
	claims := &Claims{
		Type:  kind,
		Fresh: fresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tg.secret)
}

// ValidateAccessToken validates an access token and returns its claims
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return tg.validate(tokenString, KindAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims
func (tg *TokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return tg.validate(tokenString, KindRefresh)
}

func (tg *TokenGenerator) validate(tokenString string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return tg.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tg.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, kind, claims.Type)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject not found in token", ErrInvalidToken)
	}

	return claims, nil
}
