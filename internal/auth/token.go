package auth

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/resource-api/internal/domain"
)

// Denylist records revoked token ids. Stateless tokens self-expire, so
// revocation is only possible through an explicit denylist checked at
// resolve time.
type Denylist interface {
	Add(ctx context.Context, tokenID string, ttl time.Duration) error
	Contains(ctx context.Context, tokenID string) (bool, error)
}

// TokenStrategy issues stateless HS256 bearer tokens. The payload is
// readable by any holder; only the server-verified signature makes it
// trustworthy, so it never carries secrets.
type TokenStrategy struct {
	secret   []byte
	ttl      time.Duration
	denylist Denylist
}

// NewTokenStrategy builds the bearer-token strategy.
func NewTokenStrategy(secret string, ttlMinutes int, denylist Denylist) *TokenStrategy {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenStrategy{
		secret:   []byte(secret),
		ttl:      time.Duration(ttlMinutes) * time.Minute,
		denylist: denylist,
	}
}

// Claims describes the token payload.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *TokenStrategy) Issue(_ context.Context, principal *domain.Principal) (Credential, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	claims := &Claims{
		Role: principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Value: signed, ExpiresAt: expiresAt}, nil
}

func (s *TokenStrategy) Resolve(ctx context.Context, credential string) (*domain.Principal, error) {
	claims, err := s.parse(credential)
	if err != nil {
		return nil, err
	}
	if s.denylist != nil && claims.ID != "" {
		revoked, err := s.denylist.Contains(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrRevokedCredential
		}
	}
	return &domain.Principal{ID: claims.Subject, Role: claims.Role}, nil
}

// Revoke denylists the token id for the remainder of the token's lifetime.
func (s *TokenStrategy) Revoke(ctx context.Context, credential string) error {
	claims, err := s.parse(credential)
	if err != nil {
		return err
	}
	if s.denylist == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.denylist.Add(ctx, claims.ID, ttl)
}

func (s *TokenStrategy) parse(credential string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(credential, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredential
		}
		return nil, ErrTamperedCredential
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTamperedCredential
	}
	return claims, nil
}
