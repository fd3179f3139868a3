package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/spec-kit/resource-api/internal/domain"
)

// SessionStrategy issues stateful signed-cookie credentials: the payload is
// serialized client-side state, trusted only after its HMAC verifies. No
// server-side session table is consulted.
type SessionStrategy struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionStrategy builds the signed-cookie strategy.
func NewSessionStrategy(secret string, ttlMinutes int) *SessionStrategy {
	if ttlMinutes <= 0 {
		ttlMinutes = 720
	}
	return &SessionStrategy{
		secret: []byte(secret),
		ttl:    time.Duration(ttlMinutes) * time.Minute,
	}
}

type sessionPayload struct {
	PrincipalID string      `json:"pid"`
	Role        domain.Role `json:"role"`
	IssuedAt    int64       `json:"iat"`
	ExpiresAt   int64       `json:"exp"`
}

func (s *SessionStrategy) Issue(_ context.Context, principal *domain.Principal) (Credential, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	payload, err := json.Marshal(sessionPayload{
		PrincipalID: principal.ID,
		Role:        principal.Role,
		IssuedAt:    now.Unix(),
		ExpiresAt:   expiresAt.Unix(),
	})
	if err != nil {
		return Credential{}, err
	}

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	value := encoded + "." + s.sign(encoded)
	return Credential{Value: value, ExpiresAt: expiresAt}, nil
}

// Resolve verifies the signature before the payload is trusted; a tampered
// credential is always rejected, never silently accepted.
func (s *SessionStrategy) Resolve(_ context.Context, credential string) (*domain.Principal, error) {
	encoded, sig, ok := strings.Cut(credential, ".")
	if !ok {
		return nil, ErrTamperedCredential
	}
	if subtle.ConstantTimeCompare([]byte(s.sign(encoded)), []byte(sig)) != 1 {
		return nil, ErrTamperedCredential
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrTamperedCredential
	}
	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrTamperedCredential
	}
	if time.Now().Unix() > payload.ExpiresAt {
		return nil, ErrExpiredCredential
	}
	return &domain.Principal{ID: payload.PrincipalID, Role: payload.Role}, nil
}

// Revoke is a no-op: the client-held payload is the entire session state,
// so invalidation happens by expiring the cookie at the transport layer.
func (s *SessionStrategy) Revoke(_ context.Context, _ string) error {
	return nil
}

func (s *SessionStrategy) sign(encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
