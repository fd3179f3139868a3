package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/resource-api/internal/domain"
)

func TestSessionIssueResolveRoundtrip(t *testing.T) {
	s := NewSessionStrategy("secret", 60)
	ctx := context.Background()

	cred, err := s.Issue(ctx, &domain.Principal{ID: "p1", Role: domain.RoleViewer})
	require.NoError(t, err)

	principal, err := s.Resolve(ctx, cred.Value)
	require.NoError(t, err)
	assert.Equal(t, "p1", principal.ID)
	assert.Equal(t, domain.RoleViewer, principal.Role)
}

func TestSessionTamperingIsDetected(t *testing.T) {
	s := NewSessionStrategy("secret", 60)
	ctx := context.Background()

	cred, err := s.Issue(ctx, &domain.Principal{ID: "p1", Role: domain.RoleViewer})
	require.NoError(t, err)

	raw := []byte(cred.Value)
	for i := 0; i < len(raw); i += 5 {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		_, err := s.Resolve(ctx, string(tampered))
		assert.Error(t, err, "flip at offset %d", i)
	}
}

func TestSessionMalformedCredentialRejected(t *testing.T) {
	s := NewSessionStrategy("secret", 60)
	ctx := context.Background()

	for _, cred := range []string{"", "nodot", "a.b.c", "!!!.sig"} {
		_, err := s.Resolve(ctx, cred)
		assert.ErrorIs(t, err, ErrTamperedCredential, "cred=%q", cred)
	}
}

func TestSessionExpiryRejected(t *testing.T) {
	secret := "secret"
	s := NewSessionStrategy(secret, 60)

	// Craft a correctly signed but expired payload with the same scheme.
	payload, err := json.Marshal(map[string]any{
		"pid":  "p1",
		"role": string(domain.RoleViewer),
		"iat":  time.Now().Add(-2 * time.Hour).Unix(),
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(encoded))
	cred := encoded + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	_, err = s.Resolve(context.Background(), cred)
	assert.ErrorIs(t, err, ErrExpiredCredential)
}
