package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/resource-api/internal/domain"
)

func TestTokenIssueResolveRoundtrip(t *testing.T) {
	s := NewTokenStrategy("secret", 60, NewMemoryDenylist())
	ctx := context.Background()

	cred, err := s.Issue(ctx, &domain.Principal{ID: "p1", Role: domain.RoleEditor})
	require.NoError(t, err)
	require.NotEmpty(t, cred.Value)

	principal, err := s.Resolve(ctx, cred.Value)
	require.NoError(t, err)
	assert.Equal(t, "p1", principal.ID)
	assert.Equal(t, domain.RoleEditor, principal.Role)
}

func TestTokenTamperedByOneByteNeverResolves(t *testing.T) {
	s := NewTokenStrategy("secret", 60, NewMemoryDenylist())
	ctx := context.Background()

	cred, err := s.Issue(ctx, &domain.Principal{ID: "p1", Role: domain.RoleViewer})
	require.NoError(t, err)

	raw := []byte(cred.Value)
	for i := 0; i < len(raw); i += 7 {
		tampered := make([]byte, len(raw))
		copy(tampered, raw)
		tampered[i] ^= 0x01

		principal, err := s.Resolve(ctx, string(tampered))
		assert.Error(t, err, "flip at offset %d", i)
		assert.Nil(t, principal)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenStrategy("secret-a", 60, nil)
	verifier := NewTokenStrategy("secret-b", 60, nil)
	ctx := context.Background()

	cred, err := issuer.Issue(ctx, &domain.Principal{ID: "p1", Role: domain.RoleViewer})
	require.NoError(t, err)

	_, err = verifier.Resolve(ctx, cred.Value)
	assert.ErrorIs(t, err, ErrTamperedCredential)
}

func TestTokenRevocationViaDenylist(t *testing.T) {
	s := NewTokenStrategy("secret", 60, NewMemoryDenylist())
	ctx := context.Background()

	cred, err := s.Issue(ctx, &domain.Principal{ID: "p1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = s.Resolve(ctx, cred.Value)
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, cred.Value))

	_, err = s.Resolve(ctx, cred.Value)
	assert.ErrorIs(t, err, ErrRevokedCredential)
}

func TestTokenRevocationIsPerToken(t *testing.T) {
	s := NewTokenStrategy("secret", 60, NewMemoryDenylist())
	ctx := context.Background()

	first, err := s.Issue(ctx, &domain.Principal{ID: "p1", Role: domain.RoleAdmin})
	require.NoError(t, err)
	second, err := s.Issue(ctx, &domain.Principal{ID: "p1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, first.Value))

	_, err = s.Resolve(ctx, first.Value)
	assert.Error(t, err)
	_, err = s.Resolve(ctx, second.Value)
	assert.NoError(t, err)
}
