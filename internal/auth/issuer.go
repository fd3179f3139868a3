package auth

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/resource-api/internal/domain"
)

// Resolution failures. The auth gate reports all of them uniformly as
// unauthenticated so a caller cannot probe which credential formats the
// server recognizes.
var (
	ErrTamperedCredential = errors.New("credential signature mismatch")
	ErrExpiredCredential  = errors.New("credential expired")
	ErrRevokedCredential  = errors.New("credential revoked")
)

// Credential is the opaque signed artifact handed to the client.
type Credential struct {
	Value     string
	ExpiresAt time.Time
}

// Strategy issues and resolves one kind of credential. Two implementations
// exist: the stateless bearer token and the signed stateful session cookie.
type Strategy interface {
	Issue(ctx context.Context, principal *domain.Principal) (Credential, error)
	Resolve(ctx context.Context, credential string) (*domain.Principal, error)
	// Revoke invalidates the credential where the strategy supports it.
	Revoke(ctx context.Context, credential string) error
}
