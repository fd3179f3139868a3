package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resource-api/internal/domain"
)

const (
	principalKey  = "auth_principal"
	credentialKey = "auth_credential"
)

// Gate authenticates requests without blocking them: it resolves whatever
// credential the request carries and exposes the principal (or nothing) to
// downstream handlers, which decide whether anonymous access is acceptable.
type Gate struct {
	token            Strategy
	session          Strategy
	cookieName       string
	bearerPrecedence bool
}

// NewGate constructs the middleware.
func NewGate(token, session Strategy, cookieName string, bearerPrecedence bool) *Gate {
	return &Gate{
		token:            token,
		session:          session,
		cookieName:       cookieName,
		bearerPrecedence: bearerPrecedence,
	}
}

// Handle resolves the request credential, if any. When both a bearer token
// and a session cookie are present the configured precedence decides which
// one is authoritative; by default the bearer token wins as the explicit
// intent to use stateless auth on that call.
func (g *Gate) Handle(c *fiber.Ctx) error {
	bearer := bearerToken(c.Get(fiber.HeaderAuthorization))
	cookie := c.Cookies(g.cookieName)

	type attempt struct {
		strategy   Strategy
		credential string
	}
	attempts := []attempt{{g.token, bearer}, {g.session, cookie}}
	if !g.bearerPrecedence {
		attempts = []attempt{{g.session, cookie}, {g.token, bearer}}
	}

	for _, a := range attempts {
		if a.credential == "" || a.strategy == nil {
			continue
		}
		principal, err := a.strategy.Resolve(c.Context(), a.credential)
		if err != nil {
			// The presented carrier is authoritative: an expired or
			// tampered credential leaves the request anonymous rather
			// than falling back to the other carrier.
			break
		}
		c.Locals(principalKey, principal)
		c.Locals(credentialKey, a.credential)
		break
	}
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity, if any.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	principal, ok := c.Locals(principalKey).(*domain.Principal)
	return principal, ok && principal != nil
}

// CredentialFromContext retrieves the raw credential that authenticated the
// request, for revocation on logout.
func CredentialFromContext(c *fiber.Ctx) (string, bool) {
	credential, ok := c.Locals(credentialKey).(string)
	return credential, ok && credential != ""
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}
