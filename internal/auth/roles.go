package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/pkg/util"
)

// RequirePrincipal rejects anonymous requests.
func RequirePrincipal() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return util.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}

// RequirePermission rejects requests whose principal lacks the permission.
// Anonymous requests are unauthenticated, not forbidden; the two are
// reported distinctly.
func RequirePermission(perm domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return util.NewUnauthenticated("authentication required")
		}
		if !principal.Can(perm) {
			return util.NewForbidden("insufficient permission")
		}
		return c.Next()
	}
}

// Authorize reports whether a principal may perform the permission. Used by
// resource handlers that carry their own access rules.
func Authorize(principal *domain.Principal, perm domain.Permission) bool {
	return principal.Can(perm)
}
