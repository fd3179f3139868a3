package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resource-api/internal/api/dto"
	"github.com/spec-kit/resource-api/internal/auth"
	"github.com/spec-kit/resource-api/internal/config"
	"github.com/spec-kit/resource-api/internal/domain"
	"github.com/spec-kit/resource-api/internal/service"
	"github.com/spec-kit/resource-api/pkg/util"
)

// AuthHandler exposes account and credential endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	mode       config.AuthMode
	cookieName string
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, mode config.AuthMode, cookieName string) *AuthHandler {
	return &AuthHandler{auth: authService, mode: mode, cookieName: cookieName}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewInvalidArgument("invalid payload")
	}
	var fieldErrs []util.FieldError
	if req.Name == "" {
		fieldErrs = append(fieldErrs, util.FieldError{Field: "name", Message: "required field is missing"})
	}
	if req.Email == "" {
		fieldErrs = append(fieldErrs, util.FieldError{Field: "email", Message: "required field is missing"})
	}
	if req.Password == "" {
		fieldErrs = append(fieldErrs, util.FieldError{Field: "password", Message: "required field is missing"})
	}
	if fieldErrs != nil {
		return util.NewValidationFailed(fieldErrs)
	}

	account, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Envelope{Data: accountResponse(account)})
}

// Login handles POST /auth/login. In cookie mode the credential is set as a
// signed session cookie; in token mode it is returned in the body.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewInvalidArgument("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return util.NewInvalidArgument("email and password required")
	}

	account, credential, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	authResp := dto.AuthResponse{ExpiresAt: credential.ExpiresAt}
	if h.mode == config.AuthModeCookie {
		c.Cookie(&fiber.Cookie{
			Name:     h.cookieName,
			Value:    credential.Value,
			Expires:  credential.ExpiresAt,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	} else {
		authResp.Token = credential.Value
	}

	return c.JSON(dto.Envelope{Data: fiber.Map{
		"account": accountResponse(account),
		"auth":    authResp,
	}})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if credential, ok := auth.CredentialFromContext(c); ok {
		if err := h.auth.Logout(c.UserContext(), principal, credential); err != nil {
			return err
		}
	}
	if h.mode == config.AuthModeCookie {
		c.Cookie(&fiber.Cookie{
			Name:     h.cookieName,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthenticated("authentication required")
	}
	account, err := h.auth.Lookup(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Data: accountResponse(account)})
}

func accountResponse(account *service.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
		Role:  string(account.Role),
	}
}
