package handlers

import (
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resource-api/internal/auth"
	"github.com/spec-kit/resource-api/internal/dispatch"
	"github.com/spec-kit/resource-api/pkg/util"
)

// ResourcesHandler bridges fiber requests to the resource dispatcher: it
// carries the wildcard path, query, body and resolved principal across and
// writes the dispatcher's response back.
type ResourcesHandler struct {
	dispatcher *dispatch.Dispatcher
}

// NewResourcesHandler constructs the handler.
func NewResourcesHandler(dispatcher *dispatch.Dispatcher) *ResourcesHandler {
	return &ResourcesHandler{dispatcher: dispatcher}
}

// Handle serves every method under the resource mount point.
func (h *ResourcesHandler) Handle(c *fiber.Ctx) error {
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return util.NewInvalidArgument("malformed query string")
	}

	req := &dispatch.Request{
		Query: query,
		Body:  c.Body(),
	}
	if principal, ok := auth.PrincipalFromContext(c); ok {
		req.Principal = principal
	}

	resp, err := h.dispatcher.Dispatch(c.UserContext(), c.Method(), "/"+c.Params("*"), req)
	if err != nil {
		return err
	}
	if resp.Status == http.StatusNoContent || resp.Body == nil {
		return c.SendStatus(resp.Status)
	}
	return c.Status(resp.Status).JSON(resp.Body)
}
