package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/resource-api/internal/observability"
	"github.com/spec-kit/resource-api/pkg/util"
)

// RegisterMiddlewares attaches global middlewares: request timeout, request
// logging, and error translation. The logger sits outside the error
// translation so it observes the status of the rendered envelope, not the
// pre-translation default.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware converts every failure, panics included, to the
// uniform error envelope. Internal detail never reaches the response body.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = util.NewInternal("panic", nil)
			}
			if err != nil {
				domainErr := util.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Kind)

				errBody := fiber.Map{
					"kind":    domainErr.Kind,
					"message": domainErr.Message,
				}
				if domainErr.Field != "" {
					errBody["field"] = domainErr.Field
				}
				if len(domainErr.FieldErrs) > 0 {
					errBody["field_errors"] = domainErr.FieldErrs
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed",
						zap.Error(domainErr),
						zap.String("reason", domainErr.Reason),
						zap.String("path", c.Path()),
					)
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(fiber.Map{"error": errBody})
				err = nil
			}
		}()
		return c.Next()
	}
}
