package http

import (
	stdhttp "net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/resource-api/internal/observability"
	"github.com/spec-kit/resource-api/pkg/util"
)

func TestRequestMetricsRecordTranslatedStatus(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/missing", func(c *fiber.Ctx) error {
		return util.NewNotFound("thing")
	})

	req, err := stdhttp.NewRequest(stdhttp.MethodGet, "/missing", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, stdhttp.StatusNotFound, resp.StatusCode)

	assert.Equal(t, int64(1), metrics.RequestCount("/missing", stdhttp.MethodGet, stdhttp.StatusNotFound))
	assert.Equal(t, int64(0), metrics.RequestCount("/missing", stdhttp.MethodGet, stdhttp.StatusOK))
	assert.Equal(t, int64(1), metrics.ErrorCount("/missing", stdhttp.MethodGet, util.KindNotFound))
}

func TestPanicBecomesInternalEnvelope(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	req, err := stdhttp.NewRequest(stdhttp.MethodGet, "/boom", nil)
	require.NoError(t, err)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, stdhttp.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int64(1), metrics.RequestCount("/boom", stdhttp.MethodGet, stdhttp.StatusInternalServerError))
}
