package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/metrics"
)

func TestRequestMetricsLabelsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(RequestMetrics())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTeapot).SendString(c.Params("id"))
	})
	app.Get("/metrics", metrics.Handler())

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/items/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `devconnect_http_requests_total{method="GET",route="/items/:id",status="418"} 2`)
}
