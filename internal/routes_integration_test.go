package internal

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/auth"
	"devconnect/internal/config"
)

var protectedRoutes = []struct {
	method string
	path   string
}{
	{fiber.MethodGet, "/api/auth"},
	{fiber.MethodGet, "/api/profile/me"},
	{fiber.MethodPost, "/api/profile"},
	{fiber.MethodDelete, "/api/profile"},
	{fiber.MethodPut, "/api/profile/experience"},
	{fiber.MethodDelete, "/api/profile/experience/3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"},
	{fiber.MethodPut, "/api/profile/education"},
	{fiber.MethodDelete, "/api/profile/education/3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"},
	{fiber.MethodPost, "/api/posts"},
	{fiber.MethodGet, "/api/posts"},
	{fiber.MethodGet, "/api/posts/3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"},
	{fiber.MethodDelete, "/api/posts/3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"},
	{fiber.MethodPut, "/api/posts/like/3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"},
	{fiber.MethodPut, "/api/posts/unlike/3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"},
	{fiber.MethodPost, "/api/posts/comment/3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"},
	{fiber.MethodDelete, "/api/posts/comment/3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b/3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5c"},
}

func routeTestConfig(env string) *config.Config {
	return &config.Config{
		AppName:         "devconnect",
		Environment:     env,
		CORSOrigins:     "*",
		JWTSecret:       "route-test-secret",
		TokenTTLSeconds: 3600,
		MetricsEnabled:  true,
	}
}

func newRouteTestServer(t *testing.T, cfg *config.Config) *fiber.App {
	t.Helper()

	srv := testsupport.NewTestServer(t, testsupport.TestServerOptions{
		ServerConfig:   NewServerConfig(),
		RouteMountFunc: func(srv *cartridge.Server) {
			MountAPIRoutesWithConfig(srv, cfg)
		},
	})
	return srv.App
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newRouteTestServer(t, routeTestConfig(config.Test))

	expired := auth.NewTokenIssuer([]byte("route-test-secret"), -time.Minute)
	expiredToken, err := expired.Issue("3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b")
	require.NoError(t, err)

	forged := auth.NewTokenIssuer([]byte("someone-elses-secret"), time.Hour)
	forgedToken, err := forged.Issue("3f1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b")
	require.NoError(t, err)

	for _, route := range protectedRoutes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(route.method, route.path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "missing token")

			for _, tok := range []string{expiredToken, forgedToken, "garbage"} {
				req := httptest.NewRequest(route.method, route.path, nil)
				req.Header.Set("x-auth-token", tok)
				resp, err := app.Test(req)
				require.NoError(t, err)
				assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			}
		})
	}
}

func TestRoutesRegistered(t *testing.T) {
	app := newRouteTestServer(t, routeTestConfig(config.Test))

	registered := map[string]bool{}
	for _, r := range app.GetRoutes(true) {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /api/users",
		"POST /api/auth",
		"GET /api/profile",
		"GET /api/profile/user/:user_id",
		"GET /_health",
		"GET /metrics",
	} {
		assert.Truef(t, registered[want], "expected route %s", want)
	}
}

func TestPreflightAllowsTokenHeader(t *testing.T) {
	app := newRouteTestServer(t, routeTestConfig(config.Test))

	req := httptest.NewRequest(fiber.MethodOptions, "/api/posts", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, fiber.MethodPost)
	req.Header.Set(fiber.HeaderAccessControlRequestHeaders, "x-auth-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Contains(t, strings.ToLower(resp.Header.Get(fiber.HeaderAccessControlAllowHeaders)), "x-auth-token")
}

func TestWritesWithoutSecFetchSiteHeader(t *testing.T) {
	app := newRouteTestServer(t, routeTestConfig(config.Test))

	req := httptest.NewRequest(fiber.MethodPost, "/api/auth", strings.NewReader(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCredentialRoutesRateLimitedInProduction(t *testing.T) {
	login := func(app *fiber.App) int {
		req := httptest.NewRequest(fiber.MethodPost, "/api/auth", strings.NewReader(`{}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	t.Run("production", func(t *testing.T) {
		app := newRouteTestServer(t, routeTestConfig(config.Production))
		for i := 0; i < 10; i++ {
			require.Equal(t, fiber.StatusBadRequest, login(app), "attempt %d", i+1)
		}
		assert.Equal(t, fiber.StatusTooManyRequests, login(app))
	})

	t.Run("test", func(t *testing.T) {
		app := newRouteTestServer(t, routeTestConfig(config.Test))
		for i := 0; i < 12; i++ {
			require.Equal(t, fiber.StatusBadRequest, login(app), "attempt %d", i+1)
		}
	})
}
