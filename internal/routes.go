package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"devconnect/internal/config"
	"devconnect/internal/http"
	"devconnect/internal/http/middleware"
	"devconnect/internal/metrics"
)

// apiCORSConfig is shared by every /api route. The web client may be served
// from another origin during development.
func apiCORSConfig(cfg *config.Config) *cors.Config {
	return &cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.TokenHeader,
	}
}

// NewServerConfig returns cartridge's defaults tuned for a token-authenticated
// JSON API: no templates or static assets, and no Sec-Fetch-Site check since
// the session lives in a header rather than a cookie.
func NewServerConfig() *cartridge.ServerConfig {
	serverCfg := cartridge.DefaultServerConfig()
	serverCfg.EnableTemplates = false
	serverCfg.EnableStaticAssets = false
	serverCfg.EnableSecFetchSite = false
	return serverCfg
}

// MountAPIRoutes mounts all application routes using the global configuration.
func MountAPIRoutes(srv *cartridge.Server) {
	MountAPIRoutesWithConfig(srv, config.GetConfig())
}

// MountAPIRoutesWithConfig mounts all application routes on srv.
func MountAPIRoutesWithConfig(srv *cartridge.Server, cfg *config.Config) {
	srv.App().Use(middleware.RequestMetrics())

	// Rate limiting only applies in production
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Brute force protection for credential endpoints (10 requests per minute)
	authRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(10),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	requireAuth := middleware.RequireAuth(http.NewTokenIssuer(cfg), srv.GetLogger())
	corsCfg := apiCORSConfig(cfg)

	publicConfig := &cartridge.RouteConfig{
		EnableCORS: true,
		CORSConfig: corsCfg,
	}
	credentialsConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		CORSConfig:       corsCfg,
		WriteConcurrency: true,
		CustomMiddleware: []fiber.Handler{authRateLimiter},
	}
	readConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		CORSConfig:       corsCfg,
		CustomMiddleware: []fiber.Handler{requireAuth},
	}
	writeConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		CORSConfig:       corsCfg,
		WriteConcurrency: true,
		CustomMiddleware: []fiber.Handler{requireAuth},
	}

	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)
	if cfg.MetricsEnabled {
		scrape := metrics.Handler()
		srv.Get("/metrics", func(ctx *cartridge.Context) error {
			return scrape(ctx.Ctx)
		})
	}

	// Preflight
	srv.Options("/api/*", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicConfig)

	// Credentials
	srv.Post("/api/users", http.RegisterAction, credentialsConfig)
	srv.Post("/api/auth", http.LoginAction, credentialsConfig)
	srv.Get("/api/auth", http.CurrentUserAction, readConfig)

	// Profiles
	srv.Get("/api/profile", http.ProfilesIndexAction, publicConfig)
	srv.Get("/api/profile/user/:user_id", http.ProfileByUserAction, publicConfig)
	srv.Get("/api/profile/me", http.ProfileMeAction, readConfig)
	srv.Post("/api/profile", http.ProfileUpsertAction, writeConfig)
	srv.Delete("/api/profile", http.ProfileDeleteAction, writeConfig)
	srv.Put("/api/profile/experience", http.ExperienceCreateAction, writeConfig)
	srv.Delete("/api/profile/experience/:exp_id", http.ExperienceDeleteAction, writeConfig)
	srv.Put("/api/profile/education", http.EducationCreateAction, writeConfig)
	srv.Delete("/api/profile/education/:edu_id", http.EducationDeleteAction, writeConfig)

	// Posts
	srv.Post("/api/posts", http.PostCreateAction, writeConfig)
	srv.Get("/api/posts", http.PostsIndexAction, readConfig)
	srv.Get("/api/posts/:id", http.PostShowAction, readConfig)
	srv.Delete("/api/posts/:id", http.PostDeleteAction, writeConfig)
	srv.Put("/api/posts/like/:id", http.PostLikeAction, writeConfig)
	srv.Put("/api/posts/unlike/:id", http.PostUnlikeAction, writeConfig)
	srv.Post("/api/posts/comment/:id", http.CommentCreateAction, writeConfig)
	srv.Delete("/api/posts/comment/:id/:comment_id", http.CommentDeleteAction, writeConfig)
}
