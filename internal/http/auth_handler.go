package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"devconnect/internal/http/middleware"
	"devconnect/internal/metrics"
	"devconnect/internal/users"
)

// TokenResponse is returned by registration and login.
type TokenResponse struct {
	Token string `json:"token"`
}

// RegisterAction creates an account and returns a session token.
func RegisterAction(ctx *cartridge.Context) error {
	var in users.RegisterInput
	if err := parseBody(ctx, &in); err != nil {
		return respondError(ctx, err)
	}

	user, err := users.Register(ctx.DB(), ctx.Logger, in, appConfig(ctx).MinPasswordLength)
	if err != nil {
		return respondError(ctx, err)
	}
	metrics.Registrations.Inc()

	return sendToken(ctx, user.ID)
}

// LoginAction exchanges credentials for a session token.
func LoginAction(ctx *cartridge.Context) error {
	var in users.LoginInput
	if err := parseBody(ctx, &in); err != nil {
		return respondError(ctx, err)
	}

	user, err := users.Authenticate(ctx.DB(), ctx.Logger, in)
	if err != nil {
		metrics.Logins.WithLabelValues("failure").Inc()
		return respondError(ctx, err)
	}
	metrics.Logins.WithLabelValues("success").Inc()

	return sendToken(ctx, user.ID)
}

// CurrentUserAction returns the authenticated user without the password hash.
func CurrentUserAction(ctx *cartridge.Context) error {
	user, err := users.FindOwner(ctx.DB(), middleware.UserID(ctx.Ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(user)
}

func sendToken(ctx *cartridge.Context, userID string) error {
	token, err := tokenIssuer(ctx).Issue(userID)
	if err != nil {
		ctx.Logger.Error("Failed to issue token", slog.String("userID", userID), slog.Any("error", err))
		return ctx.Status(fiber.StatusInternalServerError).SendString("Server Error")
	}
	return ctx.JSON(TokenResponse{Token: token})
}
