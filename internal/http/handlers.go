// Package http holds the JSON API handlers.
package http

import (
	"github.com/karloscodes/cartridge"

	"devconnect/internal/auth"
	"devconnect/internal/config"
)

func appConfig(ctx *cartridge.Context) *config.Config {
	return ctx.Config.(*config.Config)
}

// NewTokenIssuer builds the session token issuer for cfg.
func NewTokenIssuer(cfg *config.Config) *auth.TokenIssuer {
	return auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL())
}

func tokenIssuer(ctx *cartridge.Context) *auth.TokenIssuer {
	return NewTokenIssuer(appConfig(ctx))
}
