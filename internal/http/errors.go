package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"devconnect/internal/apperr"
)

// respondError writes err using the API's error contract. Unclassified errors
// are logged and reported as a bare 500.
func respondError(ctx *cartridge.Context, err error) error {
	c := ctx.Ctx
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		ctx.Logger.Error("Request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).SendString("Server Error")
	}

	switch appErr.Kind {
	case apperr.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": appErr.Fields})
	case apperr.KindNotFound, apperr.KindInvalidIdentifier:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"msg":  appErr.Msg,
			"code": appErr.Kind.String(),
		})
	case apperr.KindConflict:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": appErr.Msg})
	case apperr.KindAuth, apperr.KindForbidden:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": appErr.Msg})
	default:
		ctx.Logger.Error("Request failed", slog.String("path", c.Path()), slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).SendString("Server Error")
	}
}

// parseBody decodes the request body into dst. An empty body leaves dst untouched.
func parseBody(ctx *cartridge.Context, dst any) error {
	c := ctx.Ctx
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return apperr.Validation(apperr.FieldError{Msg: "Invalid request body", Location: "body"})
	}
	return nil
}
