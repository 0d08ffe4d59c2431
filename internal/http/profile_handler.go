package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"devconnect/internal/accounts"
	"devconnect/internal/apperr"
	"devconnect/internal/http/middleware"
	"devconnect/internal/profiles"
)

// ProfileMeAction returns the caller's profile.
func ProfileMeAction(ctx *cartridge.Context) error {
	profile, err := profiles.FindByUserID(ctx.DB(), middleware.UserID(ctx.Ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// ProfileUpsertAction creates or partially updates the caller's profile.
func ProfileUpsertAction(ctx *cartridge.Context) error {
	var in profiles.Input
	if err := parseBody(ctx, &in); err != nil {
		return respondError(ctx, err)
	}

	profile, err := profiles.Upsert(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), in)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// ProfilesIndexAction lists every profile.
func ProfilesIndexAction(ctx *cartridge.Context) error {
	list, err := profiles.List(ctx.DB())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(list)
}

// ProfileByUserAction returns the profile owned by :user_id.
func ProfileByUserAction(ctx *cartridge.Context) error {
	profile, err := profiles.FindByUserID(ctx.DB(), ctx.Params("user_id"))
	if err != nil {
		if errors.Is(err, profiles.ErrProfileNotFound) {
			err = apperr.NotFound("Profile is not found")
		}
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// ProfileDeleteAction deletes the caller's account with its profile and posts.
func ProfileDeleteAction(ctx *cartridge.Context) error {
	if err := accounts.Delete(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx)); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"msg": "User deleted"})
}

// ExperienceCreateAction adds an experience entry to the caller's profile.
func ExperienceCreateAction(ctx *cartridge.Context) error {
	var in profiles.ExperienceInput
	if err := parseBody(ctx, &in); err != nil {
		return respondError(ctx, err)
	}

	profile, err := profiles.AddExperience(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), in)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// ExperienceDeleteAction removes experience :exp_id from the caller's profile.
func ExperienceDeleteAction(ctx *cartridge.Context) error {
	profile, err := profiles.RemoveExperience(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), ctx.Params("exp_id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// EducationCreateAction adds an education entry to the caller's profile.
func EducationCreateAction(ctx *cartridge.Context) error {
	var in profiles.EducationInput
	if err := parseBody(ctx, &in); err != nil {
		return respondError(ctx, err)
	}

	profile, err := profiles.AddEducation(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), in)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}

// EducationDeleteAction removes education :edu_id from the caller's profile.
func EducationDeleteAction(ctx *cartridge.Context) error {
	profile, err := profiles.RemoveEducation(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), ctx.Params("edu_id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(profile)
}
