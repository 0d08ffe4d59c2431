package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"devconnect/internal/http/middleware"
	"devconnect/internal/posts"
)

// PostCreateAction publishes a post by the caller.
func PostCreateAction(ctx *cartridge.Context) error {
	var in posts.TextInput
	if err := parseBody(ctx, &in); err != nil {
		return respondError(ctx, err)
	}

	post, err := posts.Create(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), in)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(post)
}

// PostsIndexAction lists posts newest first.
func PostsIndexAction(ctx *cartridge.Context) error {
	list, err := posts.List(ctx.DB())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(list)
}

// PostShowAction returns a single post.
func PostShowAction(ctx *cartridge.Context) error {
	post, err := posts.FindByID(ctx.DB(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(post)
}

// PostDeleteAction deletes one of the caller's posts.
func PostDeleteAction(ctx *cartridge.Context) error {
	if err := posts.Delete(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), ctx.Params("id")); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"msg": "Post removed"})
}

// PostLikeAction likes a post and returns its likes.
func PostLikeAction(ctx *cartridge.Context) error {
	likes, err := posts.LikePost(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(likes)
}

// PostUnlikeAction removes the caller's like and returns the remaining likes.
func PostUnlikeAction(ctx *cartridge.Context) error {
	likes, err := posts.UnlikePost(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(likes)
}

// CommentCreateAction comments on a post and returns its comments.
func CommentCreateAction(ctx *cartridge.Context) error {
	var in posts.TextInput
	if err := parseBody(ctx, &in); err != nil {
		return respondError(ctx, err)
	}

	comments, err := posts.AddComment(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), ctx.Params("id"), in)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(comments)
}

// CommentDeleteAction removes one of the caller's comments.
func CommentDeleteAction(ctx *cartridge.Context) error {
	comments, err := posts.RemoveComment(ctx.DB(), ctx.Logger, middleware.UserID(ctx.Ctx), ctx.Params("id"), ctx.Params("comment_id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(comments)
}
