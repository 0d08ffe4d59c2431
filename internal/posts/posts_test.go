package posts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/apperr"
	"devconnect/internal/posts"
	"devconnect/internal/testsupport"
	"devconnect/internal/users"
)

func TestCreateAndList(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	author := testsupport.CreateTestUser(t, db, "Ada", "ada@example.com", "password123")

	t.Run("text is required", func(t *testing.T) {
		_, err := posts.Create(db, logger, author.ID, posts.TextInput{Text: "  "})
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Text is required", appErr.Fields[0].Msg)
	})

	first, err := posts.Create(db, logger, author.ID, posts.TextInput{Text: "first"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", first.Name)
	assert.Equal(t, author.Avatar, first.Avatar)
	assert.Equal(t, author.ID, first.UserID)
	assert.NotNil(t, first.Likes)
	assert.NotNil(t, first.Comments)

	_, err = posts.Create(db, logger, author.ID, posts.TextInput{Text: "second"})
	require.NoError(t, err)

	list, err := posts.List(db)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Text)
	assert.Equal(t, "first", list[1].Text)
}

func TestFindByID(t *testing.T) {
	db := testsupport.SetupTestDB(t)

	_, err := posts.FindByID(db, "bad")
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidIdentifier))

	_, err = posts.FindByID(db, "0b6d3c0e-51a4-4b5a-9d63-7b1e4f6f8a21")
	assert.ErrorIs(t, err, posts.ErrPostNotFound)
}

func TestDelete(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	owner := testsupport.CreateTestUser(t, db, "Ada", "ada@example.com", "password123")
	other := testsupport.CreateTestUser(t, db, "Eve", "eve@example.com", "password123")

	post, err := posts.Create(db, logger, owner.ID, posts.TextInput{Text: "hello"})
	require.NoError(t, err)
	_, err = posts.LikePost(db, logger, other.ID, post.ID)
	require.NoError(t, err)

	err = posts.Delete(db, logger, other.ID, post.ID)
	assert.ErrorIs(t, err, posts.ErrNotAuthorized)

	require.NoError(t, posts.Delete(db, logger, owner.ID, post.ID))

	_, err = posts.FindByID(db, post.ID)
	assert.ErrorIs(t, err, posts.ErrPostNotFound)

	var likes int64
	require.NoError(t, db.Model(&posts.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestLikeAndUnlike(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	owner := testsupport.CreateTestUser(t, db, "Ada", "ada@example.com", "password123")
	fan := testsupport.CreateTestUser(t, db, "Fan", "fan@example.com", "password123")

	post, err := posts.Create(db, logger, owner.ID, posts.TextInput{Text: "like me"})
	require.NoError(t, err)

	_, err = posts.UnlikePost(db, logger, fan.ID, post.ID)
	assert.ErrorIs(t, err, posts.ErrNotLiked)

	likes, err := posts.LikePost(db, logger, fan.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, fan.ID, likes[0].UserID)

	_, err = posts.LikePost(db, logger, fan.ID, post.ID)
	assert.ErrorIs(t, err, posts.ErrAlreadyLiked)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	likes, err = posts.LikePost(db, logger, owner.ID, post.ID)
	require.NoError(t, err)
	assert.Len(t, likes, 2)

	likes, err = posts.UnlikePost(db, logger, fan.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, owner.ID, likes[0].UserID)
}

func TestComments(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	owner := testsupport.CreateTestUser(t, db, "Ada", "ada@example.com", "password123")
	commenter := testsupport.CreateTestUser(t, db, "Bob", "bob@example.com", "password123")

	post, err := posts.Create(db, logger, owner.ID, posts.TextInput{Text: "discuss"})
	require.NoError(t, err)

	_, err = posts.AddComment(db, logger, commenter.ID, post.ID, posts.TextInput{})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	comments, err := posts.AddComment(db, logger, commenter.ID, post.ID, posts.TextInput{Text: "nice"})
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Bob", comments[0].Name)
	commentID := comments[0].ID

	t.Run("only the author may remove a comment", func(t *testing.T) {
		_, err := posts.RemoveComment(db, logger, owner.ID, post.ID, commentID)
		assert.ErrorIs(t, err, posts.ErrNotAuthorized)
	})

	t.Run("unknown comment", func(t *testing.T) {
		_, err := posts.RemoveComment(db, logger, commenter.ID, post.ID, "3b9d6f0a-7a3e-4b8e-9c1d-5e2f7a9b0c11")
		assert.ErrorIs(t, err, posts.ErrCommentNotFound)
	})

	t.Run("author removes comment", func(t *testing.T) {
		comments, err := posts.RemoveComment(db, logger, commenter.ID, post.ID, commentID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})
}

func TestDeleteByUserID(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	gone := testsupport.CreateTestUser(t, db, "Gone", "gone@example.com", "password123")
	stays := testsupport.CreateTestUser(t, db, "Stays", "stays@example.com", "password123")

	mine, err := posts.Create(db, logger, gone.ID, posts.TextInput{Text: "bye"})
	require.NoError(t, err)
	_, err = posts.AddComment(db, logger, stays.ID, mine.ID, posts.TextInput{Text: "see you"})
	require.NoError(t, err)
	_, err = posts.Create(db, logger, stays.ID, posts.TextInput{Text: "still here"})
	require.NoError(t, err)

	require.NoError(t, posts.DeleteByUserID(db, gone.ID))

	list, err := posts.List(db)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "still here", list[0].Text)

	var comments int64
	require.NoError(t, db.Model(&posts.Comment{}).Count(&comments).Error)
	assert.Zero(t, comments)
}

func TestWritesRequireExistingAccount(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()
	author := testsupport.CreateTestUser(t, db, "Ada", "ada@example.com", "password123")
	post, err := posts.Create(db, logger, author.ID, posts.TextInput{Text: "hello"})
	require.NoError(t, err)

	const ghost = "6f1c2b1e-3d4a-4c5b-8e6f-7a8b9c0d1e2f"

	_, err = posts.Create(db, logger, ghost, posts.TextInput{Text: "boo"})
	assert.ErrorIs(t, err, users.ErrAccountNotFound)

	_, err = posts.AddComment(db, logger, ghost, post.ID, posts.TextInput{Text: "boo"})
	assert.ErrorIs(t, err, users.ErrAccountNotFound)

	_, err = posts.LikePost(db, logger, ghost, post.ID)
	assert.ErrorIs(t, err, users.ErrAccountNotFound)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
