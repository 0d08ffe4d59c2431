// Package posts stores the discussion feed: posts, likes and comments.
package posts

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"

	"devconnect/internal/apperr"
	"devconnect/internal/users"
)

var (
	// ErrPostNotFound is returned when a post lookup misses.
	ErrPostNotFound = apperr.NotFound("Post not found")
	// ErrCommentNotFound is returned when a comment lookup misses.
	ErrCommentNotFound = apperr.NotFound("Comment does not exist")
	// ErrNotAuthorized is returned when a caller touches another user's content.
	ErrNotAuthorized = apperr.Forbidden("User not authorized")
	// ErrAlreadyLiked is returned when liking a post twice.
	ErrAlreadyLiked = apperr.Conflict("Post already liked")
	// ErrNotLiked is returned when unliking a post that was not liked.
	ErrNotLiked = apperr.Conflict("Post has not yet been liked")
)

// Post is a feed entry. Name and avatar are copied from the author at creation.
type Post struct {
	ID        string    `gorm:"primaryKey;type:text" json:"_id"`
	UserID    string    `gorm:"index;not null;type:text" json:"user"`
	Text      string    `gorm:"not null" json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `gorm:"foreignKey:PostID" json:"likes"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"date"`
}

// BeforeCreate assigns the identifier.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AfterFind keeps collections serialised as empty arrays rather than null.
func (p *Post) AfterFind(tx *gorm.DB) error {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	return nil
}

// LikePost records that a user liked a post.
type Like struct {
	ID        string    `gorm:"primaryKey;type:text" json:"_id"`
	PostID    string    `gorm:"uniqueIndex:idx_likes_post_user;not null;type:text" json:"-"`
	UserID    string    `gorm:"uniqueIndex:idx_likes_post_user;not null;type:text" json:"user"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

// BeforeCreate assigns the identifier.
func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Comment is a reply to a post.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:text" json:"_id"`
	PostID    string    `gorm:"index;not null;type:text" json:"-"`
	UserID    string    `gorm:"not null;type:text" json:"user"`
	Text      string    `gorm:"not null" json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"date"`
}

// BeforeCreate assigns the identifier.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// TextInput is the payload for posts and comments.
type TextInput struct {
	Text string `json:"text"`
}

func (in TextInput) validate() error {
	var v apperr.Validator
	v.Required("text", in.Text, "Text is required")
	return v.Err()
}

// newestFirst orders likes and comments the way the feed shows them.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Likes", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC, rowid DESC")
		}).
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC, rowid DESC")
		})
}

// ParseID validates a post or comment identifier.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperr.InvalidIdentifier("Invalid post id")
	}
	return parsed.String(), nil
}

// Create stores a new post authored by userID.
func Create(db *gorm.DB, logger *slog.Logger, userID string, in TextInput) (*Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	author, err := users.FindOwner(db, userID)
	if err != nil {
		return nil, err
	}

	post := Post{
		UserID: author.ID,
		Text:   strings.TrimSpace(in.Text),
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Omit("Likes", "Comments").Create(&post).Error
	})
	if err != nil {
		logger.Error("Failed to create post", slog.String("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("create post: %w", err)
	}

	return FindByID(db, post.ID)
}

// List returns all posts, newest first.
func List(db *gorm.DB) ([]Post, error) {
	posts := []Post{}
	if err := newestFirst(db).Order("created_at DESC, rowid DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// FindByID returns a single post with its likes and comments.
func FindByID(db *gorm.DB, postID string) (*Post, error) {
	id, err := ParseID(postID)
	if err != nil {
		return nil, err
	}

	var post Post
	if err := newestFirst(db).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

// Delete removes a post owned by userID along with its likes and comments.
func Delete(db *gorm.DB, logger *slog.Logger, userID, postID string) error {
	post, err := FindByID(db, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotAuthorized
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", post.ID).Delete(&Post{}).Error
	})
	if err != nil {
		logger.Error("Failed to delete post", slog.String("postID", post.ID), slog.Any("error", err))
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// LikePost records userID's like and returns the post's likes.
func LikePost(db *gorm.DB, logger *slog.Logger, userID, postID string) ([]Like, error) {
	post, err := FindByID(db, postID)
	if err != nil {
		return nil, err
	}
	if _, err := users.FindOwner(db, userID); err != nil {
		return nil, err
	}
	for _, l := range post.Likes {
		if l.UserID == userID {
			return nil, ErrAlreadyLiked
		}
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&Like{PostID: post.ID, UserID: userID}).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyLiked
		}
		return nil, fmt.Errorf("like post: %w", err)
	}

	return likesOf(db, post.ID)
}

// UnlikePost removes userID's like and returns the post's likes.
func UnlikePost(db *gorm.DB, logger *slog.Logger, userID, postID string) ([]Like, error) {
	post, err := FindByID(db, postID)
	if err != nil {
		return nil, err
	}

	var removed int64
	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", post.ID, userID).Delete(&Like{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return nil, fmt.Errorf("unlike post: %w", err)
	}
	if removed == 0 {
		return nil, ErrNotLiked
	}

	return likesOf(db, post.ID)
}

// AddComment appends a comment by userID and returns the post's comments.
func AddComment(db *gorm.DB, logger *slog.Logger, userID, postID string, in TextInput) ([]Comment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	post, err := FindByID(db, postID)
	if err != nil {
		return nil, err
	}
	author, err := users.FindOwner(db, userID)
	if err != nil {
		return nil, err
	}

	comment := Comment{
		PostID: post.ID,
		UserID: author.ID,
		Text:   strings.TrimSpace(in.Text),
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	return commentsOf(db, post.ID)
}

// RemoveComment deletes a comment written by userID and returns the post's comments.
func RemoveComment(db *gorm.DB, logger *slog.Logger, userID, postID, commentID string) ([]Comment, error) {
	post, err := FindByID(db, postID)
	if err != nil {
		return nil, err
	}
	cid, err := uuid.Parse(strings.TrimSpace(commentID))
	if err != nil {
		return nil, apperr.InvalidIdentifier("Invalid comment id")
	}

	var comment Comment
	if err := db.Where("id = ? AND post_id = ?", cid.String(), post.ID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	if comment.UserID != userID {
		return nil, ErrNotAuthorized
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Where("id = ?", comment.ID).Delete(&Comment{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("remove comment: %w", err)
	}

	return commentsOf(db, post.ID)
}

// DeleteByUserID removes every post written by userID, with their likes and
// comments. It is meant to run inside the account deletion transaction.
func DeleteByUserID(tx *gorm.DB, userID string) error {
	owned := func() *gorm.DB {
		return tx.Model(&Post{}).Select("id").Where("user_id = ?", userID)
	}
	if err := tx.Where("post_id IN (?)", owned()).Delete(&Like{}).Error; err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	if err := tx.Where("post_id IN (?)", owned()).Delete(&Comment{}).Error; err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	if err := tx.Where("user_id = ?", userID).Delete(&Post{}).Error; err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	return nil
}

func likesOf(db *gorm.DB, postID string) ([]Like, error) {
	likes := []Like{}
	err := db.Where("post_id = ?", postID).Order("created_at DESC, rowid DESC").Find(&likes).Error
	return likes, err
}

func commentsOf(db *gorm.DB, postID string) ([]Comment, error) {
	comments := []Comment{}
	err := db.Where("post_id = ?", postID).Order("created_at DESC, rowid DESC").Find(&comments).Error
	return comments, err
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
