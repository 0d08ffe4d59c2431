// Package accounts removes a user together with everything they own.
package accounts

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"devconnect/internal/posts"
	"devconnect/internal/profiles"
	"devconnect/internal/users"
)

// Delete removes the user's posts, profile and credential record in one
// transaction. If any step fails nothing is removed.
func Delete(db *gorm.DB, logger *slog.Logger, userID string) error {
	id, err := users.ParseID(userID)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := posts.DeleteByUserID(tx, id); err != nil {
			return err
		}
		if err := profiles.DeleteByUserID(tx, id); err != nil {
			return err
		}
		if err := users.DeleteByID(tx, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete account", slog.String("userID", id), slog.Any("error", err))
		return fmt.Errorf("delete account: %w", err)
	}

	logger.Info("Account deleted", slog.String("userID", id))
	return nil
}
