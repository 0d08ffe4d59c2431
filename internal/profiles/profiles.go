// Package profiles stores developer profiles and implements the profile
// mutation rules: partial upsert keyed by owner, and id-addressed experience
// and education entries kept newest-first.
package profiles

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devconnect/internal/apperr"
	"devconnect/internal/users"
)

// ErrProfileNotFound is returned when the caller has no profile yet.
var ErrProfileNotFound = apperr.NotFound("There is no profile for this user")

// SocialLinks groups the optional social network URLs of a profile.
type SocialLinks struct {
	Youtube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Linkedin  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Profile is the one-per-user developer profile.
type Profile struct {
	ID             string       `gorm:"primaryKey;type:text" json:"_id"`
	UserID         string       `gorm:"uniqueIndex;not null;type:text" json:"-"`
	User           *users.User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Status         string       `gorm:"not null" json:"status"`
	Skills         []string     `gorm:"serializer:json" json:"skills"`
	Bio            string       `json:"bio,omitempty"`
	GitHubUsername string       `gorm:"column:github_username" json:"githubusername,omitempty"`
	Social         SocialLinks  `gorm:"embedded;embeddedPrefix:social_" json:"social"`
	Experience     []Experience `gorm:"foreignKey:ProfileID" json:"experience"`
	Education      []Education  `gorm:"foreignKey:ProfileID" json:"education"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"date"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"-"`
}

// BeforeCreate assigns the identifier.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AfterFind keeps collections serialised as empty arrays rather than null.
func (p *Profile) AfterFind(tx *gorm.DB) error {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	return nil
}

// Experience is a single job entry of a profile.
type Experience struct {
	ID          string     `gorm:"primaryKey;type:text" json:"_id"`
	ProfileID   string     `gorm:"index;not null;type:text" json:"-"`
	Position    int        `gorm:"not null" json:"-"`
	Title       string     `gorm:"not null" json:"title"`
	Company     string     `gorm:"not null" json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `gorm:"column:from_date" json:"from"`
	To          *time.Time `gorm:"column:to_date" json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// TableName overrides the table name.
func (Experience) TableName() string { return "experiences" }

// BeforeCreate assigns the identifier.
func (e *Experience) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Education is a single school entry of a profile.
type Education struct {
	ID           string     `gorm:"primaryKey;type:text" json:"_id"`
	ProfileID    string     `gorm:"index;not null;type:text" json:"-"`
	Position     int        `gorm:"not null" json:"-"`
	School       string     `gorm:"not null" json:"school"`
	Degree       string     `gorm:"not null" json:"degree"`
	FieldOfStudy string     `gorm:"not null" json:"fieldofstudy"`
	From         time.Time  `gorm:"column:from_date" json:"from"`
	To           *time.Time `gorm:"column:to_date" json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// TableName overrides the table name.
func (Education) TableName() string { return "educations" }

// BeforeCreate assigns the identifier.
func (e *Education) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// withOwner loads the owner's public fields and both collections newest-first.
func withOwner(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "avatar")
		}).
		Preload("Experience", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position DESC")
		}).
		Preload("Education", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position DESC")
		})
}

// FindByUserID returns the populated profile owned by userID. A malformed
// userID yields InvalidIdentifier; a missing profile yields ErrProfileNotFound.
func FindByUserID(db *gorm.DB, userID string) (*Profile, error) {
	id, err := users.ParseID(userID)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := withOwner(db).Where("user_id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

// List returns every profile with its owner's name and avatar.
func List(db *gorm.DB) ([]Profile, error) {
	profiles := []Profile{}
	if err := withOwner(db).Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Upsert validates in and writes the present fields to the profile owned by
// userID, creating it when absent. Absent fields keep their stored values.
func Upsert(db *gorm.DB, logger *slog.Logger, userID string, in Input) (*Profile, error) {
	fields, err := BuildFields(in)
	if err != nil {
		return nil, err
	}

	owner, err := users.FindOwner(db, userID)
	if err != nil {
		return nil, err
	}

	profile := fields.Profile
	profile.UserID = owner.ID

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(append(fields.Columns, "updated_at")),
		}).Create(&profile).Error
	})
	if err != nil {
		logger.Error("Failed to upsert profile", slog.String("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	return FindByUserID(db, userID)
}

// AddExperience validates in and inserts it at the head of the caller's
// experience collection.
func AddExperience(db *gorm.DB, logger *slog.Logger, userID string, in ExperienceInput) (*Profile, error) {
	entry, err := in.Build()
	if err != nil {
		return nil, err
	}
	if err := addEntry(db, logger, userID, entry, &entry.ProfileID, &entry.Position); err != nil {
		return nil, err
	}
	return FindByUserID(db, userID)
}

// AddEducation validates in and inserts it at the head of the caller's
// education collection.
func AddEducation(db *gorm.DB, logger *slog.Logger, userID string, in EducationInput) (*Profile, error) {
	entry, err := in.Build()
	if err != nil {
		return nil, err
	}
	if err := addEntry(db, logger, userID, entry, &entry.ProfileID, &entry.Position); err != nil {
		return nil, err
	}
	return FindByUserID(db, userID)
}

// RemoveExperience deletes the experience entry with entryID from the
// caller's profile. An id that is not in the collection leaves it unchanged.
func RemoveExperience(db *gorm.DB, logger *slog.Logger, userID, entryID string) (*Profile, error) {
	return removeEntry(db, logger, userID, entryID, &Experience{}, "Invalid experience id")
}

// RemoveEducation deletes the education entry with entryID from the caller's
// profile. An id that is not in the collection leaves it unchanged.
func RemoveEducation(db *gorm.DB, logger *slog.Logger, userID, entryID string) (*Profile, error) {
	return removeEntry(db, logger, userID, entryID, &Education{}, "Invalid education id")
}

// DeleteByUserID removes the profile owned by userID and its entries. It is
// meant to run inside the account deletion transaction.
func DeleteByUserID(tx *gorm.DB, userID string) error {
	owned := func() *gorm.DB {
		return tx.Model(&Profile{}).Select("id").Where("user_id = ?", userID)
	}
	if err := tx.Where("profile_id IN (?)", owned()).Delete(&Experience{}).Error; err != nil {
		return fmt.Errorf("delete experiences: %w", err)
	}
	if err := tx.Where("profile_id IN (?)", owned()).Delete(&Education{}).Error; err != nil {
		return fmt.Errorf("delete educations: %w", err)
	}
	if err := tx.Where("user_id = ?", userID).Delete(&Profile{}).Error; err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

func findProfileID(db *gorm.DB, userID string) (string, error) {
	var profile Profile
	err := db.Select("id").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrProfileNotFound
		}
		return "", fmt.Errorf("find profile: %w", err)
	}
	return profile.ID, nil
}

// addEntry stores entry one position above the current head of its collection.
func addEntry(db *gorm.DB, logger *slog.Logger, userID string, entry any, profileID *string, position *int) error {
	id, err := findProfileID(db, userID)
	if err != nil {
		return err
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		var head int
		if err := tx.Model(entry).
			Where("profile_id = ?", id).
			Select("COALESCE(MAX(position), 0)").
			Scan(&head).Error; err != nil {
			return err
		}
		*profileID = id
		*position = head + 1
		return tx.Create(entry).Error
	})
	if err != nil {
		logger.Error("Failed to add profile entry", slog.String("userID", userID), slog.Any("error", err))
		return fmt.Errorf("add profile entry: %w", err)
	}
	return nil
}

func removeEntry(db *gorm.DB, logger *slog.Logger, userID, entryID string, model any, invalidMsg string) (*Profile, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(entryID))
	if err != nil {
		return nil, apperr.InvalidIdentifier(invalidMsg)
	}

	id, err := findProfileID(db, userID)
	if err != nil {
		return nil, err
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Where("id = ? AND profile_id = ?", parsed.String(), id).Delete(model).Error
	})
	if err != nil {
		logger.Error("Failed to remove profile entry", slog.String("userID", userID), slog.Any("error", err))
		return nil, fmt.Errorf("remove profile entry: %w", err)
	}

	return FindByUserID(db, userID)
}
