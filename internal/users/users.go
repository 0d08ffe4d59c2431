package users

import (
	"crypto/md5"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/karloscodes/cartridge/crypto"
	"github.com/karloscodes/cartridge/sqlite"
	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"devconnect/internal/apperr"
)

// User is the credential record. The password hash never leaves the server.
type User struct {
	ID                string    `gorm:"primaryKey;type:text" json:"_id"`
	Name              string    `gorm:"not null" json:"name"`
	Email             string    `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Avatar            string    `json:"avatar"`
	EncryptedPassword string    `gorm:"not null" json:"-"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"date,omitzero"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"-"`
}

// BeforeCreate assigns the identifier.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ErrUserExists is returned when attempting to register an email that is already taken.
var ErrUserExists = apperr.Validation(apperr.FieldError{Msg: "User already exists"})

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = apperr.Validation(apperr.FieldError{Msg: "Invalid Credentials"})

// ErrUserNotFound is returned when a user lookup fails.
var ErrUserNotFound = gorm.ErrRecordNotFound

// ErrAccountNotFound is returned when an authenticated identity no longer has
// an account, e.g. a token issued before the account was deleted.
var ErrAccountNotFound = apperr.NotFound("User not found")

// bcrypt hash of "dummy", compared against on unknown emails so login timing
// does not reveal whether an account exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var emailFolder = cases.Fold()

// NormalizeEmail trims and case-folds an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return emailFolder.String(strings.TrimSpace(email))
}

// GravatarURL returns the avatar URL for an email (200px, pg rating, mystery-man fallback).
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(NormalizeEmail(email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=mm&r=pg&s=200", sum)
}

// ParseID validates that id is in the store's identifier format.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", apperr.InvalidIdentifier("Invalid user id")
	}
	return parsed.String(), nil
}

// IsValidEmail reports whether email is a bare address.
func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email, ".")
}

// ValidateRegistration checks the registration rules before any store access.
func ValidateRegistration(in RegisterInput, minPasswordLength int) error {
	var v apperr.Validator
	v.Required("name", in.Name, "Name is required")
	v.Check(IsValidEmail(strings.TrimSpace(in.Email)), "email", in.Email, "Please include a valid email")
	v.Check(len(in.Password) >= minPasswordLength, "password", nil,
		fmt.Sprintf("Please enter a password with %d or more characters", minPasswordLength))
	return v.Err()
}

// HashPassword returns the salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := crypto.GeneratePasswordHash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// FindByEmail retrieves a user by email.
func FindByEmail(db *gorm.DB, email string) (*User, error) {
	var user User
	if err := db.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID retrieves a user by ID.
func FindByID(db *gorm.DB, id string) (*User, error) {
	parsed, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var user User
	if err := db.Where("id = ?", parsed).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOwner loads the account acting on a request. A missing account yields
// ErrAccountNotFound.
func FindOwner(db *gorm.DB, id string) (*User, error) {
	user, err := FindByID(db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	return user, err
}

// Register validates input, creates the user and returns it.
func Register(db *gorm.DB, logger *slog.Logger, in RegisterInput, minPasswordLength int) (*User, error) {
	if err := ValidateRegistration(in, minPasswordLength); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	return Insert(db, logger, in.Name, in.Email, hashed)
}

// Insert stores a user whose password is already hashed. It returns
// ErrUserExists if the email is taken.
func Insert(db *gorm.DB, logger *slog.Logger, name, email, encryptedPassword string) (*User, error) {
	email = NormalizeEmail(email)

	if _, err := FindByEmail(db, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := User{
		Name:              strings.TrimSpace(name),
		Email:             email,
		Avatar:            GravatarURL(email),
		EncryptedPassword: encryptedPassword,
	}

	err := sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("User registered", slog.String("userID", user.ID))
	return &user, nil
}

// Authenticate checks credentials and returns the matching user. Unknown
// emails and wrong passwords produce the same error.
func Authenticate(db *gorm.DB, logger *slog.Logger, in LoginInput) (*User, error) {
	var v apperr.Validator
	v.Check(IsValidEmail(strings.TrimSpace(in.Email)), "email", in.Email, "Please include a valid email")
	v.Required("password", in.Password, "Password is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	user, err := FindByEmail(db, in.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		crypto.VerifyPassword(dummyHash, in.Password)
		logger.Debug("User not found during login")
		return nil, ErrInvalidCredentials
	}

	if !crypto.VerifyPassword(user.EncryptedPassword, in.Password) {
		logger.Debug("Invalid password attempt", slog.String("userID", user.ID))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword updates a user's password given their email.
func ChangePassword(db *gorm.DB, logger *slog.Logger, email, password string, minPasswordLength int) error {
	if len(password) < minPasswordLength {
		return apperr.Validation(apperr.FieldError{
			Msg:   fmt.Sprintf("Please enter a password with %d or more characters", minPasswordLength),
			Param: "password",
		})
	}

	user, err := FindByEmail(db, email)
	if err != nil {
		return err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}

	return sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Model(user).Update("encrypted_password", hashed).Error
	})
}

// DeleteByID removes a user row. It is called inside the account deletion transaction.
func DeleteByID(tx *gorm.DB, id string) error {
	return tx.Where("id = ?", id).Delete(&User{}).Error
}

// Count returns the number of registered users.
func Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&User{}).Count(&count).Error
	return count, err
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
