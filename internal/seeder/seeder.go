// Package seeder loads demo accounts, profiles and posts from YAML fixtures.
package seeder

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"devconnect/internal/pkg/async"
	"devconnect/internal/posts"
	"devconnect/internal/profiles"
	"devconnect/internal/users"
)

//go:embed fixtures/default.yaml
var defaultFixtures []byte

// Fixtures is the top-level fixture document.
type Fixtures struct {
	Users []UserFixture `yaml:"users"`
}

// UserFixture describes one account and everything it owns.
type UserFixture struct {
	Name       string                     `yaml:"name"`
	Email      string                     `yaml:"email"`
	Password   string                     `yaml:"password"`
	Profile    *profiles.Input            `yaml:"profile"`
	Experience []profiles.ExperienceInput `yaml:"experience"`
	Education  []profiles.EducationInput  `yaml:"education"`
	Posts      []string                   `yaml:"posts"`
}

// Result summarises a seeding run.
type Result struct {
	Created int
	Skipped int
}

// Seeder writes fixtures through the regular store operations.
type Seeder struct {
	DB                *gorm.DB
	Logger            *slog.Logger
	MinPasswordLength int
	Workers           int
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, logger *slog.Logger, minPasswordLength int) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		DB:                db,
		Logger:            logger,
		MinPasswordLength: minPasswordLength,
		Workers:           runtime.NumCPU(),
	}
}

// DefaultFixtures returns the bundled demo fixtures.
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

// LoadFixtures reads fixtures from r.
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return LoadFixtures(f)
}

// ParseFixtures decodes a fixture document.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &fx, nil
}

// Seed creates every fixture user whose email is not registered yet. Password
// hashing runs concurrently; writes run in fixture order.
func (s *Seeder) Seed(ctx context.Context, fx *Fixtures) (Result, error) {
	start := time.Now()
	var result Result

	var pending []UserFixture
	for _, u := range fx.Users {
		if _, err := users.FindByEmail(s.DB, u.Email); err == nil {
			s.Logger.Info("Skipping existing user", slog.String("email", u.Email))
			result.Skipped++
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, fmt.Errorf("look up %s: %w", u.Email, err)
		}

		if err := users.ValidateRegistration(users.RegisterInput{Name: u.Name, Email: u.Email, Password: u.Password}, s.MinPasswordLength); err != nil {
			return result, fmt.Errorf("fixture %s: %w", u.Email, err)
		}
		pending = append(pending, u)
	}

	hashes, err := s.hashPasswords(ctx, pending)
	if err != nil {
		return result, err
	}

	for _, u := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.seedUser(u, hashes[u.Email]); err != nil {
			return result, fmt.Errorf("seed %s: %w", u.Email, err)
		}
		result.Created++
	}

	s.Logger.Info("Seeding completed",
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (s *Seeder) hashPasswords(ctx context.Context, pending []UserFixture) (map[string]string, error) {
	tasks := make([]async.Task[string], 0, len(pending))
	for _, u := range pending {
		password := u.Password
		tasks = append(tasks, async.Task[string]{
			Name: u.Email,
			Execute: func(context.Context) (string, error) {
				return users.HashPassword(password)
			},
		})
	}

	results := async.NewPool[string](s.Workers).Execute(ctx, tasks)
	hashes := make(map[string]string, len(results))
	for _, u := range pending {
		r, ok := results[u.Email]
		if !ok {
			return nil, fmt.Errorf("hash password for %s: %w", u.Email, context.Cause(ctx))
		}
		if r.Err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.Email, r.Err)
		}
		hashes[u.Email] = r.Data
	}
	return hashes, nil
}

func (s *Seeder) seedUser(u UserFixture, hash string) error {
	user, err := users.Insert(s.DB, s.Logger, u.Name, u.Email, hash)
	if err != nil {
		return err
	}

	if u.Profile != nil {
		if _, err := profiles.Upsert(s.DB, s.Logger, user.ID, *u.Profile); err != nil {
			return err
		}
		// Entries are listed newest first; each insert becomes the new head.
		for _, exp := range slices.Backward(u.Experience) {
			if _, err := profiles.AddExperience(s.DB, s.Logger, user.ID, exp); err != nil {
				return err
			}
		}
		for _, edu := range slices.Backward(u.Education) {
			if _, err := profiles.AddEducation(s.DB, s.Logger, user.ID, edu); err != nil {
				return err
			}
		}
	}

	for _, text := range u.Posts {
		if _, err := posts.Create(s.DB, s.Logger, user.ID, posts.TextInput{Text: text}); err != nil {
			return err
		}
	}
	return nil
}
