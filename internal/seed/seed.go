// ABOUTME: Loads seed fixtures (profiles, users, courses) from a TOML file
// ABOUTME: Passwords are bcrypt-hashed on load; existing records are skipped

package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/totustuus/forum-api/internal/store"
)

// File is the fixture file layout:
//
//	[[profiles]]
//	name = "ROLE_USER"
//
//	[[users]]
//	name = "Ana"
//	email = "ana@example.com"
//	password = "s3cret"
//	profiles = ["ROLE_USER"]
//
//	[[courses]]
//	name = "Spring Boot"
//	category = "Programming"
type File struct {
	Profiles []ProfileFixture `toml:"profiles"`
	Users    []UserFixture    `toml:"users"`
	Courses  []CourseFixture  `toml:"courses"`
}

type ProfileFixture struct {
	Name string `toml:"name"`
}

type UserFixture struct {
	Name     string   `toml:"name"`
	Email    string   `toml:"email"`
	Password string   `toml:"password"`
	Profiles []string `toml:"profiles"`
}

type CourseFixture struct {
	Name     string `toml:"name"`
	Category string `toml:"category"`
}

// Load parses the fixture file at path.
func Load(path string) (*File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture file: %w", err)
	}
	return &f, nil
}

// Apply writes the fixtures into the store. Users whose email already
// exists and courses whose name already exists are skipped, so applying
// the same file twice is safe.
func Apply(ctx context.Context, s store.Store, f *File, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "seed")

	profilesByName := make(map[string]*store.Profile)
	for _, pf := range f.Profiles {
		p, err := s.EnsureProfile(ctx, pf.Name)
		if err != nil {
			return fmt.Errorf("ensuring profile %s: %w", pf.Name, err)
		}
		profilesByName[p.Name] = p
	}

	for _, uf := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(uf.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password for %s: %w", uf.Email, err)
		}

		user := &store.User{
			ID:           uuid.New().String(),
			Name:         uf.Name,
			Email:        uf.Email,
			PasswordHash: string(hash),
			CreatedAt:    time.Now(),
		}
		for _, name := range uf.Profiles {
			p, ok := profilesByName[name]
			if !ok {
				p, err = s.EnsureProfile(ctx, name)
				if err != nil {
					return fmt.Errorf("ensuring profile %s: %w", name, err)
				}
				profilesByName[name] = p
			}
			user.Profiles = append(user.Profiles, *p)
		}

		err = s.CreateUser(ctx, user)
		if errors.Is(err, store.ErrDuplicateEmail) {
			logger.Info("user already exists, skipping", "email", uf.Email)
			continue
		}
		if err != nil {
			return fmt.Errorf("creating user %s: %w", uf.Email, err)
		}
		logger.Info("user seeded", "email", uf.Email)
	}

	for _, cf := range f.Courses {
		course := &store.Course{
			ID:        uuid.New().String(),
			Name:      cf.Name,
			Category:  cf.Category,
			CreatedAt: time.Now(),
		}
		err := s.CreateCourse(ctx, course)
		if errors.Is(err, store.ErrDuplicateCourse) {
			logger.Info("course already exists, skipping", "name", cf.Name)
			continue
		}
		if err != nil {
			return fmt.Errorf("creating course %s: %w", cf.Name, err)
		}
		logger.Info("course seeded", "name", cf.Name)
	}

	return nil
}
