// ABOUTME: User and profile persistence for the SQLite store
// ABOUTME: GetUser loads the user's profiles in the same call

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CreateUser inserts a user and its profile assignments.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, formatTime(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	for _, p := range user.Profiles {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO user_profiles (user_id, profile_id) VALUES (?, ?)`,
			user.ID, p.ID)
		if err != nil {
			return fmt.Errorf("assigning profile %s: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing user: %w", err)
	}

	s.logger.Debug("user created", "user_id", user.ID, "email", user.Email)
	return nil
}

// GetUser loads a user by ID, including profiles.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	return s.getUser(ctx, "id = ?", id)
}

// GetUserByEmail loads a user by email, including profiles.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUser(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUser(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE `+where,
		arg).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing user created_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name FROM profiles p
		 JOIN user_profiles up ON up.profile_id = p.id
		 WHERE up.user_id = ? ORDER BY p.name`,
		user.ID)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		user.Profiles = append(user.Profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}

	return &user, nil
}

// EnsureProfile returns the profile with the given name, creating it if it
// does not exist yet.
func (s *SQLiteStore) EnsureProfile(ctx context.Context, name string) (*Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM profiles WHERE name = ?`, name).Scan(&p.ID, &p.Name)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	p = Profile{ID: uuid.New().String(), Name: name}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name) VALUES (?, ?)`, p.ID, p.Name)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race to another creator; re-read.
			return s.EnsureProfile(ctx, name)
		}
		return nil, fmt.Errorf("inserting profile: %w", err)
	}
	return &p, nil
}

// AssignProfile grants a profile to a user. Assigning twice is a no-op.
func (s *SQLiteStore) AssignProfile(ctx context.Context, userID, profileID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_profiles (user_id, profile_id) VALUES (?, ?)`,
		userID, profileID)
	if err != nil {
		return fmt.Errorf("assigning profile: %w", err)
	}
	return nil
}
