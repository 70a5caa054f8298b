// ABOUTME: Course persistence for the SQLite store

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateCourse inserts a course. Names are unique.
func (s *SQLiteStore) CreateCourse(ctx context.Context, course *Course) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, name, category, created_at) VALUES (?, ?, ?, ?)`,
		course.ID, course.Name, course.Category, formatTime(course.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCourse
		}
		return fmt.Errorf("inserting course: %w", err)
	}

	s.logger.Debug("course created", "course_id", course.ID, "name", course.Name)
	return nil
}

// GetCourse loads a course by ID.
func (s *SQLiteStore) GetCourse(ctx context.Context, id string) (*Course, error) {
	return s.getCourse(ctx, "id = ?", id)
}

// GetCourseByName loads a course by its unique name.
func (s *SQLiteStore) GetCourseByName(ctx context.Context, name string) (*Course, error) {
	return s.getCourse(ctx, "name = ?", name)
}

func (s *SQLiteStore) getCourse(ctx context.Context, where string, arg any) (*Course, error) {
	var course Course
	var createdAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, category, created_at FROM courses WHERE `+where,
		arg).Scan(&course.ID, &course.Name, &course.Category, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying course: %w", err)
	}

	course.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing course created_at: %w", err)
	}
	return &course, nil
}

// ListCourses returns all courses ordered by name.
func (s *SQLiteStore) ListCourses(ctx context.Context) ([]*Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category, created_at FROM courses ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var courses []*Course
	for rows.Next() {
		var course Course
		var createdAt string
		if err := rows.Scan(&course.ID, &course.Name, &course.Category, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		course.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing course created_at: %w", err)
		}
		courses = append(courses, &course)
	}
	return courses, rows.Err()
}
