// ABOUTME: Topic persistence: CRUD, filtered/paged listing, and detail joins

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// sortColumns whitelists ListTopics sort keys. Anything else falls back to
// created_at; filter values never reach the SQL as identifiers otherwise.
var sortColumns = map[string]string{
	"created_at": "t.created_at",
	"title":      "t.title",
}

// CreateTopic inserts a topic.
func (s *SQLiteStore) CreateTopic(ctx context.Context, topic *Topic) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topics (id, title, message, status, author_id, course_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		topic.ID, topic.Title, topic.Message, topic.Status, topic.AuthorID,
		topic.CourseID, formatTime(topic.CreatedAt), formatTime(topic.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting topic: %w", err)
	}

	s.logger.Debug("topic created", "topic_id", topic.ID, "author_id", topic.AuthorID)
	return nil
}

// GetTopic loads a bare topic row by ID.
func (s *SQLiteStore) GetTopic(ctx context.Context, id string) (*Topic, error) {
	var topic Topic
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, message, status, author_id, course_id, created_at, updated_at
		 FROM topics WHERE id = ?`, id).
		Scan(&topic.ID, &topic.Title, &topic.Message, &topic.Status,
			&topic.AuthorID, &topic.CourseID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying topic: %w", err)
	}

	if topic.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing topic created_at: %w", err)
	}
	if topic.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing topic updated_at: %w", err)
	}
	return &topic, nil
}

// GetTopicDetail loads a topic with author/course names and all replies.
func (s *SQLiteStore) GetTopicDetail(ctx context.Context, id string) (*TopicDetail, error) {
	var detail TopicDetail
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT t.id, t.title, t.message, t.status, t.author_id, t.course_id,
		        t.created_at, t.updated_at, u.name, c.name
		 FROM topics t
		 JOIN users u ON u.id = t.author_id
		 JOIN courses c ON c.id = t.course_id
		 WHERE t.id = ?`, id).
		Scan(&detail.ID, &detail.Title, &detail.Message, &detail.Status,
			&detail.AuthorID, &detail.CourseID, &createdAt, &updatedAt,
			&detail.AuthorName, &detail.CourseName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying topic detail: %w", err)
	}

	if detail.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing topic created_at: %w", err)
	}
	if detail.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing topic updated_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.topic_id, r.message, r.author_id, r.solution, r.created_at, u.name
		 FROM replies r
		 JOIN users u ON u.id = r.author_id
		 WHERE r.topic_id = ?
		 ORDER BY r.created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("querying replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reply ReplyDetail
		var replyCreated string
		if err := rows.Scan(&reply.ID, &reply.TopicID, &reply.Message,
			&reply.AuthorID, &reply.Solution, &replyCreated, &reply.AuthorName); err != nil {
			return nil, fmt.Errorf("scanning reply: %w", err)
		}
		if reply.CreatedAt, err = parseTime(replyCreated); err != nil {
			return nil, fmt.Errorf("parsing reply created_at: %w", err)
		}
		detail.Replies = append(detail.Replies, reply)
	}
	return &detail, rows.Err()
}

// ListTopics returns a page of topic summaries matching the filter, plus
// the total count of matches.
func (s *SQLiteStore) ListTopics(ctx context.Context, filter TopicFilter) ([]*TopicSummary, int, error) {
	where := "1=1"
	var args []any

	if filter.CourseName != "" {
		where += " AND c.name = ?"
		args = append(args, filter.CourseName)
	}
	if filter.Title != "" {
		where += " AND t.title LIKE ?"
		args = append(args, "%"+filter.Title+"%")
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM topics t JOIN courses c ON c.id = t.course_id WHERE `+where,
		args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting topics: %w", err)
	}

	sortCol, ok := sortColumns[filter.Sort]
	if !ok {
		sortCol = "t.created_at"
		filter.SortDesc = true
	}
	order := sortCol
	if filter.SortDesc {
		order += " DESC"
	}

	size := filter.Size
	if size <= 0 {
		size = 20
	}
	offset := filter.Page * size
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(
		`SELECT t.id, t.title, t.message, t.status, t.author_id, t.course_id,
		        t.created_at, t.updated_at, u.name, c.name
		 FROM topics t
		 JOIN users u ON u.id = t.author_id
		 JOIN courses c ON c.id = t.course_id
		 WHERE %s ORDER BY %s LIMIT ? OFFSET ?`, where, order)
	args = append(args, size, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	var topics []*TopicSummary
	for rows.Next() {
		var t TopicSummary
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.Title, &t.Message, &t.Status,
			&t.AuthorID, &t.CourseID, &createdAt, &updatedAt,
			&t.AuthorName, &t.CourseName); err != nil {
			return nil, 0, fmt.Errorf("scanning topic: %w", err)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, 0, fmt.Errorf("parsing topic created_at: %w", err)
		}
		if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, 0, fmt.Errorf("parsing topic updated_at: %w", err)
		}
		topics = append(topics, &t)
	}
	return topics, total, rows.Err()
}

// UpdateTopic rewrites a topic's title, message, status, and updated_at.
func (s *SQLiteStore) UpdateTopic(ctx context.Context, topic *Topic) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE topics SET title = ?, message = ?, status = ?, updated_at = ? WHERE id = ?`,
		topic.Title, topic.Message, topic.Status, formatTime(topic.UpdatedAt), topic.ID)
	if err != nil {
		return fmt.Errorf("updating topic: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return ErrTopicNotFound
	}
	return nil
}

// DeleteTopic removes a topic; replies cascade.
func (s *SQLiteStore) DeleteTopic(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting topic: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete: %w", err)
	}
	if n == 0 {
		return ErrTopicNotFound
	}

	s.logger.Debug("topic deleted", "topic_id", id)
	return nil
}
