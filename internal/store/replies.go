// ABOUTME: Reply persistence, including solution marking with status update

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateReply inserts a reply and moves an unanswered topic to unsolved.
func (s *SQLiteStore) CreateReply(ctx context.Context, reply *Reply) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM topics WHERE id = ?`, reply.TopicID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTopicNotFound
	}
	if err != nil {
		return fmt.Errorf("querying topic status: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO replies (id, topic_id, message, author_id, solution, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reply.ID, reply.TopicID, reply.Message, reply.AuthorID,
		reply.Solution, formatTime(reply.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting reply: %w", err)
	}

	if status == TopicUnanswered {
		_, err = tx.ExecContext(ctx,
			`UPDATE topics SET status = ?, updated_at = ? WHERE id = ?`,
			TopicUnsolved, formatTime(reply.CreatedAt), reply.TopicID)
		if err != nil {
			return fmt.Errorf("updating topic status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reply: %w", err)
	}

	s.logger.Debug("reply created", "reply_id", reply.ID, "topic_id", reply.TopicID)
	return nil
}

// MarkSolution flags the reply as the topic's solution and marks the topic
// solved. Any previously marked solution is cleared.
func (s *SQLiteStore) MarkSolution(ctx context.Context, topicID, replyID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE replies SET solution = 1 WHERE id = ? AND topic_id = ?`,
		replyID, topicID)
	if err != nil {
		return fmt.Errorf("marking solution: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking solution update: %w", err)
	}
	if n == 0 {
		return ErrReplyNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE replies SET solution = 0 WHERE topic_id = ? AND id != ?`,
		topicID, replyID)
	if err != nil {
		return fmt.Errorf("clearing previous solution: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE topics SET status = ? WHERE id = ?`, TopicSolved, topicID)
	if err != nil {
		return fmt.Errorf("updating topic status: %w", err)
	}
	n, err = res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking topic update: %w", err)
	}
	if n == 0 {
		return ErrTopicNotFound
	}

	return tx.Commit()
}
