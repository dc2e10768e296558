package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hapipet/internal/db"
	"hapipet/internal/entities"
)

type MessageRepository interface {
	Create(ctx context.Context, m *db.Message) error
	GetByID(ctx context.Context, id string) (*db.Message, error)
	Conversation(ctx context.Context, userID, otherID string) ([]db.Message, error)
	Conversations(ctx context.Context, userID string) ([]entities.ConversationSummary, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
}

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *db.Message) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`, m.ID, m.SenderID, m.ReceiverID, m.Content).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting message: %w", err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*db.Message, error) {
	var (
		m      db.Message
		readAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, content, created_at, read_at FROM messages WHERE id = $1`, id).
		Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt, &readAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying message %s: %w", id, err)
	}
	if readAt.Valid {
		m.ReadAt = &readAt.Time
	}
	return &m, nil
}

// Conversation lists the messages exchanged by two users, oldest first.
func (r *messageRepository) Conversation(ctx context.Context, userID, otherID string) ([]db.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, content, created_at, read_at FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at`, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("error querying conversation: %w", err)
	}
	defer rows.Close()

	messages := []db.Message{}
	for rows.Next() {
		var (
			m      db.Message
			readAt sql.NullTime
		)
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt, &readAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		if readAt.Valid {
			m.ReadAt = &readAt.Time
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Conversations returns one entry per counterpart with the last message and the number of
// messages from that counterpart the user has not read, most recent conversation first.
func (r *messageRepository) Conversations(ctx context.Context, userID string) ([]entities.ConversationSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH mine AS (
			SELECT m.*, CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS other_id
			FROM messages m
			WHERE m.sender_id = $1 OR m.receiver_id = $1
		), last AS (
			SELECT DISTINCT ON (other_id) * FROM mine ORDER BY other_id, created_at DESC
		)
		SELECT l.id, l.sender_id, l.receiver_id, l.content, l.created_at, l.read_at, l.other_id, u.full_name,
		       (SELECT COUNT(*) FROM messages x
		        WHERE x.sender_id = l.other_id AND x.receiver_id = $1 AND x.read_at IS NULL)
		FROM last l
		JOIN users u ON u.id = l.other_id
		ORDER BY l.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	out := []entities.ConversationSummary{}
	for rows.Next() {
		var (
			c      entities.ConversationSummary
			readAt sql.NullTime
		)
		m := &c.LastMessage
		err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt, &readAt,
			&c.OtherUserID, &c.OtherUserName, &c.UnreadCount)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		if readAt.Valid {
			m.ReadAt = &readAt.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *messageRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET read_at = $2 WHERE id = $1 AND read_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("error marking message %s read: %w", id, err)
	}
	return nil
}
