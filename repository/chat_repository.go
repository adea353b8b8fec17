package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
)

type ChatRepository struct {
	db *sql.DB
}

func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// AppendMessage stores msg and fills in its id and timestamp.
func (r *ChatRepository) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO chat_messages (session_id, sender, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`, msg.SessionID, msg.Sender, msg.Body).Scan(&msg.ID, &msg.CreatedAt)
}

// GetSessionMessages returns the last limit messages of a session in chronological order.
func (r *ChatRepository) GetSessionMessages(ctx context.Context, sessionID string, limit int) ([]*models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, sender, body, created_at FROM (
			SELECT id, session_id, sender, body, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent ORDER BY id ASC`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*models.ChatMessage, 0)
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

func (r *ChatRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
