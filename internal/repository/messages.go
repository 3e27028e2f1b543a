package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/dealmatch/internal/entity"
)

const messageColumns = `id, deal_id, sender_id, receiver_id, content, message_type, is_read, created_at`

func scanMessage(row pgx.Row) (*entity.Message, error) {
	var m entity.Message
	var kind string
	if err := row.Scan(&m.ID, &m.DealID, &m.SenderID, &m.ReceiverID, &m.Content, &kind, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.MessageType = entity.MessageType(kind)
	return &m, nil
}

// CreateMessage appends a message to a deal thread.
func (r *PGXStore) CreateMessage(ctx context.Context, m entity.Message) (*entity.Message, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO messages (id, deal_id, sender_id, receiver_id, content, message_type, is_read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+messageColumns,
		uuid.NewString(), m.DealID, m.SenderID, m.ReceiverID, m.Content, string(m.MessageType), m.IsRead, time.Now().UTC())

	created, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return created, nil
}

// ListMessagesByDealID returns a deal thread, oldest first.
func (r *PGXStore) ListMessagesByDealID(ctx context.Context, dealID string) ([]entity.Message, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+messageColumns+` FROM messages WHERE deal_id = $1 ORDER BY created_at ASC`, dealID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return collect(rows, "message", scanMessage)
}

// ListMessagesForUser returns messages sent or received by the user, oldest first.
func (r *PGXStore) ListMessagesForUser(ctx context.Context, userID string) ([]entity.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE sender_id = $1 OR receiver_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return collect(rows, "message", scanMessage)
}

// MarkMessagesRead flags unread messages of a deal addressed to receiverID.
func (r *PGXStore) MarkMessagesRead(ctx context.Context, dealID, receiverID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE messages SET is_read = TRUE WHERE deal_id = $1 AND receiver_id = $2 AND NOT is_read`, dealID, receiverID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return cmd.RowsAffected(), nil
}
