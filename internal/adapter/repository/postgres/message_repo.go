package postgres

import (
	"context"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/postgres/generated"
)

// MessageRepository implements usecase.MessageRepository.
type MessageRepository struct {
	pool    txBeginner
	queries *generated.Queries
}

type txBeginner interface {
	generated.DBTX
	pgxPool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool txBeginner) *MessageRepository {
	return &MessageRepository{pool: pool, queries: generated.New(pool)}
}

// ListByPhone returns the most recent limit messages of a conversation, oldest first.
func (r *MessageRepository) ListByPhone(ctx context.Context, phone string, limit int) ([]domain.Message, error) {
	rows, err := r.queries.ListMessagesByPhone(ctx, generated.ListMessagesByPhoneParams{
		Phone: phone,
		Limit: int32(limit),
	})
	if err != nil {
		return nil, err
	}

	msgs := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, domain.Message{
			Timestamp: timestamptzToTime(row.SentAt),
			ID:        row.ID,
			AltID:     textOrEmpty(row.AltID),
			Phone:     row.Phone,
			Direction: domain.MessageDirection(row.Direction),
			Status:    domain.MessageStatus(row.Status),
			Body:      row.Body,
		})
	}

	return msgs, nil
}

// Save upserts msg. When the server assigned a new id, the row stored under previousID is
// replaced in the same transaction.
func (r *MessageRepository) Save(ctx context.Context, previousID string, msg domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	queries := r.queries.WithTx(tx)

	if previousID != "" && previousID != msg.ID {
		if err := queries.DeleteMessage(ctx, previousID); err != nil {
			return err
		}
	}

	err = queries.UpsertMessage(ctx, generated.UpsertMessageParams{
		ID:        msg.ID,
		AltID:     toText(msg.AltID),
		Phone:     msg.Phone,
		Direction: string(msg.Direction),
		Status:    string(msg.Status),
		Body:      msg.Body,
		SentAt:    timeToPgTimestamptz(msg.Timestamp),
	})
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
