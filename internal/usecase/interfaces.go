package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/propledger/internal/domain"
)

// SnapshotRepository loads every record a ledger view derives from.
type SnapshotRepository interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// InvoiceRepository defines data access for invoices settled by payments.
type InvoiceRepository interface {
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Invoice, error)
	AddPaidAmount(ctx context.Context, tx Transaction, id string, amount decimal.Decimal, updatedAt time.Time) error
}

// PaymentRepository defines data access for payment transactions.
type PaymentRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, payment *domain.BulkPayment, createdAt time.Time) error
}

// MessageRepository defines data access for chat messages.
type MessageRepository interface {
	ListByPhone(ctx context.Context, phone string, limit int) ([]domain.Message, error)
	// Save upserts msg. previousID is the id the message was stored under before the server
	// confirmed it, or empty.
	Save(ctx context.Context, previousID string, msg domain.Message) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient database errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release frees a key whose request failed.
	Release(ctx context.Context, key string) error
}

// EventPublisher fans chat events out to connected clients.
type EventPublisher interface {
	Publish(ev domain.MessageEvent)
}
