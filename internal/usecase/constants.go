package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultSnapshotTTL is how long a loaded snapshot is served from cache
	DefaultSnapshotTTL = 30 * time.Second

	// SnapshotCacheKey is the cache key of the serialized snapshot
	SnapshotCacheKey = "propledger:snapshot"

	// ChatHistoryLimit bounds the messages loaded when a conversation opens
	ChatHistoryLimit = 500
)
