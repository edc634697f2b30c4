package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/metrics"
)

// SnapshotLoader serves the record snapshot from cache, loading it from the repository on a miss.
// Cache failures never fail a read; they are logged and the repository is used instead.
type SnapshotLoader struct {
	repo    SnapshotRepository
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewSnapshotLoader creates a new SnapshotLoader. cache may be nil to disable caching.
func NewSnapshotLoader(repo SnapshotRepository, cache Cache, ttl time.Duration, m *metrics.Metrics) *SnapshotLoader {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotLoader{repo: repo, cache: cache, ttl: ttl, metrics: m}
}

// Load returns the current snapshot.
func (l *SnapshotLoader) Load(ctx context.Context) (*domain.Snapshot, error) {
	log := zerolog.Ctx(ctx)

	if l.cache != nil {
		data, err := l.cache.Get(ctx, SnapshotCacheKey)
		switch {
		case err == nil:
			var s domain.Snapshot
			decodeErr := json.Unmarshal(data, &s)
			if decodeErr == nil {
				l.hit()
				return &s, nil
			}
			log.Warn().Err(decodeErr).Msg("discarding unreadable cached snapshot")
		case !errors.Is(err, ErrCacheMiss):
			log.Warn().Err(err).Msg("snapshot cache unavailable")
		}
		l.miss()
	}

	s, err := l.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		data, err := json.Marshal(s)
		if err == nil {
			err = l.cache.Set(ctx, SnapshotCacheKey, data, l.ttl)
		}
		if err != nil {
			log.Warn().Err(err).Msg("failed to cache snapshot")
		}
	}

	return s, nil
}

// Invalidate drops the cached snapshot so the next Load sees fresh writes.
func (l *SnapshotLoader) Invalidate(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, SnapshotCacheKey); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to invalidate snapshot cache")
	}
}

func (l *SnapshotLoader) hit() {
	if l.metrics != nil {
		l.metrics.CacheHits.WithLabelValues("snapshot").Inc()
	}
}

func (l *SnapshotLoader) miss() {
	if l.metrics != nil {
		l.metrics.CacheMisses.WithLabelValues("snapshot").Inc()
	}
}
