package cache

import (
	"context"

	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/log"
	"github.com/solatis/formkeeper/internal/types"
)

// Store is the durable question-set store behind the cache.
type Store interface {
	Get(ctx context.Context, id types.QuestionSetID) (*types.QuestionSet, error)
	Put(ctx context.Context, set *types.QuestionSet) (db.QuestionSetRecord, bool, error)
	Delete(ctx context.Context, id types.QuestionSetID) error
}

// CachedStore reads through the cache and writes through to the store.
// Cache failures are logged and never fail a request.
type CachedStore struct {
	store Store
	cache QuestionSetCache
}

// NewCachedStore wraps store; a nil cache disables caching.
func NewCachedStore(store Store, cache QuestionSetCache) *CachedStore {
	if cache == nil {
		cache = Nop()
	}
	return &CachedStore{store: store, cache: cache}
}

// Get returns the cached set, falling back to the store and filling the cache.
func (s *CachedStore) Get(ctx context.Context, id types.QuestionSetID) (*types.QuestionSet, error) {
	logger := log.WithContext(ctx)

	set, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.Warn("question set cache read failed", "question_set_id", id, "error", err)
	}
	if set != nil {
		return set, nil
	}

	set, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, set); err != nil {
		logger.Warn("question set cache fill failed", "question_set_id", id, "error", err)
	}
	return set, nil
}

// Put stores set and refreshes its cache entry when the document changed.
func (s *CachedStore) Put(ctx context.Context, set *types.QuestionSet) (db.QuestionSetRecord, bool, error) {
	rec, changed, err := s.store.Put(ctx, set)
	if err != nil {
		return rec, changed, err
	}
	if changed {
		if err := s.cache.Set(ctx, set); err != nil {
			logger := log.WithContext(ctx)
			logger.Warn("question set cache refresh failed", "question_set_id", set.QuestionSetID, "error", err)
			// A stale entry would outlive the write.
			if err := s.cache.Delete(ctx, set.QuestionSetID); err != nil {
				logger.Warn("question set cache eviction failed", "question_set_id", set.QuestionSetID, "error", err)
			}
		}
	}
	return rec, changed, nil
}

// Delete removes the set from the store, then evicts its cache entry.
func (s *CachedStore) Delete(ctx context.Context, id types.QuestionSetID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		log.WithContext(ctx).Warn("question set cache eviction failed", "question_set_id", id, "error", err)
	}
	return nil
}
