package cache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/log"
	"github.com/solatis/formkeeper/internal/types"
)

type memCache struct {
	sets    map[types.QuestionSetID]*types.QuestionSet
	failGet bool
	failSet bool
	failDel bool
	deletes int
}

func newMemCache() *memCache {
	return &memCache{sets: map[types.QuestionSetID]*types.QuestionSet{}}
}

func (c *memCache) Get(_ context.Context, id types.QuestionSetID) (*types.QuestionSet, error) {
	if c.failGet {
		return nil, errors.New("cache down")
	}
	return c.sets[id], nil
}

func (c *memCache) Set(_ context.Context, set *types.QuestionSet) error {
	if c.failSet {
		return errors.New("cache down")
	}
	c.sets[set.QuestionSetID] = set
	return nil
}

func (c *memCache) Delete(_ context.Context, id types.QuestionSetID) error {
	c.deletes++
	if c.failDel {
		return errors.New("cache down")
	}
	delete(c.sets, id)
	return nil
}

type memStore struct {
	sets  map[types.QuestionSetID]*types.QuestionSet
	gets  int
	dirty bool
}

func (s *memStore) Get(_ context.Context, id types.QuestionSetID) (*types.QuestionSet, error) {
	s.gets++
	set, ok := s.sets[id]
	if !ok {
		return nil, types.ErrQuestionSetNotFound
	}
	return set, nil
}

func (s *memStore) Put(_ context.Context, set *types.QuestionSet) (db.QuestionSetRecord, bool, error) {
	s.sets[set.QuestionSetID] = set
	return db.QuestionSetRecord{ID: set.QuestionSetID}, s.dirty, nil
}

func (s *memStore) Delete(_ context.Context, id types.QuestionSetID) error {
	if _, ok := s.sets[id]; !ok {
		return types.ErrQuestionSetNotFound
	}
	delete(s.sets, id)
	return nil
}

func newStore(sets ...*types.QuestionSet) *memStore {
	s := &memStore{sets: map[types.QuestionSetID]*types.QuestionSet{}, dirty: true}
	for _, set := range sets {
		s.sets[set.QuestionSetID] = set
	}
	return s
}

var benefits = &types.QuestionSet{QuestionSetID: "qs-benefits", Version: 1}

func TestCachedStore_GetFillsCache(t *testing.T) {
	ctx := context.Background()
	store, c := newStore(benefits), newMemCache()
	cs := NewCachedStore(store, c)

	for range 3 {
		got, err := cs.Get(ctx, "qs-benefits")
		require.NoError(t, err)
		assert.Equal(t, benefits, got)
	}
	assert.Equal(t, 1, store.gets, "store read more than once")
	assert.Contains(t, c.sets, types.QuestionSetID("qs-benefits"))
}

func TestCachedStore_CacheFailuresFallThrough(t *testing.T) {
	store := newStore(benefits)
	cs := NewCachedStore(store, &memCache{sets: map[types.QuestionSetID]*types.QuestionSet{}, failGet: true, failSet: true})

	got, err := cs.Get(context.Background(), "qs-benefits")
	require.NoError(t, err)
	assert.Equal(t, benefits, got)
}

func TestCachedStore_NotFound(t *testing.T) {
	cs := NewCachedStore(newStore(), nil)
	_, err := cs.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrQuestionSetNotFound)
}

func TestCachedStore_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("changed refreshes cache", func(t *testing.T) {
		c := newMemCache()
		c.sets["qs-benefits"] = &types.QuestionSet{QuestionSetID: "qs-benefits", Version: 0}
		cs := NewCachedStore(newStore(), c)

		_, changed, err := cs.Put(ctx, benefits)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 1, c.sets["qs-benefits"].Version)
	})

	t.Run("unchanged leaves cache alone", func(t *testing.T) {
		c := newMemCache()
		store := newStore()
		store.dirty = false
		cs := NewCachedStore(store, c)

		_, changed, err := cs.Put(ctx, benefits)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, c.sets)
	})

	t.Run("failed refresh evicts", func(t *testing.T) {
		c := newMemCache()
		c.failSet = true
		cs := NewCachedStore(newStore(), c)

		_, _, err := cs.Put(ctx, benefits)
		require.NoError(t, err)
		assert.Equal(t, 1, c.deletes)
	})

	t.Run("failed eviction is logged", func(t *testing.T) {
		c := newMemCache()
		c.failSet, c.failDel = true, true
		cs := NewCachedStore(newStore(), c)

		var buf bytes.Buffer
		logCtx := log.NewContext(ctx, slog.New(slog.NewJSONHandler(&buf, nil)))

		_, changed, err := cs.Put(logCtx, benefits)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Contains(t, buf.String(), "question set cache refresh failed")
		assert.Contains(t, buf.String(), "question set cache eviction failed")
	})
}

func TestCachedStore_Delete(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	c.sets["qs-benefits"] = benefits
	store := newStore(benefits)
	cs := NewCachedStore(store, c)

	require.NoError(t, cs.Delete(ctx, "qs-benefits"))
	assert.Empty(t, store.sets)
	assert.Empty(t, c.sets)

	err := cs.Delete(ctx, "qs-benefits")
	assert.ErrorIs(t, err, types.ErrQuestionSetNotFound)
}

func TestRedisCache_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })
	rc := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, err := rc.Get(ctx, "qs-benefits")
	assert.Error(t, err)

	// The cached store still serves from the durable store.
	got, err := NewCachedStore(newStore(benefits), rc).Get(ctx, "qs-benefits")
	require.NoError(t, err)
	assert.Equal(t, benefits, got)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "formkeeper:question_set:qs-1", Key("qs-1"))
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	n := Nop()
	require.NoError(t, n.Set(ctx, benefits))
	got, err := n.Get(ctx, benefits.QuestionSetID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}
