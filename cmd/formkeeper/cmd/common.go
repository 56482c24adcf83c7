package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/solatis/formkeeper/internal/core/cache"
	"github.com/solatis/formkeeper/internal/core/db"
	"github.com/solatis/formkeeper/internal/questionset"
	"github.com/solatis/formkeeper/internal/types"
	"github.com/solatis/formkeeper/internal/validate"
)

// openDatabase opens the configured database. When migrated is true every
// embedded migration must already be applied.
func openDatabase(ctx context.Context, migrated bool) (*sqlx.DB, *db.Queries, error) {
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("database URL required (--db-url or FK_DATABASE_URL)")
	}
	database, err := db.Open(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if migrated {
		if err := db.RequireMigrated(ctx, database); err != nil {
			database.Close()
			return nil, nil, err
		}
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return database, queries, nil
}

// openSetStore wraps the database store with the Redis cache when one is
// configured. The returned func closes the Redis client.
func openSetStore(ctx context.Context, queries *db.Queries) (*cache.CachedStore, func()) {
	store := db.NewQuestionSetStore(queries)
	if !cfg.Cache.Enabled() {
		return cache.NewCachedStore(store, nil), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, continuing with cache errors logged", "addr", cfg.Cache.RedisAddr, "error", err)
	}
	return cache.NewCachedStore(store, cache.NewRedisCache(client, cfg.Cache.TTL)), func() { client.Close() }
}

// validatorOptions derives validator settings from the evaluation config.
func validatorOptions() ([]validate.Option, error) {
	loc, err := cfg.Evaluation.Location()
	if err != nil {
		return nil, err
	}
	return []validate.Option{
		validate.WithLocation(loc),
		validate.WithLocale(cfg.Evaluation.Locale),
		validate.WithRegexTimeout(cfg.Evaluation.RegexTimeout),
	}, nil
}

func loadSetFile(path string) (*types.QuestionSet, error) {
	loader, err := questionset.DefaultLoader()
	if err != nil {
		return nil, err
	}
	return loader.LoadFile(path)
}

// loadAnswersFile reads answers from path, or stdin when path is "-".
func loadAnswersFile(path string) (types.Answers, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	return questionset.LoadAnswers(data)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
