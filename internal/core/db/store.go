package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/solatis/formkeeper/internal/types"
)

// QuestionSetRecord is a stored question set. List leaves Document empty.
type QuestionSetRecord struct {
	ID        types.QuestionSetID `db:"question_set_id"`
	Version   int                 `db:"version"`
	Document  []byte              `db:"document"`
	Checksum  string              `db:"checksum"`
	CreatedAt time.Time           `db:"created_at"`
	UpdatedAt time.Time           `db:"updated_at"`
}

// QuestionSetStore persists normalised question sets as JSON documents.
type QuestionSetStore struct {
	queries *Queries
	now     func() time.Time
}

// NewQuestionSetStore creates a store over loaded queries.
func NewQuestionSetStore(queries *Queries) *QuestionSetStore {
	return &QuestionSetStore{queries: queries, now: time.Now}
}

// Checksum is the hex SHA-256 of a question set's JSON encoding.
func Checksum(document []byte) string {
	sum := sha256.Sum256(document)
	return hex.EncodeToString(sum[:])
}

// Put inserts or replaces a question set. changed is false when the stored
// document already has the same checksum, in which case nothing is written.
func (s *QuestionSetStore) Put(ctx context.Context, set *types.QuestionSet) (rec QuestionSetRecord, changed bool, err error) {
	if set.QuestionSetID == "" {
		return QuestionSetRecord{}, false, fmt.Errorf("put question set: id required")
	}

	doc, err := json.Marshal(set)
	if err != nil {
		return QuestionSetRecord{}, false, fmt.Errorf("encode question set %s: %w", set.QuestionSetID, err)
	}
	sum := Checksum(doc)

	existing, err := s.get(ctx, set.QuestionSetID)
	switch {
	case err == nil && existing.Checksum == sum:
		return existing, false, nil
	case err != nil && !errors.Is(err, types.ErrQuestionSetNotFound):
		return QuestionSetRecord{}, false, err
	}

	now := s.now().UTC()
	_, err = s.queries.Exec(ctx, "upsert-question-set",
		string(set.QuestionSetID), set.Version, string(doc), sum, now, now)
	if err != nil {
		return QuestionSetRecord{}, false, fmt.Errorf("store question set %s: %w", set.QuestionSetID, err)
	}

	rec = QuestionSetRecord{
		ID:        set.QuestionSetID,
		Version:   set.Version,
		Document:  doc,
		Checksum:  sum,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing.ID != "" {
		rec.CreatedAt = existing.CreatedAt
	}
	return rec, true, nil
}

// Get loads and decodes a question set.
func (s *QuestionSetStore) Get(ctx context.Context, id types.QuestionSetID) (*types.QuestionSet, error) {
	rec, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	var set types.QuestionSet
	if err := json.Unmarshal(rec.Document, &set); err != nil {
		return nil, fmt.Errorf("decode question set %s: %w", id, err)
	}
	return &set, nil
}

func (s *QuestionSetStore) get(ctx context.Context, id types.QuestionSetID) (QuestionSetRecord, error) {
	var rec QuestionSetRecord
	err := s.queries.Get(ctx, "get-question-set", &rec, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return QuestionSetRecord{}, fmt.Errorf("%w: %s", types.ErrQuestionSetNotFound, id)
	}
	if err != nil {
		return QuestionSetRecord{}, fmt.Errorf("load question set %s: %w", id, err)
	}
	return rec, nil
}

// List returns every stored question set ordered by id, without documents.
func (s *QuestionSetStore) List(ctx context.Context) ([]QuestionSetRecord, error) {
	var recs []QuestionSetRecord
	if err := s.queries.Select(ctx, "list-question-sets", &recs); err != nil {
		return nil, fmt.Errorf("list question sets: %w", err)
	}
	return recs, nil
}

// Delete removes a question set.
func (s *QuestionSetStore) Delete(ctx context.Context, id types.QuestionSetID) error {
	res, err := s.queries.Exec(ctx, "delete-question-set", string(id))
	if err != nil {
		return fmt.Errorf("delete question set %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete question set %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", types.ErrQuestionSetNotFound, id)
	}
	return nil
}
