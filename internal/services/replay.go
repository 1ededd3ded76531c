package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/repo"
)

// DefaultReplayTTL is used when ReplayStore.TTL is unset.
const DefaultReplayTTL = 24 * time.Hour

// ReplayStore maps a client Idempotency-Key, scoped by user and queue, to
// the selection it produced.
type ReplayStore struct {
	DB  *gorm.DB
	TTL time.Duration
}

// Exists reports whether a live record is stored for the key. Lookup
// failures read as "no record".
func (s *ReplayStore) Exists(ctx context.Context, userID, queueID, key string, now time.Time) (bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, queueID, key, now)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return rec != nil, nil
}

// Lookup returns the selection stored for the key, or (nil, nil) when none
// is stored or the selection is gone.
func (s *ReplayStore) Lookup(ctx context.Context, userID, queueID, key string) (*domain.Selection, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, queueID, key, time.Now().UTC())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	sel, err := repo.GetSelection(ctx, s.DB, rec.SelectionID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return sel, nil
}

// Remember stores selectionID under the key. A concurrent writer for the
// same key is not an error.
func (s *ReplayStore) Remember(ctx context.Context, userID, queueID, key, selectionID string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultReplayTTL
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, queueID, key, selectionID, http.StatusCreated, ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// Purge deletes expired records.
func (s *ReplayStore) Purge(ctx context.Context, now time.Time) (int64, error) {
	return repo.PurgeExpiredIdempotency(ctx, s.DB, now)
}
