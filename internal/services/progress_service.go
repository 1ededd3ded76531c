// Package services – ProgressService
//
// This file implements the progress reader. It never writes: a user with no
// progress row yet gets a zero view computed from the queue's live group
// count. Rows are created only by SelectionService.Record.
package services

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/repo"
)

// ProgressView is a user's completion state in one queue.
type ProgressView struct {
	QueueID            string  `json:"queue_id"`
	UserID             string  `json:"user_id"`
	CompletedGroups    int     `json:"completed_groups"`
	TotalGroups        int     `json:"total_groups"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

// ProgressService reads per-user progress.
type ProgressService struct {
	DB *gorm.DB
}

// Percentage returns completed/total*100 rounded to two decimals, and 0
// when total is 0.
func Percentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(completed) / float64(total) * 100
	return math.Round(p*100) / 100
}

func newView(queueID, userID string, completed, total int) ProgressView {
	return ProgressView{
		QueueID:            queueID,
		UserID:             userID,
		CompletedGroups:    completed,
		TotalGroups:        total,
		ProgressPercentage: Percentage(completed, total),
	}
}

// Get returns userID's progress in queueID.
func (s *ProgressService) Get(ctx context.Context, queueID, userID string) (*ProgressView, error) {
	q, err := repo.GetQueue(ctx, s.DB, queueID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}
	row, err := repo.GetProgress(ctx, s.DB, queueID, userID)
	if err != nil {
		if isNotFound(err) {
			v := newView(queueID, userID, 0, q.GroupCount)
			return &v, nil
		}
		return nil, err
	}
	v := newView(queueID, userID, row.CompletedGroups, row.TotalGroups)
	return &v, nil
}

// All returns every stored progress row, restricted to queueID when it is
// non-empty. Users without a row are not listed.
func (s *ProgressService) All(ctx context.Context, queueID string) ([]ProgressView, error) {
	if queueID != "" {
		if _, err := repo.GetQueue(ctx, s.DB, queueID); err != nil {
			if isNotFound(err) {
				return nil, ErrQueueNotFound
			}
			return nil, err
		}
	}
	rows, err := repo.ListProgress(ctx, s.DB, queueID)
	if err != nil {
		return nil, err
	}
	out := make([]ProgressView, 0, len(rows))
	for _, r := range rows {
		out = append(out, newView(r.QueueID, r.UserID, r.CompletedGroups, r.TotalGroups))
	}
	return out, nil
}
