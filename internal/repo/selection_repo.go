// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for selections
// and per-user progress.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-pickset-backend/internal/domain"
)

// FindSelection returns the user's selection in a group, or ErrNotFound.
func FindSelection(ctx context.Context, db *gorm.DB, userID, groupID string) (*domain.Selection, error) {
	var s domain.Selection
	err := db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSelection fetches a selection by ID.
func GetSelection(ctx context.Context, db *gorm.DB, id string) (*domain.Selection, error) {
	var s domain.Selection
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSelection inserts a selection. A violation of the
// (queue_id, user_id, group_id) unique index returns ErrDuplicate.
func CreateSelection(ctx context.Context, db *gorm.DB, queueID, userID, groupID, imageID string, duration *float64) (*domain.Selection, error) {
	s := &domain.Selection{
		ID:              uuid.NewString(),
		QueueID:         queueID,
		UserID:          userID,
		GroupID:         groupID,
		ImageID:         imageID,
		DurationSeconds: duration,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s, nil
}

// IncrementProgress creates the (queue, user) progress row with one
// completed group, or bumps completed_groups on an existing row. totalGroups
// is only written on insert.
func IncrementProgress(ctx context.Context, db *gorm.DB, queueID, userID string, totalGroups int) error {
	now := time.Now().UTC()
	row := &domain.UserProgress{
		ID:              uuid.NewString(),
		QueueID:         queueID,
		UserID:          userID,
		CompletedGroups: 1,
		TotalGroups:     totalGroups,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "queue_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"completed_groups": gorm.Expr("user_progress.completed_groups + 1"),
			"updated_at":       now,
		}),
	}).Create(row).Error
}

// GetProgress fetches the progress row for (queue, user), or ErrNotFound.
func GetProgress(ctx context.Context, db *gorm.DB, queueID, userID string) (*domain.UserProgress, error) {
	var p domain.UserProgress
	err := db.WithContext(ctx).
		Where("queue_id = ? AND user_id = ?", queueID, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProgress returns progress rows, optionally restricted to one queue,
// ordered by queue then user.
func ListProgress(ctx context.Context, db *gorm.DB, queueID string) ([]domain.UserProgress, error) {
	var out []domain.UserProgress
	q := db.WithContext(ctx).Order("queue_id ASC, user_id ASC")
	if queueID != "" {
		q = q.Where("queue_id = ?", queueID)
	}
	err := q.Find(&out).Error
	return out, err
}
