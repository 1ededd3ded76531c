package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/domain"
)

// GetGroupByName fetches the live group named name inside a queue.
func GetGroupByName(ctx context.Context, db *gorm.DB, queueID, name string) (*domain.ImageGroup, error) {
	var g domain.ImageGroup
	err := db.WithContext(ctx).
		Where("queue_id = ? AND name = ?", queueID, name).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// MaxGroupOrder returns the highest display order ever assigned in the
// queue, soft-deleted groups included, or 0 when there is none.
func MaxGroupOrder(ctx context.Context, db *gorm.DB, queueID string) (int, error) {
	var max int
	err := db.WithContext(ctx).Unscoped().
		Model(&domain.ImageGroup{}).
		Where("queue_id = ?", queueID).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max).Error
	return max, err
}

// GetOrCreateGroup returns the group named name in the queue, creating it at
// the next display order if missing. The caller must hold the queue's
// admission lock; two unserialized callers could both miss and race on the
// unique (queue_id, name) index.
func GetOrCreateGroup(ctx context.Context, db *gorm.DB, queueID, name string) (*domain.ImageGroup, bool, error) {
	g, err := GetGroupByName(ctx, db, queueID, name)
	if err == nil {
		return g, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	max, err := MaxGroupOrder(ctx, db, queueID)
	if err != nil {
		return nil, false, err
	}
	g = &domain.ImageGroup{
		ID:           uuid.NewString(),
		QueueID:      queueID,
		Name:         name,
		DisplayOrder: max + 1,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, false, err
	}
	return g, true, nil
}

// IncrementGroupImageCount adds delta to the group's image counter in place.
func IncrementGroupImageCount(ctx context.Context, db *gorm.DB, groupID string, delta int) error {
	return db.WithContext(ctx).Model(&domain.ImageGroup{}).
		Where("id = ?", groupID).
		Update("image_count", gorm.Expr("image_count + ?", delta)).Error
}

// ListGroups returns the live groups of a queue in display order.
func ListGroups(ctx context.Context, db *gorm.DB, queueID string) ([]domain.ImageGroup, error) {
	var out []domain.ImageGroup
	err := db.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("display_order ASC").
		Find(&out).Error
	return out, err
}

// NextUnselectedGroup returns the lowest-ordered live group of the queue in
// which userID has not recorded a selection yet.
func NextUnselectedGroup(ctx context.Context, db *gorm.DB, queueID, userID string) (*domain.ImageGroup, error) {
	picked := db.Model(&domain.Selection{}).
		Select("group_id").
		Where("queue_id = ? AND user_id = ?", queueID, userID)

	var g domain.ImageGroup
	err := db.WithContext(ctx).
		Where("queue_id = ? AND id NOT IN (?)", queueID, picked).
		Order("display_order ASC").
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}
