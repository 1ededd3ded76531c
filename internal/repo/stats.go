// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds the counter helpers that keep the
// denormalized group and queue totals equal to the live row counts.
//
// Counts always come from the rows themselves (soft-deleted rows excluded
// by GORM's default scope); the stored counters are overwritten, never
// incremented, so a previous drift heals on the next recount.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/domain"
)

// CountGroupImages returns the number of live images in a group.
func CountGroupImages(ctx context.Context, db *gorm.DB, groupID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Image{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, err
}

// CountQueueGroups returns the number of live groups in a queue.
func CountQueueGroups(ctx context.Context, db *gorm.DB, queueID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ImageGroup{}).Where("queue_id = ?", queueID).Count(&n).Error
	return n, err
}

// CountQueueImages returns the number of live images in a queue.
func CountQueueImages(ctx context.Context, db *gorm.DB, queueID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Image{}).Where("queue_id = ?", queueID).Count(&n).Error
	return n, err
}

// RecountGroup overwrites the group's image_count with the live count and
// returns it.
func RecountGroup(ctx context.Context, db *gorm.DB, groupID string) (int64, error) {
	n, err := CountGroupImages(ctx, db, groupID)
	if err != nil {
		return 0, err
	}
	err = db.WithContext(ctx).Model(&domain.ImageGroup{}).
		Where("id = ?", groupID).
		Update("image_count", n).Error
	return n, err
}

// RecountQueue overwrites group_count and total_image_count of the queue
// with live counts and returns them.
func RecountQueue(ctx context.Context, db *gorm.DB, queueID string) (groups, images int64, err error) {
	if groups, err = CountQueueGroups(ctx, db, queueID); err != nil {
		return 0, 0, err
	}
	if images, err = CountQueueImages(ctx, db, queueID); err != nil {
		return 0, 0, err
	}
	err = db.WithContext(ctx).Model(&domain.Queue{}).
		Where("id = ?", queueID).
		Updates(map[string]any{
			"group_count":       groups,
			"total_image_count": images,
		}).Error
	return groups, images, err
}

// RecountQueueGroups recounts every live group of the queue, then the
// queue itself.
func RecountQueueGroups(ctx context.Context, db *gorm.DB, queueID string) (groups, images int64, err error) {
	var ids []string
	if err = db.WithContext(ctx).Model(&domain.ImageGroup{}).
		Where("queue_id = ?", queueID).
		Pluck("id", &ids).Error; err != nil {
		return 0, 0, err
	}
	for _, id := range ids {
		if _, err = RecountGroup(ctx, db, id); err != nil {
			return 0, 0, err
		}
	}
	return RecountQueue(ctx, db, queueID)
}
