package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/domain"
)

// SlotKey identifies an image position inside a queue.
type SlotKey struct {
	Folder string
	File   string
}

// CreateImage inserts img as-is. Unique violations on the slot or digest
// indexes are reported as ErrDuplicate.
func CreateImage(ctx context.Context, db *gorm.DB, img *domain.Image) error {
	if err := db.WithContext(ctx).Create(img).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// NextImageOrder returns the display order for the next image of a group:
// one past the highest order ever assigned there, soft-deleted images
// included, or 0 for an empty group. Orders are never reused.
func NextImageOrder(ctx context.Context, db *gorm.DB, groupID string) (int, error) {
	var next int
	err := db.WithContext(ctx).Unscoped().
		Model(&domain.Image{}).
		Where("group_id = ?", groupID).
		Select("COALESCE(MAX(display_order), -1) + 1").
		Scan(&next).Error
	return next, err
}

// GetImage fetches a live image by ID.
func GetImage(ctx context.Context, db *gorm.DB, id string) (*domain.Image, error) {
	var img domain.Image
	if err := db.WithContext(ctx).Where("id = ?", id).First(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

// GetImageBySlot fetches the live image at (queue, folder, file).
func GetImageBySlot(ctx context.Context, db *gorm.DB, queueID, folder, file string) (*domain.Image, error) {
	var img domain.Image
	err := db.WithContext(ctx).
		Where("queue_id = ? AND folder_name = ? AND file_name = ?", queueID, folder, file).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// GetImageByDigest fetches the live image of the queue with the given
// content digest.
func GetImageByDigest(ctx context.Context, db *gorm.DB, queueID, digest string) (*domain.Image, error) {
	var img domain.Image
	err := db.WithContext(ctx).
		Where("queue_id = ? AND content_digest = ?", queueID, digest).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// ListSlotKeys loads every occupied slot of the queue in one query.
func ListSlotKeys(ctx context.Context, db *gorm.DB, queueID string) (map[SlotKey]struct{}, error) {
	var rows []struct {
		FolderName string
		FileName   string
	}
	err := db.WithContext(ctx).Model(&domain.Image{}).
		Select("folder_name", "file_name").
		Where("queue_id = ?", queueID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[SlotKey]struct{}, len(rows))
	for _, r := range rows {
		out[SlotKey{Folder: r.FolderName, File: r.FileName}] = struct{}{}
	}
	return out, nil
}

// ListDigests loads every content digest stored for the queue.
func ListDigests(ctx context.Context, db *gorm.DB, queueID string) (map[string]struct{}, error) {
	var digests []string
	err := db.WithContext(ctx).Model(&domain.Image{}).
		Where("queue_id = ? AND content_digest IS NOT NULL", queueID).
		Pluck("content_digest", &digests).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(digests))
	for _, d := range digests {
		out[d] = struct{}{}
	}
	return out, nil
}

// ListGroupImages returns the live images of a group in display order.
func ListGroupImages(ctx context.Context, db *gorm.DB, groupID string) ([]domain.Image, error) {
	var out []domain.Image
	err := db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("display_order ASC").
		Find(&out).Error
	return out, err
}

// SoftDeleteImage marks a live image deleted.
func SoftDeleteImage(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Image{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
