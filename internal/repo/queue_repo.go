// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for projects and
// queues.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - Missing rows surface as gorm.ErrRecordNotFound (exported as ErrNotFound).
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/domain"
)

// CreateProject inserts a project with a fresh UUID.
func CreateProject(ctx context.Context, db *gorm.DB, name string) (*domain.Project, error) {
	p := &domain.Project{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// GetProject fetches a live project by ID.
func GetProject(ctx context.Context, db *gorm.DB, id string) (*domain.Project, error) {
	var p domain.Project
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProjectByName fetches a live project by its unique name.
func GetProjectByName(ctx context.Context, db *gorm.DB, name string) (*domain.Project, error) {
	var p domain.Project
	if err := db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateQueue inserts an empty queue in the given status.
func CreateQueue(ctx context.Context, db *gorm.DB, projectID, name string, comparisons int, status domain.QueueStatus) (*domain.Queue, error) {
	q := &domain.Queue{
		ID:              uuid.NewString(),
		ProjectID:       projectID,
		Name:            name,
		ComparisonCount: comparisons,
		Status:          status,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// GetQueue fetches a non-deleted queue by ID.
func GetQueue(ctx context.Context, db *gorm.DB, id string) (*domain.Queue, error) {
	var q domain.Queue
	if err := db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQueues returns the live queues of a project, oldest first. An empty
// projectID lists every queue.
func ListQueues(ctx context.Context, db *gorm.DB, projectID string) ([]domain.Queue, error) {
	var out []domain.Queue
	q := db.WithContext(ctx).Order("created_at ASC")
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SetQueueStatus updates the lifecycle status of a live queue.
func SetQueueStatus(ctx context.Context, db *gorm.DB, id string, status domain.QueueStatus) error {
	res := db.WithContext(ctx).Model(&domain.Queue{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteQueueTree soft-deletes the queue together with its groups and
// images and reports how many images it hid. Blobs are left in storage.
func SoftDeleteQueueTree(ctx context.Context, db *gorm.DB, id string) (int64, error) {
	tx := db.WithContext(ctx)

	imgs := tx.Where("queue_id = ?", id).Delete(&domain.Image{})
	if imgs.Error != nil {
		return 0, imgs.Error
	}
	if err := tx.Where("queue_id = ?", id).Delete(&domain.ImageGroup{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id = ?", id).Delete(&domain.Queue{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return imgs.RowsAffected, nil
}
