// Package services – QueueService
//
// This file covers the queue lifecycle around ingestion: creation, teardown,
// removal of single images and counter repair. Every write that touches
// groups or images takes the same admission lock as the ingestion pipeline.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/blob"
	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/repo"
)

// Comparison count bounds for a queue.
const (
	MinComparisons = 2
	MaxComparisons = 10
)

// QueueService manages queues.
type QueueService struct {
	DB    *gorm.DB
	Locks *LockRegistry
	// Blobs is optional. When set, RemoveImage deletes the image's blob
	// after commit; queue teardown keeps blobs.
	Blobs blob.Store
}

// Create inserts an active queue under projectID.
func (s *QueueService) Create(ctx context.Context, projectID, name string, comparisons int) (*domain.Queue, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidArgument
	}
	if comparisons < MinComparisons || comparisons > MaxComparisons {
		return nil, ErrInvalidComparisons
	}
	var out *domain.Queue
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetProject(ctx, tx, projectID); err != nil {
			if isNotFound(err) {
				return ErrProjectNotFound
			}
			return err
		}
		q, err := repo.CreateQueue(ctx, tx, projectID, name, comparisons, domain.QueueActive)
		if err != nil {
			return err
		}
		out = q
		return nil
	})
	return out, err
}

// Get returns a live queue.
func (s *QueueService) Get(ctx context.Context, id string) (*domain.Queue, error) {
	q, err := repo.GetQueue(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}
	return q, nil
}

// List returns the live queues of a project, or all queues when projectID
// is empty.
func (s *QueueService) List(ctx context.Context, projectID string) ([]domain.Queue, error) {
	return repo.ListQueues(ctx, s.DB, projectID)
}

// Groups returns the live groups of a queue in display order.
func (s *QueueService) Groups(ctx context.Context, id string) ([]domain.ImageGroup, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return repo.ListGroups(ctx, s.DB, id)
}

// SetStatus moves the queue to another lifecycle state.
func (s *QueueService) SetStatus(ctx context.Context, id string, status domain.QueueStatus) error {
	switch status {
	case domain.QueueDraft, domain.QueueActive, domain.QueueCompleted, domain.QueueArchived:
	default:
		return ErrInvalidStatus
	}
	if err := repo.SetQueueStatus(ctx, s.DB, id, status); err != nil {
		if isNotFound(err) {
			return ErrQueueNotFound
		}
		return err
	}
	return nil
}

// Imports returns the batch import records of a live queue, newest first.
func (s *QueueService) Imports(ctx context.Context, id string) ([]domain.ImportRun, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return repo.ListImportRuns(ctx, s.DB, id)
}

// Delete soft-deletes the queue with its groups and images. Selections,
// progress rows and image blobs are kept for export.
func (s *QueueService) Delete(ctx context.Context, id string) error {
	release, err := s.Locks.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	var images int64
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.SoftDeleteQueueTree(ctx, tx, id)
		if err != nil {
			if isNotFound(err) {
				return ErrQueueNotFound
			}
			return err
		}
		images = n
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("queue_id", id).Int64("images", images).Msg("queue deleted")
	return nil
}

// RemoveImage soft-deletes one image and recounts its group and the queue.
// The group itself is kept even when it becomes empty.
func (s *QueueService) RemoveImage(ctx context.Context, queueID, imageID string) error {
	release, err := s.Locks.Acquire(ctx, queueID)
	if err != nil {
		return err
	}
	defer release()

	var ref string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		img, err := repo.GetImage(ctx, tx, imageID)
		if err != nil {
			if isNotFound(err) {
				return ErrImageNotFound
			}
			return err
		}
		if img.QueueID != queueID {
			return ErrImageMismatch
		}
		if err := repo.SoftDeleteImage(ctx, tx, imageID); err != nil {
			return err
		}
		if _, err := repo.RecountGroup(ctx, tx, img.GroupID); err != nil {
			return err
		}
		if _, _, err := repo.RecountQueue(ctx, tx, queueID); err != nil {
			return err
		}
		ref = img.StorageRef
		return nil
	})
	if err != nil {
		return err
	}
	s.dropBlob(ctx, ref)
	return nil
}

// Recount rewrites every group counter and the queue counters from rows.
func (s *QueueService) Recount(ctx context.Context, id string) (*domain.Queue, error) {
	release, err := s.Locks.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	var out *domain.Queue
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetQueue(ctx, tx, id); err != nil {
			if isNotFound(err) {
				return ErrQueueNotFound
			}
			return err
		}
		if _, _, err := repo.RecountQueueGroups(ctx, tx, id); err != nil {
			return err
		}
		q, err := repo.GetQueue(ctx, tx, id)
		out = q
		return err
	})
	return out, err
}

// dropBlob deletes the blob of a removed image, best effort.
func (s *QueueService) dropBlob(ctx context.Context, ref string) {
	if s.Blobs == nil || ref == "" {
		return
	}
	if _, err := s.Blobs.Delete(context.WithoutCancel(ctx), ref); err != nil {
		log.Warn().Err(err).Str("ref", ref).Msg("blob delete failed")
	}
}
