// Package services – SelectionService
//
// This file implements the selection protocol: a user picks exactly one
// image per group, and their progress counter moves by exactly one per
// pick. The lookup before insert only exists to return a clean conflict;
// the unique index on (queue_id, user_id, group_id) decides concurrent races.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/repo"
)

// SelectionService records selections and serves the next group to review.
type SelectionService struct {
	DB *gorm.DB
}

// GroupView is a group together with its live images in display order.
type GroupView struct {
	Group  domain.ImageGroup `json:"group"`
	Images []domain.Image    `json:"images"`
}

// Record stores userID's pick of imageID in groupID.
//
// Validation order:
//   - the user must exist (ErrUserNotFound) and be allowed to select
//     (ErrObserverSelection);
//   - the queue must exist (ErrQueueNotFound);
//   - the image must exist (ErrImageNotFound) and belong to both queueID
//     and groupID (ErrImageMismatch);
//   - the user must not have picked in this group yet (ErrAlreadySelected).
//
// The selection insert and the progress upsert share one transaction.
func (s *SelectionService) Record(ctx context.Context, queueID, groupID, userID, imageID string, durationSeconds *float64) (*domain.Selection, error) {
	tr := otel.Tracer("services/SelectionService")
	ctx, span := tr.Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("queue.id", queueID),
			attribute.String("group.id", groupID),
			attribute.String("user.id", userID),
		))
	defer span.End()

	if durationSeconds != nil && *durationSeconds < 0 {
		return nil, ErrInvalidArgument
	}

	var out *domain.Selection
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := repo.GetUser(ctx, tx, userID)
		if err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}
		if !user.CanSelect() {
			return ErrObserverSelection
		}

		queue, err := repo.GetQueue(ctx, tx, queueID)
		if err != nil {
			if isNotFound(err) {
				return ErrQueueNotFound
			}
			return err
		}

		img, err := repo.GetImage(ctx, tx, imageID)
		if err != nil {
			if isNotFound(err) {
				return ErrImageNotFound
			}
			return err
		}
		if img.QueueID != queueID || img.GroupID != groupID {
			return ErrImageMismatch
		}

		if _, err := repo.FindSelection(ctx, tx, userID, groupID); err == nil {
			return ErrAlreadySelected
		} else if !isNotFound(err) {
			return err
		}

		sel, err := repo.CreateSelection(ctx, tx, queueID, userID, groupID, imageID, durationSeconds)
		if err != nil {
			if repo.IsDuplicate(err) {
				return ErrAlreadySelected
			}
			return err
		}

		if err := repo.IncrementProgress(ctx, tx, queueID, userID, queue.GroupCount); err != nil {
			return err
		}
		out = sel
		return nil
	})
	if err != nil {
		// A concurrent winner can also surface as a failed commit or a
		// constraint error on the progress upsert; report those as conflicts
		// only when the selection row is already there.
		if !isKnown(err) {
			if _, ferr := repo.FindSelection(ctx, s.DB, userID, groupID); ferr == nil {
				err = ErrAlreadySelected
			}
		}
		selections.WithLabelValues(outcomeLabel(err)).Inc()
		span.RecordError(err)
		return nil, err
	}
	selections.WithLabelValues("recorded").Inc()
	return out, nil
}

// Get returns a selection by ID.
func (s *SelectionService) Get(ctx context.Context, id string) (*domain.Selection, error) {
	sel, err := repo.GetSelection(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSelectionNotFound
		}
		return nil, err
	}
	return sel, nil
}

// NextGroup returns the first group, in display order, in which userID has
// not picked yet. ErrQueueDone means every group has a selection.
func (s *SelectionService) NextGroup(ctx context.Context, queueID, userID string) (*GroupView, error) {
	tr := otel.Tracer("services/SelectionService")
	ctx, span := tr.Start(ctx, "NextGroup", trace.WithAttributes(attribute.String("queue.id", queueID)))
	defer span.End()

	if _, err := repo.GetQueue(ctx, s.DB, queueID); err != nil {
		if isNotFound(err) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}
	g, err := repo.NextUnselectedGroup(ctx, s.DB, queueID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrQueueDone
		}
		return nil, err
	}
	imgs, err := repo.ListGroupImages(ctx, s.DB, g.ID)
	if err != nil {
		return nil, err
	}
	return &GroupView{Group: *g, Images: imgs}, nil
}

func isKnown(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrInvalidArgument, ErrForbidden, ErrConflict} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidArgument):
		return "rejected"
	default:
		return "error"
	}
}
