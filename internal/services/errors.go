// Package services implements the pickset business logic: per-queue
// admission control, image ingestion, the selection protocol and the
// progress reader. This file centralizes the error taxonomy.
//
// Every specific error wraps one of the kind sentinels, so handlers can
// switch on the kind with errors.Is while tests match the exact error.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-pickset-backend/internal/repo"
)

// Error kinds.
var (
	// ErrNotFound covers missing queues, groups, images and users.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument covers malformed input and mismatched IDs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrForbidden is returned when the acting user's role does not allow
	// the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when the write would violate a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrStorage wraps blob store failures.
	ErrStorage = errors.New("storage fault")
)

// Specific errors.
var (
	ErrProjectNotFound   = fmt.Errorf("project %w", ErrNotFound)
	ErrQueueNotFound     = fmt.Errorf("queue %w", ErrNotFound)
	ErrImageNotFound     = fmt.Errorf("image %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrSelectionNotFound = fmt.Errorf("selection %w", ErrNotFound)

	// ErrQueueDone is returned by NextGroup once the user has a selection
	// in every group of the queue.
	ErrQueueDone = fmt.Errorf("no remaining groups: %w", ErrNotFound)

	// ErrImageMismatch is returned when the chosen image does not belong to
	// the given queue and group.
	ErrImageMismatch = fmt.Errorf("image does not belong to queue/group: %w", ErrInvalidArgument)

	ErrInvalidName        = fmt.Errorf("folder and file name are required: %w", ErrInvalidArgument)
	ErrInvalidFile        = fmt.Errorf("unreadable file: %w", ErrInvalidArgument)
	ErrInvalidComparisons = fmt.Errorf("comparison count must be between 2 and 10: %w", ErrInvalidArgument)
	ErrBatchTooLarge      = fmt.Errorf("batch exceeds the configured file limit: %w", ErrInvalidArgument)
	ErrEmptyBatch         = fmt.Errorf("batch contains no files: %w", ErrInvalidArgument)
	ErrInvalidRole        = fmt.Errorf("role must be admin, annotator or observer: %w", ErrInvalidArgument)
	ErrInvalidStatus      = fmt.Errorf("status must be draft, active, completed or archived: %w", ErrInvalidArgument)

	// ErrObserverSelection is returned when a non-participating user tries
	// to record a selection.
	ErrObserverSelection = fmt.Errorf("observers cannot record selections: %w", ErrForbidden)

	// ErrAlreadySelected is returned on a second selection for the same
	// (user, group).
	ErrAlreadySelected = fmt.Errorf("already selected: %w", ErrConflict)
)

// isNotFound treats repo-level not found sentinels as "not found".
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}

// storageErr tags a blob failure with the ErrStorage kind.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
