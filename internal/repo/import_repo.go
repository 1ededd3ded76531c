package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/domain"
)

// ImportRunInput carries the outcome of one batch for the audit table.
// Errors and Skipped are marshalled to JSON as given.
type ImportRunInput struct {
	QueueID      string
	SuccessCount int
	SkippedCount int
	FailureCount int
	TotalGroups  int
	Errors       any
	Skipped      any
	StartedAt    time.Time
}

// CreateImportRun persists the audit record of a batch ingestion.
func CreateImportRun(ctx context.Context, db *gorm.DB, in ImportRunInput) (*domain.ImportRun, error) {
	errs, err := json.Marshal(in.Errors)
	if err != nil {
		return nil, err
	}
	skipped, err := json.Marshal(in.Skipped)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	run := &domain.ImportRun{
		ID:           uuid.NewString(),
		QueueID:      in.QueueID,
		SuccessCount: in.SuccessCount,
		SkippedCount: in.SkippedCount,
		FailureCount: in.FailureCount,
		TotalGroups:  in.TotalGroups,
		Errors:       datatypes.JSON(errs),
		Skipped:      datatypes.JSON(skipped),
		StartedAt:    in.StartedAt.UTC(),
		FinishedAt:   now,
		CreatedAt:    now,
	}
	if err := db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// ListImportRuns returns the audit records of a queue, newest first.
func ListImportRuns(ctx context.Context, db *gorm.DB, queueID string) ([]domain.ImportRun, error) {
	var out []domain.ImportRun
	err := db.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
