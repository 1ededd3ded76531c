// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they validate input, call application
// services and translate results into HTTP responses. Services are consumed
// through the narrow interfaces below so tests can stub them.
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// QueueService defines the queue lifecycle consumed by HTTP handlers.
type QueueService interface {
	Create(ctx context.Context, projectID, name string, comparisons int) (*domain.Queue, error)
	Get(ctx context.Context, id string) (*domain.Queue, error)
	List(ctx context.Context, projectID string) ([]domain.Queue, error)
	Groups(ctx context.Context, id string) ([]domain.ImageGroup, error)
	SetStatus(ctx context.Context, id string, status domain.QueueStatus) error
	Imports(ctx context.Context, id string) ([]domain.ImportRun, error)
	Delete(ctx context.Context, id string) error
	RemoveImage(ctx context.Context, queueID, imageID string) error
	Recount(ctx context.Context, id string) (*domain.Queue, error)
}

// IngestService defines the single-file and batch upload paths.
type IngestService interface {
	UploadOne(ctx context.Context, queueID, folderName, fileName string, data []byte) (*domain.Image, bool, error)
	UploadBatch(ctx context.Context, queueID string, folders []services.FolderFiles) (*services.BatchResult, error)
}

// SelectionService defines the selection protocol.
type SelectionService interface {
	Record(ctx context.Context, queueID, groupID, userID, imageID string, durationSeconds *float64) (*domain.Selection, error)
	NextGroup(ctx context.Context, queueID, userID string) (*services.GroupView, error)
}

// ProgressService defines progress reads.
type ProgressService interface {
	Get(ctx context.Context, queueID, userID string) (*services.ProgressView, error)
	All(ctx context.Context, queueID string) ([]services.ProgressView, error)
}

// ReplayStore remembers which selection an Idempotency-Key produced.
type ReplayStore interface {
	Lookup(ctx context.Context, userID, queueID, key string) (*domain.Selection, error)
	Remember(ctx context.Context, userID, queueID, key, selectionID string) error
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for queues, uploads, selections and
// progress.
type Handlers struct {
	queues     QueueService
	ingest     IngestService
	selections SelectionService
	progress   ProgressService
	replay     ReplayStore
}

// New constructs a Handlers instance bound to the given services. replay
// may be nil, which disables idempotent selection replay.
func New(queues QueueService, ingest IngestService, selections SelectionService, progress ProgressService, replay ReplayStore) *Handlers {
	return &Handlers{
		queues:     queues,
		ingest:     ingest,
		selections: selections,
		progress:   progress,
		replay:     replay,
	}
}

// userID extracts the acting user id from the Gin context (set by upstream
// auth middleware) or the X-User-ID header. Empty when neither is present.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		return strings.TrimSpace(c.GetHeader("X-User-ID"))
	}
	return ""
}
