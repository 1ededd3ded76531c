// Package services – IngestService
//
// This file implements the ingestion pipeline. Files are grouped by their
// logical name (the file name shared across source folders), deduplicated by
// slot (queue, folder, file) and by content digest within a queue, and
// written together with the group and queue counters in one transaction.
//
// Every ingestion call holds the queue's admission lock from before the
// transaction opens until after it commits or rolls back. Group creation and
// counter recomputation are read-then-write sequences that the transaction
// alone does not make safe.
package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/go-pickset-backend/internal/blob"
	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/media"
	"github.com/tbourn/go-pickset-backend/internal/repo"
)

// DefaultMaxReportedErrors caps the errors and skipped lists of a BatchResult.
const DefaultMaxReportedErrors = 50

// File is one uploaded payload.
type File struct {
	Name string
	Data []byte
}

// FolderFiles holds the files of one source folder in arrival order.
type FolderFiles struct {
	Folder string
	Files  []File
}

// FileError describes a file that could not be ingested.
type FileError struct {
	Folder string `json:"folder"`
	File   string `json:"file"`
	Error  string `json:"error"`
}

// SkippedFile describes a file that was left out on purpose.
type SkippedFile struct {
	Folder string `json:"folder"`
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Skip reasons.
const (
	SkipSlotExists       = "already uploaded"
	SkipDuplicateContent = "duplicate content"
)

// BatchResult summarizes a batch upload. Counts are exact; the Errors and
// SkippedFiles lists are capped.
type BatchResult struct {
	ImportRunID  string        `json:"import_run_id"`
	SuccessCount int           `json:"success_count"`
	SkippedCount int           `json:"skipped_count"`
	FailureCount int           `json:"failure_count"`
	Errors       []FileError   `json:"errors"`
	SkippedFiles []SkippedFile `json:"skipped_files"`
	TotalGroups  int           `json:"total_groups"`
}

// Partial reports whether some files failed while the batch still committed.
func (r *BatchResult) Partial() bool { return r.FailureCount > 0 }

func (r *BatchResult) fail(folder, file string, err error, limit int) {
	r.FailureCount++
	if len(r.Errors) < limit {
		r.Errors = append(r.Errors, FileError{Folder: folder, File: file, Error: err.Error()})
	}
}

func (r *BatchResult) skip(folder, file, reason string, limit int) {
	r.SkippedCount++
	if len(r.SkippedFiles) < limit {
		r.SkippedFiles = append(r.SkippedFiles, SkippedFile{Folder: folder, File: file, Reason: reason})
	}
}

// IngestService runs the ingestion pipeline.
type IngestService struct {
	DB        *gorm.DB
	Blobs     blob.Store
	Extractor media.Extractor
	Locks     *LockRegistry

	// MaxBatchFiles rejects larger batches before the lock is taken; 0
	// disables the check.
	MaxBatchFiles int
	// MaxReportedErrors caps BatchResult lists; 0 means the default.
	MaxReportedErrors int
}

// NewIngestService wires a service with the default extractor and a fresh
// lock registry.
func NewIngestService(db *gorm.DB, blobs blob.Store, locks *LockRegistry) *IngestService {
	if locks == nil {
		locks = NewLockRegistry()
	}
	return &IngestService{
		DB:                db,
		Blobs:             blobs,
		Extractor:         media.ImageExtractor{},
		Locks:             locks,
		MaxReportedErrors: DefaultMaxReportedErrors,
	}
}

func (s *IngestService) reportCap() int {
	if s.MaxReportedErrors > 0 {
		return s.MaxReportedErrors
	}
	return DefaultMaxReportedErrors
}

// GroupKey maps a file name to its logical group: the base name, NFC
// normalized so decomposed names from macOS volumes join the same group.
func GroupKey(fileName string) string {
	name := strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}
	return norm.NFC.String(name)
}

func folderKey(folder string) string {
	return norm.NFC.String(strings.Trim(strings.TrimSpace(folder), "/\\"))
}

// UploadOne ingests a single file. Re-uploading an occupied slot, or bytes
// whose digest already exists in the queue, returns the existing image with
// duplicate=true and writes nothing.
func (s *IngestService) UploadOne(ctx context.Context, queueID, folderName, fileName string, data []byte) (img *domain.Image, duplicate bool, err error) {
	tr := otel.Tracer("services/IngestService")
	ctx, span := tr.Start(ctx, "UploadOne",
		trace.WithAttributes(
			attribute.String("queue.id", queueID),
			attribute.String("file.folder", folderName),
			attribute.Int("file.size", len(data)),
		))
	defer span.End()

	folder, name := folderKey(folderName), GroupKey(fileName)
	if folder == "" || name == "" {
		return nil, false, ErrInvalidName
	}

	release, err := s.Locks.Acquire(ctx, queueID)
	if err != nil {
		return nil, false, err
	}
	defer release()

	var savedRef string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetQueue(ctx, tx, queueID); err != nil {
			if isNotFound(err) {
				return ErrQueueNotFound
			}
			return err
		}

		existing, err := repo.GetImageBySlot(ctx, tx, queueID, folder, name)
		if err == nil {
			img, duplicate = existing, true
			return nil
		}
		if !isNotFound(err) {
			return err
		}

		meta, err := s.Extractor.Extract(data, name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}
		if prior, err := repo.GetImageByDigest(ctx, tx, queueID, meta.Digest); err == nil {
			img, duplicate = prior, true
			return nil
		} else if !isNotFound(err) {
			return err
		}

		ref, err := s.Blobs.Save(ctx, data, name, queueID)
		if err != nil {
			return storageErr(err)
		}
		savedRef = ref

		group, _, err := repo.GetOrCreateGroup(ctx, tx, queueID, name)
		if err != nil {
			return err
		}
		order, err := repo.NextImageOrder(ctx, tx, group.ID)
		if err != nil {
			return err
		}

		rec := newImage(queueID, group.ID, folder, name, ref, order, meta)
		if err := repo.CreateImage(ctx, tx, rec); err != nil {
			return err
		}
		if err := repo.IncrementGroupImageCount(ctx, tx, group.ID, 1); err != nil {
			return err
		}
		if _, _, err := repo.RecountQueue(ctx, tx, queueID); err != nil {
			return err
		}
		img = rec
		return nil
	})
	if err != nil {
		s.discard(ctx, savedRef)
		ingestFiles.WithLabelValues(outcomeFailed).Inc()
		span.RecordError(err)
		return nil, false, err
	}

	if duplicate {
		ingestFiles.WithLabelValues(outcomeDuplicate).Inc()
	} else {
		ingestFiles.WithLabelValues(outcomeStored).Inc()
	}
	span.SetAttributes(attribute.Bool("image.duplicate", duplicate))
	return img, duplicate, nil
}

type pendingFile struct {
	folder string
	name   string
	data   []byte
	meta   media.Metadata
}

type groupBucket struct {
	name  string
	files []pendingFile
}

// bucketize extracts metadata for every file and groups the good ones by
// logical name, keeping first-seen order. Files that cannot be named or
// extracted are recorded as failures.
func (s *IngestService) bucketize(folders []FolderFiles, res *BatchResult) []*groupBucket {
	limit := s.reportCap()
	var out []*groupBucket
	byName := make(map[string]*groupBucket)

	for _, ff := range folders {
		folder := folderKey(ff.Folder)
		for _, f := range ff.Files {
			name := GroupKey(f.Name)
			if folder == "" || name == "" {
				res.fail(ff.Folder, f.Name, ErrInvalidName, limit)
				continue
			}
			meta, err := s.Extractor.Extract(f.Data, name)
			if err != nil {
				res.fail(folder, name, fmt.Errorf("%w: %w", ErrInvalidFile, err), limit)
				continue
			}
			b, ok := byName[name]
			if !ok {
				b = &groupBucket{name: name}
				byName[name] = b
				out = append(out, b)
			}
			b.files = append(b.files, pendingFile{folder: folder, name: name, data: f.Data, meta: meta})
		}
	}
	return out
}

// UploadBatch ingests many files in one transaction. Per-file failures are
// collected in the result and never abort the batch; only a missing queue
// or a database fault outside a single file's insert rolls everything back.
func (s *IngestService) UploadBatch(ctx context.Context, queueID string, folders []FolderFiles) (*BatchResult, error) {
	total := 0
	for _, ff := range folders {
		total += len(ff.Files)
	}

	tr := otel.Tracer("services/IngestService")
	ctx, span := tr.Start(ctx, "UploadBatch",
		trace.WithAttributes(
			attribute.String("queue.id", queueID),
			attribute.Int("batch.folders", len(folders)),
			attribute.Int("batch.files", total),
		))
	defer span.End()

	if total == 0 {
		return nil, ErrEmptyBatch
	}
	if s.MaxBatchFiles > 0 && total > s.MaxBatchFiles {
		return nil, ErrBatchTooLarge
	}

	release, err := s.Locks.Acquire(ctx, queueID)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	limit := s.reportCap()
	var (
		res   *BatchResult
		saved []string
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res = &BatchResult{Errors: []FileError{}, SkippedFiles: []SkippedFile{}}

		if _, err := repo.GetQueue(ctx, tx, queueID); err != nil {
			if isNotFound(err) {
				return ErrQueueNotFound
			}
			return err
		}

		buckets := s.bucketize(folders, res)

		known, err := repo.ListSlotKeys(ctx, tx, queueID)
		if err != nil {
			return err
		}
		digests, err := repo.ListDigests(ctx, tx, queueID)
		if err != nil {
			return err
		}

		touched := make(map[string]struct{})
		for _, b := range buckets {
			var (
				group *domain.ImageGroup
				next  int
			)
			for _, f := range b.files {
				key := repo.SlotKey{Folder: f.folder, File: f.name}
				if _, ok := known[key]; ok {
					res.skip(f.folder, f.name, SkipSlotExists, limit)
					continue
				}
				if _, ok := digests[f.meta.Digest]; ok {
					res.skip(f.folder, f.name, SkipDuplicateContent, limit)
					continue
				}

				// The group is resolved on the first file that will actually be
				// stored, so an all-skipped bucket creates no empty group.
				if group == nil {
					g, _, err := repo.GetOrCreateGroup(ctx, tx, queueID, b.name)
					if err != nil {
						return err
					}
					n, err := repo.NextImageOrder(ctx, tx, g.ID)
					if err != nil {
						return err
					}
					group, next = g, n
					touched[g.ID] = struct{}{}
				}

				ref, err := s.insertFile(ctx, tx, queueID, group.ID, f, next)
				if err != nil {
					log.Debug().Err(err).Str("queue_id", queueID).Str("folder", f.folder).Str("file", f.name).Msg("ingest: file failed")
					res.fail(f.folder, f.name, err, limit)
					continue
				}
				saved = append(saved, ref)
				known[key] = struct{}{}
				digests[f.meta.Digest] = struct{}{}
				next++
				res.SuccessCount++
			}
		}

		for id := range touched {
			if _, err := repo.RecountGroup(ctx, tx, id); err != nil {
				return err
			}
		}
		groups, _, err := repo.RecountQueue(ctx, tx, queueID)
		if err != nil {
			return err
		}
		res.TotalGroups = int(groups)

		run, err := repo.CreateImportRun(ctx, tx, repo.ImportRunInput{
			QueueID:      queueID,
			SuccessCount: res.SuccessCount,
			SkippedCount: res.SkippedCount,
			FailureCount: res.FailureCount,
			TotalGroups:  res.TotalGroups,
			Errors:       res.Errors,
			Skipped:      res.SkippedFiles,
			StartedAt:    started,
		})
		if err != nil {
			return err
		}
		res.ImportRunID = run.ID
		return nil
	})
	if err != nil {
		s.discard(ctx, saved...)
		span.RecordError(err)
		return nil, err
	}

	ingestFiles.WithLabelValues(outcomeStored).Add(float64(res.SuccessCount))
	ingestFiles.WithLabelValues(outcomeSkipped).Add(float64(res.SkippedCount))
	ingestFiles.WithLabelValues(outcomeFailed).Add(float64(res.FailureCount))
	span.SetAttributes(
		attribute.Int("batch.success", res.SuccessCount),
		attribute.Int("batch.failures", res.FailureCount),
	)
	log.Info().
		Str("queue_id", queueID).
		Int("success", res.SuccessCount).
		Int("skipped", res.SkippedCount).
		Int("failed", res.FailureCount).
		Int("total_groups", res.TotalGroups).
		Dur("took", time.Since(started)).
		Msg("batch ingested")
	return res, nil
}

// insertFile stores one file inside a savepoint so a failed insert rolls
// back alone. The blob written for a failed file is removed before return.
func (s *IngestService) insertFile(ctx context.Context, tx *gorm.DB, queueID, groupID string, f pendingFile, order int) (string, error) {
	var ref string
	err := tx.Transaction(func(ftx *gorm.DB) error {
		r, err := s.Blobs.Save(ctx, f.data, f.name, queueID)
		if err != nil {
			return storageErr(err)
		}
		ref = r
		return repo.CreateImage(ctx, ftx, newImage(queueID, groupID, f.folder, f.name, r, order, f.meta))
	})
	if err != nil {
		s.discard(ctx, ref)
		return "", err
	}
	return ref, nil
}

// discard removes blobs whose rows never committed. Failures are logged
// and otherwise ignored; the blobs are unreachable either way.
func (s *IngestService) discard(ctx context.Context, refs ...string) {
	if len(refs) == 0 {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, err := s.Blobs.Delete(cctx, ref); err != nil {
			log.Warn().Err(err).Str("ref", ref).Msg("orphan blob cleanup failed")
		}
	}
}

func newImage(queueID, groupID, folder, name, ref string, order int, meta media.Metadata) *domain.Image {
	digest := meta.Digest
	img := &domain.Image{
		ID:            uuid.NewString(),
		QueueID:       queueID,
		GroupID:       groupID,
		FolderName:    folder,
		FileName:      name,
		StorageRef:    ref,
		DisplayOrder:  order,
		FileSize:      meta.Size,
		ContentDigest: &digest,
		CreatedAt:     time.Now().UTC(),
	}
	if w, h, ok := meta.Dimensions(); ok {
		img.Width, img.Height = &w, &h
	}
	return img
}
