package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-pickset-backend/internal/blob"
	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/repo"
)

// newTestDB opens a private in-memory database. A single connection keeps
// concurrent tests from tripping over SQLite's shared-cache table locks;
// transactions simply queue for it.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys=ON;").Error; err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newPooledTestDB opens a WAL file database with the production pool, so
// concurrent tests run on separate connections.
func newPooledTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "pool.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// trackingStore wraps an in-memory FSStore and remembers live refs. Save
// fails for logical names listed in failNames.
type trackingStore struct {
	*blob.FSStore
	mu        sync.Mutex
	live      map[string]struct{}
	failNames map[string]bool
}

func newTrackingStore(failNames ...string) *trackingStore {
	s := &trackingStore{
		FSStore:   blob.NewFSStore(memfs.New()),
		live:      make(map[string]struct{}),
		failNames: make(map[string]bool),
	}
	for _, n := range failNames {
		s.failNames[n] = true
	}
	return s
}

func (s *trackingStore) Save(ctx context.Context, data []byte, logicalName, namespace string) (string, error) {
	if s.failNames[logicalName] {
		return "", errors.New("disk full")
	}
	ref, err := s.FSStore.Save(ctx, data, logicalName, namespace)
	if err == nil {
		s.mu.Lock()
		s.live[ref] = struct{}{}
		s.mu.Unlock()
	}
	return ref, err
}

func (s *trackingStore) Delete(ctx context.Context, ref string) (bool, error) {
	ok, err := s.FSStore.Delete(ctx, ref)
	s.mu.Lock()
	delete(s.live, ref)
	s.mu.Unlock()
	return ok, err
}

func (s *trackingStore) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

type fixture struct {
	db       *gorm.DB
	blobs    *trackingStore
	locks    *LockRegistry
	ingest   *IngestService
	queues   *QueueService
	selects  *SelectionService
	progress *ProgressService
	accounts *AccountService
	project  *domain.Project
}

func newFixture(t *testing.T, failNames ...string) *fixture {
	t.Helper()
	return newFixtureOn(t, newTestDB(t), failNames...)
}

func newFixtureOn(t *testing.T, db *gorm.DB, failNames ...string) *fixture {
	t.Helper()
	blobs := newTrackingStore(failNames...)
	locks := NewLockRegistry()
	f := &fixture{
		db:       db,
		blobs:    blobs,
		locks:    locks,
		ingest:   NewIngestService(db, blobs, locks),
		queues:   &QueueService{DB: db, Locks: locks, Blobs: blobs},
		selects:  &SelectionService{DB: db},
		progress: &ProgressService{DB: db},
		accounts: &AccountService{DB: db},
	}
	p, err := f.accounts.EnsureProject(context.Background(), "proj")
	if err != nil {
		t.Fatalf("EnsureProject: %v", err)
	}
	f.project = p
	return f
}

func (f *fixture) queue(t *testing.T) *domain.Queue {
	t.Helper()
	q, err := f.queues.Create(context.Background(), f.project.ID, "q-"+uuid.NewString(), 3)
	if err != nil {
		t.Fatalf("Create queue: %v", err)
	}
	return q
}

func (f *fixture) user(t *testing.T, role string) *domain.User {
	t.Helper()
	u, err := f.accounts.EnsureUser(context.Background(), "user-"+uuid.NewString(), role)
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	return u
}

func (f *fixture) reload(t *testing.T, queueID string) *domain.Queue {
	t.Helper()
	q, err := repo.GetQueue(context.Background(), f.db, queueID)
	if err != nil {
		t.Fatalf("GetQueue: %v", err)
	}
	return q
}

// assertCounters checks that every denormalized counter of the queue equals
// its live row count.
func (f *fixture) assertCounters(t *testing.T, queueID string) {
	t.Helper()
	ctx := context.Background()
	q := f.reload(t, queueID)

	groups, _ := repo.CountQueueGroups(ctx, f.db, queueID)
	images, _ := repo.CountQueueImages(ctx, f.db, queueID)
	if int64(q.GroupCount) != groups || int64(q.TotalImageCount) != images {
		t.Fatalf("queue counters (%d,%d) != rows (%d,%d)", q.GroupCount, q.TotalImageCount, groups, images)
	}
	gs, _ := repo.ListGroups(ctx, f.db, queueID)
	for _, g := range gs {
		n, _ := repo.CountGroupImages(ctx, f.db, g.ID)
		if int64(g.ImageCount) != n {
			t.Fatalf("group %s image_count=%d, rows=%d", g.Name, g.ImageCount, n)
		}
	}
}

// countSelections counts the rows userID recorded in a queue.
func countSelections(t *testing.T, db *gorm.DB, queueID, userID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.Selection{}).
		Where("queue_id = ? AND user_id = ?", queueID, userID).
		Count(&n).Error; err != nil {
		t.Fatalf("count selections: %v", err)
	}
	return n
}

// content returns distinct non-image bytes for a label.
func content(label string) []byte {
	return []byte("payload:" + label)
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func groupByName(t *testing.T, db *gorm.DB, queueID, name string) *domain.ImageGroup {
	t.Helper()
	g, err := repo.GetGroupByName(context.Background(), db, queueID, name)
	if err != nil {
		t.Fatalf("group %q: %v", name, err)
	}
	return g
}

func mustContain(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Fatalf("%q does not contain %q", s, sub)
	}
}
