package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/http/middleware"
	"github.com/tbourn/go-pickset-backend/internal/services"
)

type stubQueues struct {
	create   func(ctx context.Context, projectID, name string, comparisons int) (*domain.Queue, error)
	get      func(ctx context.Context, id string) (*domain.Queue, error)
	deleted  []string
	removed  [][2]string
	statuses []domain.QueueStatus
	runs     []domain.ImportRun
	err      error
}

func (s *stubQueues) Create(ctx context.Context, projectID, name string, comparisons int) (*domain.Queue, error) {
	return s.create(ctx, projectID, name, comparisons)
}
func (s *stubQueues) Get(ctx context.Context, id string) (*domain.Queue, error) {
	return s.get(ctx, id)
}
func (s *stubQueues) List(context.Context, string) ([]domain.Queue, error) { return nil, s.err }
func (s *stubQueues) Groups(context.Context, string) ([]domain.ImageGroup, error) {
	return []domain.ImageGroup{{ID: "g1", Name: "x.jpg"}}, s.err
}
func (s *stubQueues) SetStatus(_ context.Context, _ string, status domain.QueueStatus) error {
	s.statuses = append(s.statuses, status)
	return s.err
}
func (s *stubQueues) Imports(context.Context, string) ([]domain.ImportRun, error) {
	return s.runs, s.err
}
func (s *stubQueues) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}
func (s *stubQueues) RemoveImage(_ context.Context, queueID, imageID string) error {
	s.removed = append(s.removed, [2]string{queueID, imageID})
	return s.err
}
func (s *stubQueues) Recount(_ context.Context, id string) (*domain.Queue, error) {
	return &domain.Queue{ID: id}, s.err
}

type stubIngest struct {
	one   func(ctx context.Context, queueID, folder, file string, data []byte) (*domain.Image, bool, error)
	batch func(ctx context.Context, queueID string, folders []services.FolderFiles) (*services.BatchResult, error)
}

func (s *stubIngest) UploadOne(ctx context.Context, queueID, folder, file string, data []byte) (*domain.Image, bool, error) {
	return s.one(ctx, queueID, folder, file, data)
}
func (s *stubIngest) UploadBatch(ctx context.Context, queueID string, folders []services.FolderFiles) (*services.BatchResult, error) {
	return s.batch(ctx, queueID, folders)
}

type stubSelections struct {
	record func(ctx context.Context, queueID, groupID, userID, imageID string, d *float64) (*domain.Selection, error)
	calls  int
}

func (s *stubSelections) Record(ctx context.Context, queueID, groupID, userID, imageID string, d *float64) (*domain.Selection, error) {
	s.calls++
	return s.record(ctx, queueID, groupID, userID, imageID, d)
}
func (s *stubSelections) NextGroup(_ context.Context, queueID, userID string) (*services.GroupView, error) {
	if userID == "done" {
		return nil, services.ErrQueueDone
	}
	return &services.GroupView{Group: domain.ImageGroup{ID: "g1", QueueID: queueID}}, nil
}

type stubProgress struct{}

func (stubProgress) Get(_ context.Context, queueID, userID string) (*services.ProgressView, error) {
	if queueID == "missing" {
		return nil, services.ErrQueueNotFound
	}
	return &services.ProgressView{QueueID: queueID, UserID: userID, CompletedGroups: 1, TotalGroups: 4, ProgressPercentage: 25}, nil
}
func (stubProgress) All(_ context.Context, queueID string) ([]services.ProgressView, error) {
	if queueID == "" {
		return []services.ProgressView{{QueueID: "q1"}, {QueueID: "q2"}}, nil
	}
	return nil, nil
}

type memReplay struct {
	m map[string]*domain.Selection
}

func (r *memReplay) Lookup(_ context.Context, userID, queueID, key string) (*domain.Selection, error) {
	return r.m[userID+"|"+queueID+"|"+key], nil
}
func (r *memReplay) Remember(_ context.Context, userID, queueID, key, selectionID string) error {
	r.m[userID+"|"+queueID+"|"+key] = &domain.Selection{ID: selectionID, QueueID: queueID, UserID: userID}
	return nil
}

type env struct {
	r       *gin.Engine
	queues  *stubQueues
	ingest  *stubIngest
	selects *stubSelections
	replay  *memReplay
}

func newEnv() *env {
	gin.SetMode(gin.TestMode)
	e := &env{
		queues: &stubQueues{
			create: func(_ context.Context, projectID, name string, k int) (*domain.Queue, error) {
				return &domain.Queue{ID: "q1", ProjectID: projectID, Name: name, ComparisonCount: k}, nil
			},
			get: func(_ context.Context, id string) (*domain.Queue, error) {
				return nil, services.ErrQueueNotFound
			},
		},
		ingest:  &stubIngest{},
		selects: &stubSelections{},
		replay:  &memReplay{m: map[string]*domain.Selection{}},
	}
	h := New(e.queues, e.ingest, e.selects, stubProgress{}, e.replay)

	r := gin.New()
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.POST("/queues", h.CreateQueue)
	r.GET("/queues", h.ListQueues)
	r.GET("/queues/:id", h.GetQueue)
	r.GET("/queues/:id/groups", h.ListGroups)
	r.PATCH("/queues/:id/status", h.SetQueueStatus)
	r.GET("/queues/:id/imports", h.ListImports)
	r.DELETE("/queues/:id", h.DeleteQueue)
	r.POST("/queues/:id/recount", h.RecountQueue)
	r.POST("/queues/:id/images", h.UploadImage)
	r.POST("/queues/:id/images/batch", h.UploadBatch)
	r.DELETE("/queues/:id/images/:imageId", h.RemoveImage)
	r.GET("/queues/:id/next", h.NextGroup)
	r.POST("/queues/:id/selections", h.RecordSelection)
	r.GET("/queues/:id/progress/me", h.MyProgress)
	r.GET("/queues/:id/progress", h.QueueProgress)
	r.GET("/progress", h.AllProgress)
	e.r = r
	return e
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return er
}

type part struct{ field, file, body string }

func multipartReq(t *testing.T, path string, fields map[string]string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.file)
		if err != nil {
			t.Fatalf("part: %v", err)
		}
		_, _ = io.WriteString(fw, p.body)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
