// Queue HTTP handlers.
//
//   - POST   /queues                         (create)
//   - GET    /queues?project_id=             (list)
//   - GET    /queues/{id}                    (get)
//   - GET    /queues/{id}/groups             (groups in display order)
//   - PATCH  /queues/{id}/status             (lifecycle transition)
//   - GET    /queues/{id}/imports            (batch import audit)
//   - DELETE /queues/{id}                    (teardown)
//   - POST   /queues/{id}/recount            (rebuild counters)
//   - DELETE /queues/{id}/images/{imageId}   (remove one image)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/utils"
)

const (
	defaultGroupPageSize = 100
	maxGroupPageSize     = 500
)

// CreateQueueRequest is the JSON payload for creating a queue.
type CreateQueueRequest struct {
	ProjectID string `json:"project_id" binding:"required" example:"4b0c7c56-3d0e-4bd2-9f2a-8f0d2f2b4a11"`
	Name      string `json:"name" binding:"required,max=255" example:"Spring catalog"`
	// ComparisonCount is the number of folders compared per group (2..10).
	ComparisonCount int `json:"comparison_count" example:"3"`
}

// ListQueuesResponse wraps the queues of a project.
type ListQueuesResponse struct {
	Queues []domain.Queue `json:"queues"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// SetQueueStatusRequest is the JSON payload for a lifecycle transition.
type SetQueueStatusRequest struct {
	Status domain.QueueStatus `json:"status" binding:"required" enums:"draft,active,completed,archived" example:"active"`
}

// ListImportsResponse wraps the batch import records of a queue.
type ListImportsResponse struct {
	Imports []domain.ImportRun `json:"imports"`
}

// ListGroupsResponse wraps one page of the groups of a queue.
type ListGroupsResponse struct {
	Groups     []domain.ImageGroup `json:"groups"`
	Pagination Pagination          `json:"pagination"`
}

// CreateQueue godoc
// @ID          createQueue
// @Summary     Create a review queue
// @Tags        Queues
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CreateQueueRequest  true  "Queue payload"
// @Success     201   {object}  domain.Queue
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404   {object}  handlers.ErrorResponse  "Project not found"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queues [post]
func (h *Handlers) CreateQueue(c *gin.Context) {
	var req CreateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "project_id and name are required")
		return
	}
	q, err := h.queues.Create(c.Request.Context(), req.ProjectID, strings.TrimSpace(req.Name), req.ComparisonCount)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, q)
}

// ListQueues godoc
// @ID          listQueues
// @Summary     List queues of a project
// @Tags        Queues
// @Produce     json
// @Param       project_id  query     string  true  "Project ID"
// @Success     200         {object}  handlers.ListQueuesResponse
// @Failure     400         {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500         {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queues [get]
func (h *Handlers) ListQueues(c *gin.Context) {
	projectID := strings.TrimSpace(c.Query("project_id"))
	if projectID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "project_id is required")
		return
	}
	qs, err := h.queues.List(c.Request.Context(), projectID)
	if err != nil {
		failErr(c, err)
		return
	}
	if qs == nil {
		qs = []domain.Queue{}
	}
	ok(c, http.StatusOK, ListQueuesResponse{Queues: qs})
}

// GetQueue godoc
// @ID          getQueue
// @Summary     Get a queue with its counters
// @Tags        Queues
// @Produce     json
// @Param       id   path      string  true  "Queue ID"
// @Success     200  {object}  domain.Queue
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Router      /queues/{id} [get]
func (h *Handlers) GetQueue(c *gin.Context) {
	q, err := h.queues.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// ListGroups godoc
// @ID          listGroups
// @Summary     List the groups of a queue in display order
// @Tags        Queues
// @Produce     json
// @Param       id         path      string  true   "Queue ID"
// @Param       page       query     int     false  "Page number (1-based)"  minimum(1) default(1)
// @Param       page_size  query     int     false  "Items per page"         minimum(1) maximum(500) default(100)
// @Success     200        {object}  handlers.ListGroupsResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Router      /queues/{id}/groups [get]
func (h *Handlers) ListGroups(c *gin.Context) {
	gs, err := h.queues.Groups(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	page, size := utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), defaultGroupPageSize),
		maxGroupPageSize,
	)
	items, totalPages := utils.Paginate(gs, page, size)
	ok(c, http.StatusOK, ListGroupsResponse{
		Groups: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   size,
			Total:      len(gs),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// SetQueueStatus godoc
// @ID          setQueueStatus
// @Summary     Move a queue to another lifecycle state
// @Tags        Queues
// @Accept      json
// @Produce     json
// @Param       id    path      string                            true  "Queue ID"
// @Param       body  body      handlers.SetQueueStatusRequest  true  "New status"
// @Success     200   {object}  domain.Queue
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404   {object}  handlers.ErrorResponse  "Queue not found"
// @Router      /queues/{id}/status [patch]
func (h *Handlers) SetQueueStatus(c *gin.Context) {
	var req SetQueueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	status := domain.QueueStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if err := h.queues.SetStatus(ctx, id, status); err != nil {
		failErr(c, err)
		return
	}
	q, err := h.queues.Get(ctx, id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// ListImports godoc
// @ID          listImports
// @Summary     List the batch imports of a queue, newest first
// @Tags        Queues
// @Produce     json
// @Param       id   path      string  true  "Queue ID"
// @Success     200  {object}  handlers.ListImportsResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Router      /queues/{id}/imports [get]
func (h *Handlers) ListImports(c *gin.Context) {
	runs, err := h.queues.Imports(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	if runs == nil {
		runs = []domain.ImportRun{}
	}
	ok(c, http.StatusOK, ListImportsResponse{Imports: runs})
}

// DeleteQueue godoc
// @ID          deleteQueue
// @Summary     Tear down a queue
// @Description Soft-deletes the queue with its groups and images. Waits for in-flight uploads on the queue.
// @Tags        Queues
// @Param       id   path    string  true  "Queue ID"
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse  "Queue not found"
// @Router      /queues/{id} [delete]
func (h *Handlers) DeleteQueue(c *gin.Context) {
	if err := h.queues.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// RecountQueue godoc
// @ID          recountQueue
// @Summary     Rebuild the denormalized counters of a queue
// @Tags        Queues
// @Produce     json
// @Param       id   path      string  true  "Queue ID"
// @Success     200  {object}  domain.Queue
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Router      /queues/{id}/recount [post]
func (h *Handlers) RecountQueue(c *gin.Context) {
	q, err := h.queues.Recount(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, q)
}

// RemoveImage godoc
// @ID          removeImage
// @Summary     Remove one image from a queue
// @Tags        Images
// @Param       id       path    string  true  "Queue ID"
// @Param       imageId  path    string  true  "Image ID"
// @Success     204      {string} string "No Content"
// @Failure     404      {object} handlers.ErrorResponse  "Queue or image not found"
// @Router      /queues/{id}/images/{imageId} [delete]
func (h *Handlers) RemoveImage(c *gin.Context) {
	if err := h.queues.RemoveImage(c.Request.Context(), c.Param("id"), c.Param("imageId")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
