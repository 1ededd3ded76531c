// Selection HTTP handlers.
//
//   - GET  /queues/{id}/next        (next unreviewed group for the caller)
//   - POST /queues/{id}/selections  (record a pick)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a selection was
// already recorded under (user, queue, key), the handler returns that
// selection with 200 and sets `Idempotency-Replayed: true`.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pickset-backend/internal/domain"
	"github.com/tbourn/go-pickset-backend/internal/http/middleware"
)

// RecordSelectionRequest is the JSON payload for a pick.
type RecordSelectionRequest struct {
	GroupID string `json:"group_id" binding:"required" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	ImageID string `json:"image_id" binding:"required" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	// DurationSeconds is the time the reviewer spent on the group.
	DurationSeconds *float64 `json:"duration_seconds,omitempty" example:"4.2"`
}

// SelectionResponse wraps a recorded selection.
type SelectionResponse struct {
	Selection *domain.Selection `json:"selection"`
}

// NextGroup godoc
// @ID          nextGroup
// @Summary     Next group to review
// @Description Returns the lowest-ordered group the caller has not picked in yet, with its images.
// @Tags        Selections
// @Produce     json
// @Param       X-User-ID  header    string  true  "Reviewer user ID"
// @Param       id         path      string  true  "Queue ID"
// @Success     200        {object}  services.GroupView
// @Failure     400        {object}  handlers.ErrorResponse  "Missing user"
// @Failure     404        {object}  handlers.ErrorResponse  "Queue not found or no groups left"
// @Router      /queues/{id}/next [get]
func (h *Handlers) NextGroup(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "X-User-ID header is required")
		return
	}
	view, err := h.selections.NextGroup(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, view)
}

// RecordSelection godoc
// @ID          recordSelection
// @Summary     Record the caller's pick in a group
// @Description One selection per user per group. Supports Idempotency-Key for safe retries.
// @Tags        Selections
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header    string  true   "Reviewer user ID"
// @Param       Idempotency-Key  header    string  false  "Key for safe retries"
// @Param       id               path      string  true   "Queue ID"
// @Param       body             body      handlers.RecordSelectionRequest  true  "Pick"
// @Success     201              {object}  handlers.SelectionResponse  "Recorded"
// @Success     200              {object}  handlers.SelectionResponse  "Replayed"
// @Failure     400              {object}  handlers.ErrorResponse  "Bad request or image not in group"
// @Failure     403              {object}  handlers.ErrorResponse  "Role may not select"
// @Failure     404              {object}  handlers.ErrorResponse  "User, queue or image not found"
// @Failure     409              {object}  handlers.ErrorResponse  "Already selected in this group"
// @Router      /queues/{id}/selections [post]
func (h *Handlers) RecordSelection(c *gin.Context) {
	ctx := c.Request.Context()
	queueID := c.Param("id")
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "X-User-ID header is required")
		return
	}

	var req RecordSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.GroupID) == "" || strings.TrimSpace(req.ImageID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "group_id and image_id are required")
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	if key != "" && h.replay != nil {
		if prev, err := h.replay.Lookup(ctx, uid, queueID, key); err == nil && prev != nil {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, SelectionResponse{Selection: prev})
			return
		}
	}

	sel, err := h.selections.Record(ctx, queueID, req.GroupID, uid, req.ImageID, req.DurationSeconds)
	if err != nil {
		failErr(c, err)
		return
	}

	// Best effort: a lost record only disables replay for this key.
	if key != "" && h.replay != nil {
		if err := h.replay.Remember(ctx, uid, queueID, key, sel.ID); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("selection_id", sel.ID).Msg("idempotency record not stored")
		}
	}
	ok(c, http.StatusCreated, SelectionResponse{Selection: sel})
}
