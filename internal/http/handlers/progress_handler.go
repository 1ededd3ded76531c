// Progress HTTP handlers.
//
//   - GET /queues/{id}/progress/me  (caller's progress)
//   - GET /queues/{id}/progress     (every reviewer of a queue)
//   - GET /progress                 (every reviewer of every queue)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pickset-backend/internal/services"
)

// ListProgressResponse wraps a list of progress views.
type ListProgressResponse struct {
	Progress []services.ProgressView `json:"progress"`
}

// MyProgress godoc
// @ID          myProgress
// @Summary     Caller's progress in a queue
// @Description A reviewer without selections gets a zero view against the live group count.
// @Tags        Progress
// @Produce     json
// @Param       X-User-ID  header    string  true  "Reviewer user ID"
// @Param       id         path      string  true  "Queue ID"
// @Success     200        {object}  services.ProgressView
// @Failure     400        {object}  handlers.ErrorResponse  "Missing user"
// @Failure     404        {object}  handlers.ErrorResponse  "Queue not found"
// @Router      /queues/{id}/progress/me [get]
func (h *Handlers) MyProgress(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "X-User-ID header is required")
		return
	}
	v, err := h.progress.Get(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, v)
}

// QueueProgress godoc
// @ID          queueProgress
// @Summary     Progress of every reviewer in a queue
// @Tags        Progress
// @Produce     json
// @Param       id   path      string  true  "Queue ID"
// @Success     200  {object}  handlers.ListProgressResponse
// @Router      /queues/{id}/progress [get]
func (h *Handlers) QueueProgress(c *gin.Context) {
	h.listProgress(c, c.Param("id"))
}

// AllProgress godoc
// @ID          allProgress
// @Summary     Progress of every reviewer in every queue
// @Tags        Progress
// @Produce     json
// @Success     200  {object}  handlers.ListProgressResponse
// @Router      /progress [get]
func (h *Handlers) AllProgress(c *gin.Context) {
	h.listProgress(c, "")
}

func (h *Handlers) listProgress(c *gin.Context, queueID string) {
	views, err := h.progress.All(c.Request.Context(), queueID)
	if err != nil {
		failErr(c, err)
		return
	}
	if views == nil {
		views = []services.ProgressView{}
	}
	ok(c, http.StatusOK, ListProgressResponse{Progress: views})
}
