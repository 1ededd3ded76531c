// Package handlers holds the Gin handlers of the public API and the JSON
// envelope they share.
//
// Every failure is written through fail as an ErrorResponse:
//
//	HTTP/1.1 404 Not Found
//	{"request_id":"123e4567-e89b-12d3-a456-426614174000","code":"not_found","message":"queue not found"}
//
// Service errors go through failErr, which maps the error kinds declared in
// package services onto statuses.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-pickset-backend/internal/http/middleware"
	"github.com/tbourn/go-pickset-backend/internal/services"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Echo of X-Request-ID
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Machine-readable code, see errors.go
	Code string `json:"code" example:"not_found"`
	// Safe to show to users
	Message string `json:"message" example:"resource not found"`
}

// kindStatus pairs a services error kind with its HTTP rendering. Order
// matters: the first kind errors.Is matches wins.
var kindStatus = []struct {
	kind   error
	status int
	code   string
}{
	{services.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
	{services.ErrInvalidArgument, http.StatusBadRequest, ErrCodeBadRequest},
	{services.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
	{services.ErrConflict, http.StatusConflict, ErrCodeConflict},
	{services.ErrStorage, http.StatusBadGateway, ErrCodeStorage},
}

// statusOf maps a service error to its HTTP status and code; unknown
// errors are 500 internal_error.
func statusOf(err error) (int, string) {
	for _, ks := range kindStatus {
		if errors.Is(err, ks.kind) {
			return ks.status, ks.code
		}
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

// fail aborts with the envelope. 5xx responses are also logged on the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail lets the router write the same envelope for NoRoute/NoMethod.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr writes the envelope for a service error. The text of unknown
// errors stays in the log and never reaches the client.
func failErr(c *gin.Context, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().Err(err).Msg("unhandled service error")
		msg = "internal server error"
	}
	fail(c, status, code, msg)
}

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }
