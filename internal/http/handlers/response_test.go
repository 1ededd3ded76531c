package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-pickset-backend/internal/services"
)

// envelopeFor runs h behind a fake request-ID/logger middleware and returns
// the recorder plus whatever the request-scoped logger captured.
func envelopeFor(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var logs bytes.Buffer
	lg := zerolog.New(&logs)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-env")
		c.Set("logger", &lg)
		c.Next()
	})
	r.GET("/x", h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w, logs.String()
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("envelope json: %v (%q)", err, w.Body.String())
	}
	return resp
}

func TestFail_EnvelopeAndLogging(t *testing.T) {
	cases := []struct {
		status  int
		code    string
		wantLog bool
	}{
		{http.StatusNotFound, ErrCodeNotFound, false},
		{http.StatusConflict, ErrCodeConflict, false},
		{http.StatusBadGateway, ErrCodeStorage, true},
		{http.StatusInternalServerError, ErrCodeInternal, true},
	}
	for _, tc := range cases {
		w, logs := envelopeFor(t, func(c *gin.Context) { Fail(c, tc.status, tc.code, "msg") })
		resp := decodeEnvelope(t, w)
		if w.Code != tc.status || resp != (ErrorResponse{RequestID: "rid-env", Code: tc.code, Message: "msg"}) {
			t.Fatalf("%d: got %d %+v", tc.status, w.Code, resp)
		}
		if logged := strings.Contains(logs, `"message":"api error"`); logged != tc.wantLog {
			t.Fatalf("%d: logged=%v want %v (%s)", tc.status, logged, tc.wantLog, logs)
		}
	}
}

func TestFailErr_MapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrQueueDone, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrEmptyBatch, http.StatusBadRequest, ErrCodeBadRequest},
		{services.ErrObserverSelection, http.StatusForbidden, ErrCodeForbidden},
		{services.ErrAlreadySelected, http.StatusConflict, ErrCodeConflict},
		{fmt.Errorf("%w: bucket gone", services.ErrStorage), http.StatusBadGateway, ErrCodeStorage},
		{errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		w, _ := envelopeFor(t, func(c *gin.Context) { failErr(c, tc.err) })
		resp := decodeEnvelope(t, w)
		if w.Code != tc.status || resp.Code != tc.code {
			t.Fatalf("%v: got %d/%s want %d/%s", tc.err, w.Code, resp.Code, tc.status, tc.code)
		}
	}
}

func TestFailErr_HidesUnknownErrorText(t *testing.T) {
	w, logs := envelopeFor(t, func(c *gin.Context) { failErr(c, errors.New("pq: relation missing")) })
	if resp := decodeEnvelope(t, w); resp.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %q", resp.Message)
	}
	if !strings.Contains(logs, "pq: relation missing") {
		t.Fatalf("cause should be logged, got %s", logs)
	}
}

func TestSuccessHelpers(t *testing.T) {
	w, _ := envelopeFor(t, func(c *gin.Context) { ok(c, http.StatusCreated, gin.H{"id": "q1"}) })
	if w.Code != http.StatusCreated || strings.TrimSpace(w.Body.String()) != `{"id":"q1"}` {
		t.Fatalf("ok: %d %s", w.Code, w.Body.String())
	}

	w, _ = envelopeFor(t, noContent)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("noContent: %d %q", w.Code, w.Body.String())
	}
}
