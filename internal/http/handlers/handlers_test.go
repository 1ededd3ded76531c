package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestUserID_PrefersContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("X-User-ID", " header-user ")
	if got := userID(c); got != "header-user" {
		t.Fatalf("header user = %q", got)
	}
	c.Set("userID", "ctx-user")
	if got := userID(c); got != "ctx-user" {
		t.Fatalf("context user = %q", got)
	}
}
