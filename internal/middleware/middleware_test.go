package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"invoicing_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(jwt *utils.JWTManager, roles ...string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/whoami", AuthMiddleware(jwt), RoleAuthMiddleware(roles...), func(c *gin.Context) {
		id, ok := utils.IdentityFromContext(c.Request.Context())
		if !ok {
			c.String(http.StatusInternalServerError, "no identity")
			return
		}
		c.String(http.StatusOK, id.Username)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	jwt := utils.NewJWTManager("secret", time.Hour)
	adminToken, _ := jwt.GenerateAccessToken(1, "root", "Admin")
	staffToken, _ := jwt.GenerateAccessToken(2, "clerk", "Staff")
	r := newEngine(jwt, "Admin")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"role not allowed", "Bearer " + staffToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want == http.StatusOK && w.Body.String() != "root" {
				t.Errorf("body = %q, want root", w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	const knownID = "6f1c2d3e-4a5b-4c6d-8e9f-0a1b2c3d4e5f"
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, knownID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != knownID {
		t.Errorf("echoed id = %q, want %s", got, knownID)
	}

	// Anything that is not a uuid is replaced.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got == "abc-123" || len(got) != 36 {
		t.Errorf("generated id = %q, want a fresh uuid", got)
	}
}
