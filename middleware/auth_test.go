package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/classpilot/lms-backend/utils"
)

func protectedRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(), RequireRoles(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("role"),
		})
	})
	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidBearerToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "mw-secret")
	token, err := utils.GenerateToken("abc", "teacher")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	r := protectedRouter("teacher")
	if w := get(r, "/protected", "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareRejectsMissingOrBrokenHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "mw-secret")
	r := protectedRouter("teacher")

	if w := get(r, "/protected", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing header: status = %d, want 401", w.Code)
	}
	if w := get(r, "/protected", "Token abc"); w.Code != http.StatusUnauthorized {
		t.Errorf("non-bearer header: status = %d, want 401", w.Code)
	}
	if w := get(r, "/protected", "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}
}

func TestRequireRolesBlocksOtherRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "mw-secret")
	token, err := utils.GenerateToken("abc", "student")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	r := protectedRouter("admin", "teacher")
	if w := get(r, "/protected", "Bearer "+token); w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for a student on a staff route", w.Code)
	}
}
