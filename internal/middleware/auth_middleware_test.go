package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalilynx/embededticketautomation/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, role string, expiry time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.New(),
		"role":    role,
		"exp":     time.Now().Add(expiry).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	staff := r.Group("")
	staff.Use(middleware.JWTAuthMiddleware(testSecret))
	staff.GET("/staff", func(c *gin.Context) {
		role, _ := c.Get("role")
		c.JSON(http.StatusOK, gin.H{"role": role})
	})

	admin := r.Group("")
	admin.Use(middleware.JWTAuthMiddleware(testSecret), middleware.RequireRole("admin"))
	admin.GET("/admin", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	r := newProtectedRouter()
	assert.Equal(t, http.StatusUnauthorized, get(r, "/staff", "").Code)
}

func TestJWTAuthRejectsGarbageToken(t *testing.T) {
	r := newProtectedRouter()
	assert.Equal(t, http.StatusUnauthorized, get(r, "/staff", "not-a-jwt").Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	r := newProtectedRouter()
	token := signToken(t, "staff", -time.Hour)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/staff", token).Code)
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	r := newProtectedRouter()
	token := signToken(t, "staff", time.Hour)

	w := get(r, "/staff", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "staff")
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	r := newProtectedRouter()

	staffToken := signToken(t, "staff", time.Hour)
	assert.Equal(t, http.StatusForbidden, get(r, "/admin", staffToken).Code)

	adminToken := signToken(t, "admin", time.Hour)
	assert.Equal(t, http.StatusOK, get(r, "/admin", adminToken).Code)
}
