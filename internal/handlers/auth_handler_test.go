package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kalilynx/embededticketautomation/internal/handlers"
	"github.com/kalilynx/embededticketautomation/internal/models"
	"github.com/kalilynx/embededticketautomation/internal/testutil"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	require.NoError(t, db.Create(&models.Role{Name: "staff"}).Error)
	require.NoError(t, db.Create(&models.Role{Name: "admin"}).Error)

	auth := handlers.NewAuthHandler(db, "test-secret")
	r := gin.New()
	r.POST("/login", auth.Login)
	r.POST("/register", auth.Register)
	return r, db
}

func seedStaffUser(t *testing.T, db *gorm.DB, email, password string) {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Where("name = ?", "staff").First(&role).Error)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Email:    email,
		Password: string(hashed),
		RoleID:   role.ID,
	}).Error)
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesToken(t *testing.T) {
	r, db := newAuthRouter(t)
	seedStaffUser(t, db, "door@venue.com", "letmein")

	w := postJSON(r, "/login", gin.H{"email": "door@venue.com", "password": "letmein"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r, db := newAuthRouter(t)
	seedStaffUser(t, db, "door@venue.com", "letmein")

	w := postJSON(r, "/login", gin.H{"email": "door@venue.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(r, "/login", gin.H{"email": "nobody@venue.com", "password": "letmein"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterCreatesStaffAccount(t *testing.T) {
	r, db := newAuthRouter(t)

	w := postJSON(r, "/register", gin.H{
		"email":     "door@venue.com",
		"password":  "letmein",
		"role_name": "staff",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, db.Preload("Role").Where("email = ?", "door@venue.com").First(&user).Error)
	assert.Equal(t, "staff", user.Role.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("letmein")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	r, db := newAuthRouter(t)
	seedStaffUser(t, db, "door@venue.com", "letmein")

	w := postJSON(r, "/register", gin.H{
		"email":     "door@venue.com",
		"password":  "other",
		"role_name": "staff",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(r, "/register", gin.H{
		"email":     "door@venue.com",
		"password":  "letmein",
		"role_name": "promoter",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
