package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/classpilot/lms-backend/config"
	"github.com/classpilot/lms-backend/models"
)

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	config.DB = openTestDB(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", Register)
	r.POST("/auth/login", Login)
	return r
}

func TestRegisterCreatesStudentWithProfile(t *testing.T) {
	r := authRouter(t)

	w := postJSON(t, r, "/auth/register", gin.H{
		"email":     "newkid@school.test",
		"password":  "secret123",
		"full_name": "New Kid",
		"grade":     "6",
		"class":     "6B",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := config.DB.Where("email = ?", "newkid@school.test").First(&user).Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.Role != models.RoleStudent {
		t.Errorf("role = %q, self-registration is student only", user.Role)
	}
	if user.Password == "secret123" || user.Password == "" {
		t.Error("password must be stored hashed")
	}

	var profile models.StudentProfile
	if err := config.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Fatalf("student profile not created: %v", err)
	}
	if profile.Grade != "6" || profile.Class != "6B" {
		t.Errorf("profile = %+v, want grade 6 class 6B", profile)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	r := authRouter(t)

	body := gin.H{"email": "dupe@school.test", "password": "secret123", "full_name": "Dupe"}
	if w := postJSON(t, r, "/auth/register", body); w.Code != http.StatusCreated {
		t.Fatalf("first register: status = %d", w.Code)
	}
	if w := postJSON(t, r, "/auth/register", body); w.Code != http.StatusBadRequest {
		t.Errorf("second register: status = %d, want 400", w.Code)
	}
}

func TestLoginReturnsTokenAndRejectsWrongPassword(t *testing.T) {
	r := authRouter(t)

	if w := postJSON(t, r, "/auth/register", gin.H{
		"email": "login@school.test", "password": "secret123", "full_name": "Log In",
	}); w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", w.Code)
	}

	w := postJSON(t, r, "/auth/login", gin.H{"email": "login@school.test", "password": "secret123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response json: %v", err)
	}
	if resp.Token == "" {
		t.Error("token missing from login response")
	}

	if w := postJSON(t, r, "/auth/login", gin.H{"email": "login@school.test", "password": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", w.Code)
	}
	if w := postJSON(t, r, "/auth/login", gin.H{"email": "nobody@school.test", "password": "secret123"}); w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: status = %d, want 401", w.Code)
	}
}
