package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/middleware"
	"github.com/classpilot/lms-backend/models"
	"github.com/classpilot/lms-backend/services"
)

func tutorRouter(db *gorm.DB, ai services.Completer, studentID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(studentID, models.RoleStudent), middleware.DBMiddleware(db), middleware.AIMiddleware(ai))
	r.POST("/tutor", TutorChat)
	r.GET("/tutor/history", GetTutorHistory)
	return r
}

func TestTutorChatAppendsBothSidesOfTheExchange(t *testing.T) {
	db := openTestDB(t)
	student := seedUser(t, db, "Student", "tc-s@school.test", models.RoleStudent)

	r := tutorRouter(db, &stubAI{reply: "Great question! Think about what a fraction means."}, student.ID)
	w := postJSON(t, r, "/tutor", gin.H{"message": "What is 1/2 + 1/4?"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response json: %v", err)
	}
	if resp.Reply == "" {
		t.Error("reply missing from response")
	}

	var logs []models.ChatLog
	if err := db.Where("student_id = ?", student.ID).Order("timestamp ASC").Find(&logs).Error; err != nil {
		t.Fatalf("load transcript: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("transcript rows = %d, want user message + tutor reply", len(logs))
	}
	if logs[0].Role != models.ChatRoleUser || logs[1].Role != models.ChatRoleSystem {
		t.Errorf("roles = %s/%s, want user/system", logs[0].Role, logs[1].Role)
	}
}

func TestTutorChatAIDownKeepsUserMessage(t *testing.T) {
	db := openTestDB(t)
	student := seedUser(t, db, "Student", "td-s@school.test", models.RoleStudent)

	r := tutorRouter(db, &stubAI{err: errors.New("gateway down")}, student.ID)
	w := postJSON(t, r, "/tutor", gin.H{"message": "Help me with algebra"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 when the tutor is unreachable", w.Code)
	}

	// The student's message is already part of the transcript.
	var count int64
	db.Model(&models.ChatLog{}).Where("student_id = ?", student.ID).Count(&count)
	if count != 1 {
		t.Errorf("transcript rows = %d, want the user message persisted", count)
	}
}

func TestGetTutorHistoryIsChronological(t *testing.T) {
	db := openTestDB(t)
	student := seedUser(t, db, "Student", "te-s@school.test", models.RoleStudent)

	r := tutorRouter(db, &stubAI{reply: "ok"}, student.ID)
	for _, msg := range []string{"first", "second"} {
		if w := postJSON(t, r, "/tutor", gin.H{"message": msg}); w.Code != http.StatusOK {
			t.Fatalf("chat %q: status = %d", msg, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/tutor/history", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Messages []models.ChatLog `json:"messages"`
		Total    int              `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response json: %v", err)
	}
	if resp.Total != 4 {
		t.Fatalf("total = %d, want 4 (two exchanges)", resp.Total)
	}
	if resp.Messages[0].Content != "first" {
		t.Errorf("first message = %q, transcript must be chronological", resp.Messages[0].Content)
	}
}
