package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/middleware"
	"github.com/classpilot/lms-backend/models"
)

func gradeRouter(db *gorm.DB, userID uuid.UUID, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(userID, role), middleware.DBMiddleware(db))
	r.PUT("/grades/:id", UpdateGrade)
	r.GET("/gradebook", GetGradebook)
	return r
}

func TestUpdateGradeDerivesLetterAndResolvesPending(t *testing.T) {
	db := openTestDB(t)
	teacher := seedUser(t, db, "Teacher", "gc-t@school.test", models.RoleTeacher)
	student := seedUser(t, db, "Student", "gc-s@school.test", models.RoleStudent)
	a := seedAssessment(t, db, teacher.ID, models.AssessmentPublished)

	sub := models.Submission{AssessmentID: a.ID, StudentID: student.ID, Answers: datatypes.JSON([]byte(`{}`))}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	grade := models.Grade{
		AssessmentID: a.ID,
		StudentID:    student.ID,
		MaxScore:     100,
		GradeLetter:  "P",
		Status:       models.GradingPending,
	}
	if err := db.Create(&grade).Error; err != nil {
		t.Fatalf("seed grade: %v", err)
	}

	r := gradeRouter(db, teacher.ID, models.RoleTeacher)
	w := putJSON(t, r, "/grades/"+grade.ID.String(), gin.H{"percentage": 85})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var updated models.Grade
	if err := db.First(&updated, "id = ?", grade.ID).Error; err != nil {
		t.Fatalf("reload grade: %v", err)
	}
	if updated.Percentage != 85 || updated.GradeLetter != "B" {
		t.Errorf("grade = %v/%s, want 85/B", updated.Percentage, updated.GradeLetter)
	}
	if updated.Status != models.GradingGraded {
		t.Errorf("status = %q, a manual override must resolve the pending state", updated.Status)
	}

	var updatedSub models.Submission
	if err := db.First(&updatedSub, "id = ?", sub.ID).Error; err != nil {
		t.Fatalf("reload submission: %v", err)
	}
	if updatedSub.Status != models.SubmissionGraded {
		t.Errorf("submission status = %q, want graded", updatedSub.Status)
	}
}

func TestUpdateGradeForbiddenForOtherTeacher(t *testing.T) {
	db := openTestDB(t)
	owner := seedUser(t, db, "Owner", "gd-o@school.test", models.RoleTeacher)
	other := seedUser(t, db, "Other", "gd-x@school.test", models.RoleTeacher)
	student := seedUser(t, db, "Student", "gd-s@school.test", models.RoleStudent)
	a := seedAssessment(t, db, owner.ID, models.AssessmentPublished)

	grade := models.Grade{AssessmentID: a.ID, StudentID: student.ID, Status: models.GradingPending, GradeLetter: "P"}
	if err := db.Create(&grade).Error; err != nil {
		t.Fatalf("seed grade: %v", err)
	}

	r := gradeRouter(db, other.ID, models.RoleTeacher)
	w := putJSON(t, r, "/grades/"+grade.ID.String(), gin.H{"percentage": 100})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestGetGradebookReturnsTeacherRollup(t *testing.T) {
	db := openTestDB(t)
	teacher := seedUser(t, db, "Teacher", "ge-t@school.test", models.RoleTeacher)
	student := seedUser(t, db, "Student", "ge-s@school.test", models.RoleStudent)
	profile := models.StudentProfile{UserID: student.ID, Name: "Student", Email: "ge-s@school.test"}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	a := seedAssessment(t, db, teacher.ID, models.AssessmentPublished)
	grade := models.Grade{AssessmentID: a.ID, StudentID: student.ID, Percentage: 75, GradeLetter: "C", Status: models.GradingGraded}
	if err := db.Create(&grade).Error; err != nil {
		t.Fatalf("seed grade: %v", err)
	}

	r := gradeRouter(db, teacher.ID, models.RoleTeacher)
	req := httptest.NewRequest(http.MethodGet, "/gradebook", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data []struct {
			Name         string  `json:"name"`
			AverageScore float64 `json:"average_score"`
		} `json:"data"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response json: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("total = %d, rows = %d, want 1 each", resp.Total, len(resp.Data))
	}
	if resp.Data[0].Name != "Student" || resp.Data[0].AverageScore != 75 {
		t.Errorf("row = %+v, want Student/75", resp.Data[0])
	}
}
