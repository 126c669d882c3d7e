package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
	"github.com/classpilot/lms-backend/services"
	"github.com/classpilot/lms-backend/ws"
)

// SubmitAssessment is the grading pipeline entry point. The submission is
// always persisted; grading degrades to a pending grade when the AI gateway
// is unavailable, and the request still succeeds.
func SubmitAssessment(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	ai := c.MustGet("ai").(services.Completer)
	userIDStr := c.GetString("user_id")

	studentUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	var req struct {
		AssessmentID string            `json:"assessment_id" binding:"required"`
		Answers      map[string]string `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assessmentUUID, err := uuid.Parse(req.AssessmentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assessment_id"})
		return
	}

	var assessment models.Assessment
	if err := db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.sort_order ASC")
	}).Preload("Rubric").
		First(&assessment, "id = ?", assessmentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assessment not found"})
		return
	}

	if assessment.Status != models.AssessmentPublished {
		c.JSON(http.StatusForbidden, gin.H{"error": "Assessment is not published"})
		return
	}

	grader := services.NewGradingService(db, ai, slog.Default())
	submission, grade, err := grader.GradeSubmission(c.Request.Context(), &assessment, studentUUID, req.Answers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save submission"})
		return
	}

	ws.H.BroadcastGrade(studentUUID.String(), grade.ID.String(), string(grade.Status), grade.GradeLetter)

	c.JSON(http.StatusOK, gin.H{
		"submission_id": submission.ID,
		"grade":         grade,
	})
}

// GetSubmissionDetail lets a student review one of their own submissions,
// together with the grade when it exists.
func GetSubmissionDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	subUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	userUUID, _ := uuid.Parse(userIDStr)

	var submission models.Submission
	if err := db.Preload("Assessment").First(&submission, "id = ?", subUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	role := c.GetString("role")
	if role == string(models.RoleStudent) && submission.StudentID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot view this submission"})
		return
	}

	var grade models.Grade
	response := gin.H{"submission": submission}
	if err := db.Where("assessment_id = ? AND student_id = ?", submission.AssessmentID, submission.StudentID).
		Order("graded_at DESC").
		First(&grade).Error; err == nil {
		response["grade"] = grade
	}

	c.JSON(http.StatusOK, response)
}

// GetAssessmentSubmissions lists submissions for one assessment (teacher
// view), newest first, paginated.
func GetAssessmentSubmissions(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	assessmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assessment id"})
		return
	}

	var assessment models.Assessment
	if err := db.First(&assessment, "id = ?", assessmentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assessment not found"})
		return
	}
	if role == string(models.RoleTeacher) {
		teacherUUID, _ := uuid.Parse(userIDStr)
		if assessment.TeacherID != teacherUUID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You cannot view these submissions"})
			return
		}
	}

	page := 1
	limit := 10
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	offset := (page - 1) * limit

	query := db.Model(&models.Submission{}).Where("assessment_id = ?", assessmentUUID)

	switch c.Query("status") {
	case "graded":
		query = query.Where("status = ?", models.SubmissionGraded)
	case "submitted":
		query = query.Where("status = ?", models.SubmissionSubmitted)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot count submissions"})
		return
	}

	var submissions []models.Submission
	if err := query.
		Preload("Student").
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot list submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"total":       total,
		"page":        page,
		"limit":       limit,
	})
}
