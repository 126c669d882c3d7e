package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
)

// GetGrades lists grades across the teacher's assessments; admins see all.
func GetGrades(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	query := db.Model(&models.Grade{})
	if role == string(models.RoleTeacher) {
		teacherUUID, _ := uuid.Parse(userIDStr)
		query = query.
			Joins("JOIN assessments ON assessments.id = grades.assessment_id").
			Where("assessments.teacher_id = ?", teacherUUID)
	}

	var grades []models.Grade
	if err := query.Order("grades.graded_at DESC").Find(&grades).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot list grades"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": grades})
}

// GetStudentGrades returns one student's grades, newest first.
// Admin/teacher view; students use GetMyGrades.
func GetStudentGrades(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	studentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid student id"})
		return
	}

	var grades []models.Grade
	if err := db.Where("student_id = ?", studentUUID).
		Order("graded_at DESC").
		Find(&grades).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot list grades"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": grades})
}

// GetMyGrades is the student-facing variant of GetStudentGrades.
func GetMyGrades(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	studentUUID, _ := uuid.Parse(userIDStr)

	var grades []models.Grade
	if err := db.Preload("Assessment").
		Where("student_id = ?", studentUUID).
		Order("graded_at DESC").
		Find(&grades).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot list grades"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": grades})
}

// UpdateGrade is the manual override: a teacher overwrites the scored
// fields directly, bypassing the pipeline. The gradebook is always computed
// fresh, so nothing needs invalidating.
func UpdateGrade(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	gradeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var req struct {
		Percentage  *float64 `json:"percentage"`
		GradeLetter string   `json:"grade_letter"`
		TotalScore  *float64 `json:"total_score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var grade models.Grade
	if err := db.Preload("Assessment").First(&grade, "id = ?", gradeUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Grade not found"})
		return
	}

	if role == string(models.RoleTeacher) {
		teacherUUID, _ := uuid.Parse(userIDStr)
		if grade.Assessment.TeacherID != teacherUUID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You cannot edit this grade"})
			return
		}
	}

	if req.Percentage != nil {
		grade.Percentage = *req.Percentage
	}
	if req.TotalScore != nil {
		grade.TotalScore = *req.TotalScore
	}
	if req.GradeLetter != "" {
		grade.GradeLetter = req.GradeLetter
	} else if req.Percentage != nil {
		grade.GradeLetter = models.LetterForPercentage(*req.Percentage)
	}
	// A manual override is a review: the grade leaves the pending state.
	grade.Status = models.GradingGraded

	if err := db.Save(&grade).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot update grade"})
		return
	}

	db.Model(&models.Submission{}).
		Where("assessment_id = ? AND student_id = ?", grade.AssessmentID, grade.StudentID).
		Update("status", models.SubmissionGraded)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
