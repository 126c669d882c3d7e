package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
	"github.com/classpilot/lms-backend/services"
)

func CreateLesson(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	teacherUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	var req struct {
		Title     string `json:"title" binding:"required"`
		ClassName string `json:"class_name"`
		Grade     string `json:"grade"`
		Subject   string `json:"subject"`
		Topic     string `json:"topic"`
		Content   string `json:"content"`
		Duration  int    `json:"duration"`
		Status    string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.LessonDraft
	switch models.LessonStatus(req.Status) {
	case models.LessonPublished, models.LessonArchived:
		status = models.LessonStatus(req.Status)
	}

	lesson := models.Lesson{
		TeacherID: teacherUUID,
		Title:     req.Title,
		ClassName: req.ClassName,
		Grade:     req.Grade,
		Subject:   req.Subject,
		Topic:     req.Topic,
		Content:   req.Content,
		Duration:  req.Duration,
		Status:    status,
	}

	if err := db.Create(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot create lesson"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lesson": lesson})
}

func GetLessons(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	query := db.Model(&models.Lesson{})

	switch role {
	case string(models.RoleTeacher):
		teacherUUID, _ := uuid.Parse(userIDStr)
		query = query.Where("teacher_id = ?", teacherUUID)
	case string(models.RoleStudent):
		query = query.Where("status = ?", models.LessonPublished)
	}

	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if status := c.Query("status"); status != "" && role != string(models.RoleStudent) {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}

	var lessons []models.Lesson
	if err := query.Order("created_at DESC").Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot list lessons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lessons": lessons,
		"total":   len(lessons),
	})
}

func GetLessonDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	role := c.GetString("role")

	lessonUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	query := db.Model(&models.Lesson{})
	if role == string(models.RoleStudent) {
		query = query.Where("status = ?", models.LessonPublished)
	}

	var lesson models.Lesson
	if err := query.Where("id = ?", lessonUUID).First(&lesson).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lesson": lesson})
}

func UpdateLesson(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	lessonUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	userUUID, _ := uuid.Parse(userIDStr)

	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", lessonUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		return
	}

	if role != string(models.RoleAdmin) && lesson.TeacherID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot edit this lesson"})
		return
	}

	var req struct {
		Title     string `json:"title"`
		ClassName string `json:"class_name"`
		Grade     string `json:"grade"`
		Subject   string `json:"subject"`
		Topic     string `json:"topic"`
		Content   string `json:"content"`
		Duration  *int   `json:"duration"`
		Status    string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != "" {
		lesson.Title = req.Title
	}
	if req.ClassName != "" {
		lesson.ClassName = req.ClassName
	}
	if req.Grade != "" {
		lesson.Grade = req.Grade
	}
	if req.Subject != "" {
		lesson.Subject = req.Subject
	}
	if req.Topic != "" {
		lesson.Topic = req.Topic
	}
	if req.Content != "" {
		lesson.Content = req.Content
	}
	if req.Duration != nil {
		lesson.Duration = *req.Duration
	}
	switch models.LessonStatus(req.Status) {
	case models.LessonDraft, models.LessonPublished, models.LessonArchived:
		lesson.Status = models.LessonStatus(req.Status)
	}

	if err := db.Save(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot update lesson"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "lesson": lesson})
}

func DeleteLesson(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	lessonUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	userUUID, _ := uuid.Parse(userIDStr)

	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", lessonUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		return
	}

	if role != string(models.RoleAdmin) && lesson.TeacherID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete this lesson"})
		return
	}

	if err := db.Delete(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot delete lesson"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted"})
}

// GenerateLesson drafts lesson content with Gemini. AI failures surface as
// 500 here; only the grading pipeline degrades silently.
func GenerateLesson(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	ai := c.MustGet("ai").(services.Completer)
	userIDStr := c.GetString("user_id")

	teacherUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	var req struct {
		Title     string `json:"title" binding:"required"`
		Subject   string `json:"subject" binding:"required"`
		Grade     string `json:"grade" binding:"required"`
		Topic     string `json:"topic" binding:"required"`
		ClassName string `json:"class_name"`
		Duration  int    `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Duration == 0 {
		req.Duration = 45
	}

	prompt := fmt.Sprintf(`Write a complete lesson plan for a grade %s %s class.
Topic: %s
Duration: %d minutes

Structure it with: learning objectives, materials needed, warm-up activity,
main instruction, guided practice, independent practice, and assessment ideas.
Write it in plain prose a teacher can use directly.`,
		req.Grade, req.Subject, req.Topic, req.Duration)

	content, err := ai.Complete(c.Request.Context(), "", prompt, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI generation failed: " + err.Error()})
		return
	}

	lesson := models.Lesson{
		TeacherID: teacherUUID,
		Title:     req.Title,
		ClassName: req.ClassName,
		Grade:     req.Grade,
		Subject:   req.Subject,
		Topic:     req.Topic,
		Content:   content,
		Duration:  req.Duration,
		Status:    models.LessonDraft,
	}

	if err := db.Create(&lesson).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save generated lesson"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Lesson generated",
		"lesson":  lesson,
	})
}
