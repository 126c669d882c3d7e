package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
	"github.com/classpilot/lms-backend/services"
)

const tutorSystemPrompt = `You are a friendly K-12 tutor. Explain concepts step by step at the student's level, ask guiding questions instead of giving away answers to homework, and keep replies short and encouraging.`

// tutorHistoryLimit caps how much transcript is replayed into the prompt.
const tutorHistoryLimit = 20

// TutorChat appends the student message to the transcript, asks the AI for a
// reply with recent history as context, and appends the reply too. The
// transcript is append-only.
func TutorChat(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	ai := c.MustGet("ai").(services.Completer)
	userIDStr := c.GetString("user_id")

	studentUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userLog := models.ChatLog{
		StudentID: studentUUID,
		Role:      models.ChatRoleUser,
		Content:   req.Message,
	}
	if err := db.Create(&userLog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save message"})
		return
	}

	var history []models.ChatLog
	db.Where("student_id = ?", studentUUID).
		Order("timestamp DESC").
		Limit(tutorHistoryLimit).
		Find(&history)

	var b strings.Builder
	for i := len(history) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%s: %s\n", history[i].Role, history[i].Content)
	}
	b.WriteString("Reply to the student's last message.")

	reply, err := ai.Complete(c.Request.Context(), tutorSystemPrompt, b.String(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Tutor is unavailable: " + err.Error()})
		return
	}

	replyLog := models.ChatLog{
		StudentID: studentUUID,
		Role:      models.ChatRoleSystem,
		Content:   reply,
	}
	if err := db.Create(&replyLog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save reply"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func GetTutorHistory(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	studentUUID, _ := uuid.Parse(userIDStr)

	var logs []models.ChatLog
	if err := db.Where("student_id = ?", studentUUID).
		Order("timestamp ASC").
		Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot load transcript"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": logs,
		"total":    len(logs),
	})
}
