package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/services"
)

// GetGradebook returns the per-student rollup for the current teacher.
// Admins can pass ?teacher_id= to view any teacher's gradebook.
func GetGradebook(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	teacherIDStr := userIDStr
	if role == "admin" {
		if q := c.Query("teacher_id"); q != "" {
			teacherIDStr = q
		}
	}

	teacherUUID, err := uuid.Parse(teacherIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid teacher id"})
		return
	}

	rows, err := services.BuildGradebook(db, teacherUUID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot build gradebook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  rows,
		"total": len(rows),
	})
}
