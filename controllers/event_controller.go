package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
)

func CreateEvent(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	teacherUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	var req struct {
		Title       string    `json:"title" binding:"required"`
		Description string    `json:"description"`
		EventDate   time.Time `json:"event_date" binding:"required"`
		EventType   string    `json:"event_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.EventType == "" {
		req.EventType = "general"
	}

	event := models.Event{
		TeacherID:   teacherUUID,
		Title:       req.Title,
		Description: req.Description,
		EventDate:   req.EventDate,
		EventType:   req.EventType,
	}
	if err := db.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot create event"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": event})
}

func GetEvents(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	query := db.Model(&models.Event{})
	if role == string(models.RoleTeacher) {
		teacherUUID, _ := uuid.Parse(userIDStr)
		query = query.Where("teacher_id = ?", teacherUUID)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("event_date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("event_date <= ?", to)
	}

	var events []models.Event
	if err := query.Order("event_date ASC").Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot list events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

func UpdateEvent(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	eventUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	userUUID, _ := uuid.Parse(userIDStr)

	var event models.Event
	if err := db.First(&event, "id = ?", eventUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	if role != string(models.RoleAdmin) && event.TeacherID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot edit this event"})
		return
	}

	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		EventDate   *time.Time `json:"event_date"`
		EventType   string     `json:"event_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.EventDate != nil {
		event.EventDate = *req.EventDate
	}
	if req.EventType != "" {
		event.EventType = req.EventType
	}

	if err := db.Save(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot update event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "event": event})
}

func DeleteEvent(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	eventUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	userUUID, _ := uuid.Parse(userIDStr)

	var event models.Event
	if err := db.First(&event, "id = ?", eventUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	if role != string(models.RoleAdmin) && event.TeacherID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete this event"})
		return
	}

	if err := db.Delete(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
