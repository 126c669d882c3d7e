package controllers

import (
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
	"github.com/classpilot/lms-backend/services"
	"github.com/classpilot/lms-backend/utils"
	"github.com/classpilot/lms-backend/ws"
)

// UploadMaterial stores the file in Supabase and extracts its text in the
// background, pushing progress over the websocket hub.
func UploadMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	teacherUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	title := c.PostForm("title")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file attached"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".pdf", ".docx", ".txt":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only .pdf, .docx and .txt files are supported"})
		return
	}

	if title == "" {
		title = strings.TrimSuffix(fileHeader.Filename, ext)
	}

	material := models.Material{
		TeacherID: teacherUUID,
		Title:     title,
		FileType:  strings.TrimPrefix(ext, "."),
		Status:    models.MaterialUploaded,
	}
	if err := db.Create(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot create material"})
		return
	}

	objectName := slug.Make(title) + "-" + material.ID.String()
	fileURL, err := utils.UploadMaterialToSupabase(fileHeader, objectName)
	if err != nil {
		db.Delete(&material)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed: " + err.Error()})
		return
	}

	db.Model(&material).Updates(map[string]interface{}{
		"file_url": fileURL,
		"status":   models.MaterialProcessing,
	})
	material.FileURL = fileURL
	material.Status = models.MaterialProcessing

	go extractMaterialText(db, material.ID, fileHeader)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Material uploaded, text extraction in progress",
		"material": material,
	})
}

// extractMaterialText runs after the response is sent; status changes are
// broadcast to websocket subscribers of this material.
func extractMaterialText(db *gorm.DB, materialID uuid.UUID, fileHeader *multipart.FileHeader) {
	ws.H.BroadcastMaterial(materialID.String(), string(models.MaterialProcessing), 0.2, "")

	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".pdf":
		f, openErr := fileHeader.Open()
		if openErr != nil {
			err = openErr
			break
		}
		defer f.Close()
		text, err = services.ExtractTextFromPDF(f)
	case ".docx":
		text, err = services.ExtractTextFromDOCX(fileHeader)
	case ".txt":
		text, err = services.ExtractTextFromTXT(fileHeader)
	}

	if err != nil {
		log.Printf("material %s: text extraction failed: %v", materialID, err)
		db.Model(&models.Material{}).Where("id = ?", materialID).
			Update("status", models.MaterialFailed)
		ws.H.BroadcastMaterial(materialID.String(), string(models.MaterialFailed), 1, err.Error())
		return
	}

	db.Model(&models.Material{}).Where("id = ?", materialID).
		Updates(map[string]interface{}{
			"extracted_text": text,
			"status":         models.MaterialReady,
		})
	ws.H.BroadcastMaterial(materialID.String(), string(models.MaterialReady), 1, "")
}

func GetMaterials(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	query := db.Model(&models.Material{})
	if role == string(models.RoleTeacher) {
		teacherUUID, _ := uuid.Parse(userIDStr)
		query = query.Where("teacher_id = ?", teacherUUID)
	}

	var materials []models.Material
	if err := query.Order("created_at DESC").Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot list materials"})
		return
	}

	// The extracted text can be large; the list view omits it.
	for i := range materials {
		materials[i].ExtractedText = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"materials": materials,
		"total":     len(materials),
	})
}

func DeleteMaterial(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	materialUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	userUUID, _ := uuid.Parse(userIDStr)

	var material models.Material
	if err := db.First(&material, "id = ?", materialUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
		return
	}

	if role != string(models.RoleAdmin) && material.TeacherID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete this material"})
		return
	}

	if err := utils.DeleteFileFromSupabase(material.FileURL); err != nil {
		log.Printf("material %s: cannot delete stored file: %v", material.ID, err)
	}

	if err := db.Delete(&material).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot delete material"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Material deleted"})
}
