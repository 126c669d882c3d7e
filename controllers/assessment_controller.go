package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
	"github.com/classpilot/lms-backend/services"
)

type QuestionInput struct {
	QuestionText  string   `json:"question_text" binding:"required"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Marks         float64  `json:"marks"`
}

type RubricInput struct {
	Criteria []models.RubricCriterion `json:"criteria"`
}

func (q QuestionInput) toModel(assessmentID uuid.UUID, order int) (models.Question, error) {
	qt := models.QuestionType(q.QuestionType)
	if qt == "" {
		qt = models.QuestionMCQ
	}
	switch qt {
	case models.QuestionMCQ, models.QuestionShortAnswer, models.QuestionLongAnswer:
	default:
		return models.Question{}, fmt.Errorf("unknown question_type %q", q.QuestionType)
	}
	if qt == models.QuestionMCQ && len(q.Options) == 0 {
		return models.Question{}, fmt.Errorf("mcq question needs a non-empty options list")
	}

	marks := q.Marks
	if marks == 0 {
		marks = 1
	}

	var opts datatypes.JSON
	if q.Options != nil {
		raw, err := json.Marshal(q.Options)
		if err != nil {
			return models.Question{}, err
		}
		opts = datatypes.JSON(raw)
	}

	return models.Question{
		AssessmentID:  assessmentID,
		QuestionText:  q.QuestionText,
		QuestionType:  qt,
		Options:       opts,
		CorrectAnswer: q.CorrectAnswer,
		Marks:         marks,
		SortOrder:     order,
	}, nil
}

// CreateAssessment creates the assessment together with its question set and
// optional rubric.
func CreateAssessment(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	teacherUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	var req struct {
		Title        string          `json:"title" binding:"required"`
		Subject      string          `json:"subject"`
		ClassName    string          `json:"class_name"`
		Grade        string          `json:"grade"`
		Topic        string          `json:"topic"`
		Type         string          `json:"type"`
		Difficulty   string          `json:"difficulty"`
		TotalMarks   float64         `json:"total_marks"`
		PassingMarks float64         `json:"passing_marks"`
		TimeLimit    int             `json:"time_limit"`
		Status       string          `json:"status"`
		DueDate      *time.Time      `json:"due_date"`
		Questions    []QuestionInput `json:"questions"`
		Rubric       *RubricInput    `json:"rubric"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.AssessmentDraft
	if req.Status == string(models.AssessmentPublished) {
		status = models.AssessmentPublished
	}
	if req.TotalMarks == 0 {
		req.TotalMarks = 100
	}

	assessment := models.Assessment{
		TeacherID:      teacherUUID,
		Title:          req.Title,
		Subject:        req.Subject,
		ClassName:      req.ClassName,
		Grade:          req.Grade,
		Topic:          req.Topic,
		Type:           req.Type,
		Difficulty:     req.Difficulty,
		QuestionsCount: len(req.Questions),
		TotalMarks:     req.TotalMarks,
		PassingMarks:   req.PassingMarks,
		TimeLimit:      req.TimeLimit,
		Status:         status,
		DueDate:        req.DueDate,
	}

	questions := make([]models.Question, 0, len(req.Questions))
	for i, qi := range req.Questions {
		q, err := qi.toModel(uuid.Nil, i+1)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		questions = append(questions, q)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assessment).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].AssessmentID = assessment.ID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		if req.Rubric != nil && len(req.Rubric.Criteria) > 0 {
			raw, err := json.Marshal(req.Rubric.Criteria)
			if err != nil {
				return err
			}
			rubric := models.Rubric{
				AssessmentID: assessment.ID,
				Criteria:     datatypes.JSON(raw),
			}
			if err := tx.Create(&rubric).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot create assessment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     assessment.ID,
		"status": assessment.Status,
	})
}

// GetAssessments lists the current teacher's assessments; admins see all.
func GetAssessments(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	search := c.Query("search")
	subject := c.Query("subject")
	status := c.Query("status")

	query := db.Model(&models.Assessment{}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.sort_order ASC")
		}).
		Preload("Rubric")

	switch role {
	case string(models.RoleTeacher):
		teacherUUID, _ := uuid.Parse(userIDStr)
		query = query.Where("assessments.teacher_id = ?", teacherUUID)
	case string(models.RoleStudent):
		query = query.Where("assessments.status = ?", models.AssessmentPublished)
	}

	if subject != "" {
		query = query.Where("assessments.subject = ?", subject)
	}
	switch status {
	case "published":
		query = query.Where("assessments.status = ?", models.AssessmentPublished)
	case "draft":
		query = query.Where("assessments.status = ?", models.AssessmentDraft)
	}
	if search != "" {
		query = query.Where("assessments.title ILIKE ?", "%"+search+"%")
	}

	var assessments []models.Assessment
	if err := query.Order("assessments.created_at DESC").Find(&assessments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot list assessments"})
		return
	}

	// Students never receive the answer key.
	if role == string(models.RoleStudent) {
		for i := range assessments {
			for j := range assessments[i].Questions {
				assessments[i].Questions[j].CorrectAnswer = ""
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"assessments": assessments,
		"total":       len(assessments),
	})
}

func GetAssessmentDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	role := c.GetString("role")
	userIDStr := c.GetString("user_id")

	assessmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	query := db.Model(&models.Assessment{}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.sort_order ASC")
		}).
		Preload("Rubric")

	// Teachers only see their own; students only published ones.
	switch role {
	case string(models.RoleTeacher):
		teacherUUID, _ := uuid.Parse(userIDStr)
		query = query.Where("assessments.teacher_id = ?", teacherUUID)
	case string(models.RoleStudent):
		query = query.Where("assessments.status = ?", models.AssessmentPublished)
	}

	var assessment models.Assessment
	if err := query.Where("assessments.id = ?", assessmentUUID).First(&assessment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assessment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	// Students never receive the answer key.
	if role == string(models.RoleStudent) {
		for i := range assessment.Questions {
			assessment.Questions[i].CorrectAnswer = ""
		}
	}

	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}

// UpdateAssessment merges metadata; a non-nil questions list fully replaces
// the existing question set.
func UpdateAssessment(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	assessmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	userUUID, _ := uuid.Parse(userIDStr)

	var assessment models.Assessment
	if err := db.First(&assessment, "id = ?", assessmentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assessment not found"})
		return
	}

	if role != string(models.RoleAdmin) && assessment.TeacherID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot edit this assessment"})
		return
	}

	var req struct {
		Title        string           `json:"title"`
		Subject      string           `json:"subject"`
		ClassName    string           `json:"class_name"`
		Grade        string           `json:"grade"`
		Topic        string           `json:"topic"`
		Type         string           `json:"type"`
		Difficulty   string           `json:"difficulty"`
		TotalMarks   *float64         `json:"total_marks"`
		PassingMarks *float64         `json:"passing_marks"`
		TimeLimit    *int             `json:"time_limit"`
		Status       string           `json:"status"`
		DueDate      *time.Time       `json:"due_date"`
		Questions    *[]QuestionInput `json:"questions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// "Keep if absent" merge, same as the original's COALESCE updates.
	if req.Title != "" {
		assessment.Title = req.Title
	}
	if req.Subject != "" {
		assessment.Subject = req.Subject
	}
	if req.ClassName != "" {
		assessment.ClassName = req.ClassName
	}
	if req.Grade != "" {
		assessment.Grade = req.Grade
	}
	if req.Topic != "" {
		assessment.Topic = req.Topic
	}
	if req.Type != "" {
		assessment.Type = req.Type
	}
	if req.Difficulty != "" {
		assessment.Difficulty = req.Difficulty
	}
	if req.TotalMarks != nil {
		assessment.TotalMarks = *req.TotalMarks
	}
	if req.PassingMarks != nil {
		assessment.PassingMarks = *req.PassingMarks
	}
	if req.TimeLimit != nil {
		assessment.TimeLimit = *req.TimeLimit
	}
	if req.Status == string(models.AssessmentDraft) || req.Status == string(models.AssessmentPublished) {
		assessment.Status = models.AssessmentStatus(req.Status)
	}
	if req.DueDate != nil {
		assessment.DueDate = req.DueDate
	}

	var newQuestions []models.Question
	if req.Questions != nil {
		for i, qi := range *req.Questions {
			q, err := qi.toModel(assessment.ID, i+1)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			newQuestions = append(newQuestions, q)
		}
		assessment.QuestionsCount = len(newQuestions)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if req.Questions != nil {
			if err := tx.Where("assessment_id = ?", assessment.ID).Delete(&models.Question{}).Error; err != nil {
				return err
			}
			for i := range newQuestions {
				if err := tx.Create(&newQuestions[i]).Error; err != nil {
					return err
				}
			}
		}
		return tx.Save(&assessment).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot update assessment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteAssessment removes the assessment and every dependent row
// (grades, submissions, questions, rubric) in one transaction.
func DeleteAssessment(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")
	role := c.GetString("role")

	assessmentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}
	userUUID, _ := uuid.Parse(userIDStr)

	var assessment models.Assessment
	if err := db.First(&assessment, "id = ?", assessmentUUID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Assessment not found"})
		return
	}

	if role != string(models.RoleAdmin) && assessment.TeacherID != userUUID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You cannot delete this assessment"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assessment_id = ?", assessment.ID).Delete(&models.Grade{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assessment_id = ?", assessment.ID).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assessment_id = ?", assessment.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assessment_id = ?", assessment.ID).Delete(&models.Rubric{}).Error; err != nil {
			return err
		}
		return tx.Delete(&assessment).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot delete assessment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assessment deleted"})
}

// GenerateAssessment builds a draft assessment with Gemini. A material_id
// adds the material's extracted text as grounding context. AI failures here
// surface as 500, unlike the grading pipeline.
func GenerateAssessment(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	ai := c.MustGet("ai").(services.Completer)
	userIDStr := c.GetString("user_id")

	teacherUUID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	var req struct {
		Title        string  `json:"title" binding:"required"`
		Subject      string  `json:"subject" binding:"required"`
		Grade        string  `json:"grade" binding:"required"`
		Topic        string  `json:"topic" binding:"required"`
		Difficulty   string  `json:"difficulty"`
		NumQuestions int     `json:"num_questions"`
		TotalMarks   float64 `json:"total_marks"`
		MaterialID   string  `json:"material_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.NumQuestions == 0 {
		req.NumQuestions = 10
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	if req.TotalMarks == 0 {
		req.TotalMarks = 100
	}

	contextText := ""
	if req.MaterialID != "" {
		materialUUID, err := uuid.Parse(req.MaterialID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid material_id"})
			return
		}
		var material models.Material
		if err := db.First(&material, "id = ?", materialUUID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Material not found"})
			return
		}
		if material.Status != models.MaterialReady {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Material text is not ready yet"})
			return
		}
		contextText = material.ExtractedText
	}

	marksPerQuestion := req.TotalMarks / float64(req.NumQuestions)

	prompt := fmt.Sprintf(`Create %d assessment questions for a grade %s %s class on the topic "%s", difficulty %s.
Mix mcq and short_answer question types, mostly mcq.
Each mcq question has exactly 4 options and correct_answer must equal one option verbatim.
Each question is worth %.2f marks.

Return a JSON array:
[
  {
    "question_text": "...",
    "question_type": "mcq|short_answer",
    "options": ["...", "...", "...", "..."],
    "correct_answer": "...",
    "marks": %.2f
  }
]
Return only valid JSON, nothing else.`,
		req.NumQuestions, req.Grade, req.Subject, req.Topic, req.Difficulty, marksPerQuestion, marksPerQuestion)

	if contextText != "" {
		if len(contextText) > 6000 {
			contextText = contextText[:6000]
		}
		prompt += "\n\nBase the questions on this material:\n" + contextText
	}

	raw, err := ai.Complete(c.Request.Context(), "", prompt, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI generation failed: " + err.Error()})
		return
	}

	var generated []QuestionInput
	if err := json.Unmarshal([]byte(services.CleanJSON(raw)), &generated); err != nil || len(generated) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI returned an unusable question set"})
		return
	}

	assessment := models.Assessment{
		TeacherID:      teacherUUID,
		Title:          req.Title,
		Subject:        req.Subject,
		Grade:          req.Grade,
		Topic:          req.Topic,
		Type:           "quiz",
		Difficulty:     req.Difficulty,
		QuestionsCount: len(generated),
		TotalMarks:     req.TotalMarks,
		Status:         models.AssessmentDraft,
	}

	var questions []models.Question
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assessment).Error; err != nil {
			return err
		}
		for i, qi := range generated {
			// Drop malformed entries instead of failing the batch.
			if strings.TrimSpace(qi.QuestionText) == "" {
				continue
			}
			q, err := qi.toModel(assessment.ID, i+1)
			if err != nil {
				continue
			}
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
			questions = append(questions, q)
		}
		return tx.Model(&assessment).Update("questions_count", len(questions)).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot save generated assessment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Assessment generated",
		"assessment": assessment,
		"total":      len(questions),
		"questions":  questions,
	})
}
