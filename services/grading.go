package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
)

// GradingService turns a student's raw answers into a persisted Grade.
// MCQ questions are scored deterministically against correct_answer; only
// free-text questions go to the AI gateway. The pipeline never fails the
// request: an unreachable AI degrades the result to a pending grade.
type GradingService struct {
	db     *gorm.DB
	ai     Completer
	logger *slog.Logger
}

func NewGradingService(db *gorm.DB, ai Completer, logger *slog.Logger) *GradingService {
	return &GradingService{db: db, ai: ai, logger: logger}
}

// aiGradePayload is the strict shape requested from the grader prompt.
type aiGradePayload struct {
	Score          *float64 `json:"score"`
	Feedback       string   `json:"feedback"`
	RubricFeedback []any    `json:"rubric_feedback"`
	Corrections    []any    `json:"corrections"`
}

const pendingFeedback = "Your submission was received and is awaiting manual review."

// GradeSubmission persists the submission, scores it, and persists the grade.
// answers maps question id to the submitted text (for MCQ, the chosen option
// string). The returned error is only for submission persistence; every
// grading failure after that point degrades instead of erroring.
func (s *GradingService) GradeSubmission(ctx context.Context, assessment *models.Assessment, studentID uuid.UUID, answers map[string]string) (*models.Submission, *models.Grade, error) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot serialize answers: %w", err)
	}

	submission := models.Submission{
		AssessmentID: assessment.ID,
		StudentID:    studentID,
		Answers:      datatypes.JSON(raw),
		Status:       models.SubmissionSubmitted,
	}
	if err := s.db.Create(&submission).Error; err != nil {
		return nil, nil, fmt.Errorf("cannot save submission: %w", err)
	}

	grade := s.score(ctx, assessment, studentID, answers)
	grade.AssessmentID = assessment.ID
	grade.StudentID = studentID

	if err := s.db.Create(grade).Error; err != nil {
		return nil, nil, fmt.Errorf("cannot save grade: %w", err)
	}

	if grade.Status == models.GradingGraded {
		s.db.Model(&submission).Update("status", models.SubmissionGraded)
		submission.Status = models.SubmissionGraded
	}

	return &submission, grade, nil
}

// score computes the grade without touching the submissions table.
func (s *GradingService) score(ctx context.Context, assessment *models.Assessment, studentID uuid.UUID, answers map[string]string) *models.Grade {
	var (
		mcqEarned, mcqMax float64
		freeMax           float64
		freeQuestions     []models.Question
		corrections       []any
	)

	for _, q := range assessment.Questions {
		if q.QuestionType == models.QuestionMCQ {
			mcqMax += q.Marks
			given := answers[q.ID.String()]
			if answerMatches(given, q.CorrectAnswer) {
				mcqEarned += q.Marks
			} else {
				corrections = append(corrections, map[string]any{
					"question_id":    q.ID.String(),
					"your_answer":    given,
					"correct_answer": q.CorrectAnswer,
				})
			}
		} else {
			freeMax += q.Marks
			freeQuestions = append(freeQuestions, q)
		}
	}

	feedback := map[string]any{}
	freeScore := 0.0 // 0-100 over the free-text portion

	if len(freeQuestions) > 0 {
		raw, err := s.ai.Complete(ctx, graderSystemPrompt, s.buildGraderPrompt(assessment, freeQuestions, answers), true)
		if err != nil {
			// The AI gateway being down must never block the student:
			// the submission stands and the grade waits for review.
			s.logger.Error("AI grading failed, falling back to pending",
				"assessment_id", assessment.ID,
				"student_id", studentID,
				"error", err,
			)
			return &models.Grade{
				TotalScore:  0,
				MaxScore:    100,
				Percentage:  0,
				GradeLetter: "P",
				Status:      models.GradingPending,
				AIFeedback:  mustJSON(map[string]any{"feedback": pendingFeedback}),
			}
		}

		// Parse failure or a missing score field is not a failure of the
		// pipeline, just a zero for the free-text portion.
		var payload aiGradePayload
		if jsonErr := json.Unmarshal([]byte(CleanJSON(raw)), &payload); jsonErr != nil || payload.Score == nil {
			s.logger.Warn("unusable grading response, scoring free-text as 0",
				"assessment_id", assessment.ID,
				"response", raw,
			)
			feedback = ParseJSONObject(raw)
		} else {
			freeScore = clamp(*payload.Score, 0, 100)
			feedback = ParseJSONObject(raw)
		}
	} else {
		feedback["feedback"] = "Scored automatically."
	}
	if len(corrections) > 0 {
		feedback["corrections"] = corrections
	}

	totalMax := mcqMax + freeMax
	percentage := 0.0
	if totalMax > 0 {
		earned := mcqEarned + freeScore/100*freeMax
		percentage = math.Round(earned / totalMax * 100)
	}
	feedback["score"] = percentage

	return &models.Grade{
		TotalScore:  percentage,
		MaxScore:    100,
		Percentage:  percentage,
		GradeLetter: models.LetterForPercentage(percentage),
		Status:      models.GradingGraded,
		AIFeedback:  mustJSON(feedback),
	}
}

const graderSystemPrompt = `You are a strict but fair K-12 grader. You grade written answers against the question and, when provided, the rubric. Respond with a single JSON object and nothing else:
{"score": <number 0-100 for the answers as a whole>, "feedback": "<2-4 sentences for the student>", "rubric_feedback": [...], "corrections": [...]}`

func (s *GradingService) buildGraderPrompt(assessment *models.Assessment, questions []models.Question, answers map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Assessment: %s (subject: %s, grade %s)\n\n", assessment.Title, assessment.Subject, assessment.Grade)

	if assessment.Rubric != nil && len(assessment.Rubric.Criteria) > 0 {
		var criteria []models.RubricCriterion
		if err := json.Unmarshal(assessment.Rubric.Criteria, &criteria); err == nil {
			b.WriteString("Rubric:\n")
			for _, cr := range criteria {
				fmt.Fprintf(&b, "- %s (%.0f points): %s\n", cr.Criteria, cr.Points, cr.Description)
			}
			b.WriteString("\n")
		}
	}

	for i, q := range questions {
		fmt.Fprintf(&b, "Question %d (%.1f marks): %s\n", i+1, q.Marks, q.QuestionText)
		if q.CorrectAnswer != "" {
			fmt.Fprintf(&b, "Reference answer: %s\n", q.CorrectAnswer)
		}
		fmt.Fprintf(&b, "Student answer: %s\n\n", answers[q.ID.String()])
	}

	b.WriteString("Grade the student answers as a whole on a 0-100 scale, weighted by marks.")
	return b.String()
}

// answerMatches compares an MCQ answer against the correct option:
// whitespace-trimmed, case-insensitive.
func answerMatches(given, correct string) bool {
	return correct != "" && strings.EqualFold(strings.TrimSpace(given), strings.TrimSpace(correct))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mustJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
