package services

import (
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
)

// GradebookCell is one student × assessment slot.
type GradebookCell struct {
	AssessmentID uuid.UUID `json:"assessment_id"`
	Title        string    `json:"title"`
	Score        float64   `json:"score"`
	Status       string    `json:"status"` // graded | pending | submitted | not_started
}

type GradebookRow struct {
	StudentID            uuid.UUID       `json:"student_id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	Grades               []GradebookCell `json:"grades"`
	AverageScore         float64         `json:"average_score"`
	TotalAssessments     int             `json:"total_assessments"`
	CompletedAssessments int             `json:"completed_assessments"`
}

// BuildGradebook computes the per-student rollup across every assessment the
// teacher owns. It is read-only and recomputed from the source tables on
// every call; identical inputs give identical output (rows sorted by name,
// cells in assessment creation order). Students with no grade rows at all do
// not appear: the student set is derived from grades.
func BuildGradebook(db *gorm.DB, teacherID uuid.UUID) ([]GradebookRow, error) {
	var assessments []models.Assessment
	if err := db.Where("teacher_id = ?", teacherID).
		Order("created_at ASC").
		Find(&assessments).Error; err != nil {
		return nil, err
	}
	if len(assessments) == 0 {
		return []GradebookRow{}, nil
	}

	ids := make([]uuid.UUID, 0, len(assessments))
	for _, a := range assessments {
		ids = append(ids, a.ID)
	}

	var grades []models.Grade
	if err := db.Where("assessment_id IN ?", ids).Find(&grades).Error; err != nil {
		return nil, err
	}
	var submissions []models.Submission
	if err := db.Where("assessment_id IN ?", ids).Find(&submissions).Error; err != nil {
		return nil, err
	}

	type key struct{ student, assessment uuid.UUID }
	gradeByKey := make(map[key]models.Grade)
	studentSet := make(map[uuid.UUID]bool)
	for _, g := range grades {
		gradeByKey[key{g.StudentID, g.AssessmentID}] = g
		studentSet[g.StudentID] = true
	}
	submittedByKey := make(map[key]bool)
	for _, sub := range submissions {
		submittedByKey[key{sub.StudentID, sub.AssessmentID}] = true
	}

	studentIDs := make([]uuid.UUID, 0, len(studentSet))
	for id := range studentSet {
		studentIDs = append(studentIDs, id)
	}

	var profiles []models.StudentProfile
	if err := db.Where("user_id IN ?", studentIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	profileByUser := make(map[uuid.UUID]models.StudentProfile)
	for _, p := range profiles {
		profileByUser[p.UserID] = p
	}

	rows := make([]GradebookRow, 0, len(studentIDs))
	for _, sid := range studentIDs {
		row := GradebookRow{
			StudentID:        sid,
			TotalAssessments: len(assessments),
			Grades:           make([]GradebookCell, 0, len(assessments)),
		}
		if p, ok := profileByUser[sid]; ok {
			row.Name = p.Name
			row.Email = p.Email
		}

		var sum float64
		for _, a := range assessments {
			cell := GradebookCell{AssessmentID: a.ID, Title: a.Title, Status: "not_started"}
			if g, ok := gradeByKey[key{sid, a.ID}]; ok {
				cell.Score = g.Percentage
				if g.Status == models.GradingGraded {
					cell.Status = "graded"
					sum += g.Percentage
					row.CompletedAssessments++
				} else {
					cell.Status = "pending"
				}
			} else if submittedByKey[key{sid, a.ID}] {
				cell.Status = "submitted"
			}
			row.Grades = append(row.Grades, cell)
		}

		// Submitted-but-ungraded work is excluded from the mean, not
		// counted as zero.
		if row.CompletedAssessments > 0 {
			row.AverageScore = sum / float64(row.CompletedAssessments)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].StudentID.String() < rows[j].StudentID.String()
	})
	return rows, nil
}
