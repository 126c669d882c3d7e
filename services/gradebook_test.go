package services

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/classpilot/lms-backend/models"
)

func TestBuildGradebookAveragesGradedCellsOnly(t *testing.T) {
	db := openTestDB(t)
	teacher := createTeacher(t, db, "gb1@school.test")
	alice := createStudent(t, db, "Alice", "gb-alice@school.test")

	a1 := createAssessment(t, db, teacher.ID, mcqQuestion("q", "A", 1, 0))
	a2 := createAssessment(t, db, teacher.ID, mcqQuestion("q", "A", 1, 0))
	a3 := createAssessment(t, db, teacher.ID, mcqQuestion("q", "A", 1, 0))

	seedGrade(t, db, a1.ID, alice.ID, 80, models.GradingGraded)
	seedGrade(t, db, a2.ID, alice.ID, 60, models.GradingGraded)
	// a3: submitted, never graded.
	seedSubmission(t, db, a3.ID, alice.ID)

	rows, err := BuildGradebook(db, teacher.ID)
	if err != nil {
		t.Fatalf("BuildGradebook: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}

	row := rows[0]
	if row.Name != "Alice" {
		t.Errorf("name = %q, want Alice", row.Name)
	}
	if row.AverageScore != 70 {
		t.Errorf("average = %v, want 70 (ungraded work excluded, not zeroed)", row.AverageScore)
	}
	if row.TotalAssessments != 3 || row.CompletedAssessments != 2 {
		t.Errorf("totals = %d/%d, want 3 total, 2 completed", row.TotalAssessments, row.CompletedAssessments)
	}
	if len(row.Grades) != 3 {
		t.Fatalf("cells = %d, want 3", len(row.Grades))
	}
	if row.Grades[0].Status != "graded" || row.Grades[1].Status != "graded" || row.Grades[2].Status != "submitted" {
		t.Errorf("cell statuses = %s/%s/%s, want graded/graded/submitted",
			row.Grades[0].Status, row.Grades[1].Status, row.Grades[2].Status)
	}
}

func TestBuildGradebookIsIdempotentAndSorted(t *testing.T) {
	db := openTestDB(t)
	teacher := createTeacher(t, db, "gb2@school.test")
	bob := createStudent(t, db, "Bob", "gb-bob@school.test")
	alice := createStudent(t, db, "Alice", "gb-alice2@school.test")

	a1 := createAssessment(t, db, teacher.ID, mcqQuestion("q", "A", 1, 0))
	seedGrade(t, db, a1.ID, bob.ID, 90, models.GradingGraded)
	seedGrade(t, db, a1.ID, alice.ID, 70, models.GradingGraded)

	first, err := BuildGradebook(db, teacher.ID)
	if err != nil {
		t.Fatalf("BuildGradebook: %v", err)
	}
	second, err := BuildGradebook(db, teacher.ID)
	if err != nil {
		t.Fatalf("BuildGradebook: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same inputs must produce identical output")
	}
	if len(first) != 2 || first[0].Name != "Alice" || first[1].Name != "Bob" {
		t.Errorf("rows must be sorted by name, got %+v", first)
	}
}

func TestBuildGradebookOmitsStudentsWithoutGrades(t *testing.T) {
	db := openTestDB(t)
	teacher := createTeacher(t, db, "gb3@school.test")
	graded := createStudent(t, db, "Grace", "gb-grace@school.test")
	lurker := createStudent(t, db, "Lars", "gb-lars@school.test")

	a1 := createAssessment(t, db, teacher.ID, mcqQuestion("q", "A", 1, 0))
	seedGrade(t, db, a1.ID, graded.ID, 100, models.GradingGraded)
	// Lars submitted but has no grade row, so he has no gradebook row either.
	seedSubmission(t, db, a1.ID, lurker.ID)

	rows, err := BuildGradebook(db, teacher.ID)
	if err != nil {
		t.Fatalf("BuildGradebook: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Grace" {
		t.Errorf("students without grades must not appear, got %+v", rows)
	}
}

func TestBuildGradebookPendingCellsExcludedFromAverage(t *testing.T) {
	db := openTestDB(t)
	teacher := createTeacher(t, db, "gb4@school.test")
	alice := createStudent(t, db, "Alice", "gb-alice3@school.test")

	a1 := createAssessment(t, db, teacher.ID, mcqQuestion("q", "A", 1, 0))
	a2 := createAssessment(t, db, teacher.ID, mcqQuestion("q", "A", 1, 0))
	seedGrade(t, db, a1.ID, alice.ID, 100, models.GradingGraded)
	seedGrade(t, db, a2.ID, alice.ID, 0, models.GradingPending)

	rows, err := BuildGradebook(db, teacher.ID)
	if err != nil {
		t.Fatalf("BuildGradebook: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].AverageScore != 100 {
		t.Errorf("average = %v, pending cells must not drag it down", rows[0].AverageScore)
	}
	if rows[0].Grades[1].Status != "pending" {
		t.Errorf("cell status = %q, want pending", rows[0].Grades[1].Status)
	}
}

func seedGrade(t *testing.T, db *gorm.DB, assessmentID, studentID uuid.UUID, pct float64, status models.GradingStatus) {
	t.Helper()
	letter := models.LetterForPercentage(pct)
	if status == models.GradingPending {
		letter = "P"
	}
	g := models.Grade{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		TotalScore:   pct,
		MaxScore:     100,
		Percentage:   pct,
		GradeLetter:  letter,
		Status:       status,
		AIFeedback:   datatypes.JSON([]byte(`{}`)),
	}
	if err := db.Create(&g).Error; err != nil {
		t.Fatalf("seed grade: %v", err)
	}
}

func seedSubmission(t *testing.T, db *gorm.DB, assessmentID, studentID uuid.UUID) {
	t.Helper()
	s := models.Submission{
		AssessmentID: assessmentID,
		StudentID:    studentID,
		Answers:      datatypes.JSON([]byte(`{}`)),
		Status:       models.SubmissionSubmitted,
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed submission: %v", err)
	}
}
