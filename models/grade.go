package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GradingStatus is the pipeline state, kept separate from the letter so that
// "pending manual review" is not encoded only through GradeLetter = "P".
type GradingStatus string

const (
	GradingPending GradingStatus = "pending"
	GradingGraded  GradingStatus = "graded"
)

type Grade struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	AssessmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Assessment   Assessment     `gorm:"foreignKey:AssessmentID;references:ID;constraint:OnDelete:CASCADE;" json:"assessment"`
	StudentID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	Student      User           `gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	TotalScore   float64        `gorm:"type:numeric(6,2);default:0" json:"total_score"`
	MaxScore     float64        `gorm:"type:numeric(6,2);default:100" json:"max_score"`
	Percentage   float64        `gorm:"type:numeric(5,2);default:0" json:"percentage"`
	GradeLetter  string         `gorm:"size:2" json:"grade_letter"` // A, B, C, D, or P while pending
	Status       GradingStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`
	AIFeedback   datatypes.JSON `gorm:"type:jsonb" json:"ai_feedback"`
	GradedAt     time.Time      `gorm:"autoCreateTime" json:"graded_at"`
}

// LetterForPercentage maps a 0-100 percentage to its letter. Boundaries are
// inclusive on the high letter: exactly 90 is an A, exactly 70 a C.
func LetterForPercentage(p float64) string {
	switch {
	case p >= 90:
		return "A"
	case p >= 80:
		return "B"
	case p >= 70:
		return "C"
	default:
		return "D"
	}
}

func (g *Grade) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
