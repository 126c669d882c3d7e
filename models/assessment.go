package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssessmentStatus string

const (
	AssessmentDraft     AssessmentStatus = "draft"
	AssessmentPublished AssessmentStatus = "published"
)

type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionShortAnswer QuestionType = "short_answer"
	QuestionLongAnswer  QuestionType = "long_answer"
)

type Assessment struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	TeacherID      uuid.UUID        `gorm:"type:uuid;not null" json:"teacher_id"`
	Teacher        User             `gorm:"foreignKey:TeacherID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Title          string           `gorm:"size:255;not null" json:"title"`
	Subject        string           `gorm:"size:100" json:"subject"`
	ClassName      string           `gorm:"size:50" json:"class_name"`
	Grade          string           `gorm:"size:20" json:"grade"`
	Topic          string           `gorm:"size:255" json:"topic"`
	Type           string           `gorm:"size:50" json:"type"`
	Difficulty     string           `gorm:"size:20;default:'medium'" json:"difficulty"`
	QuestionsCount int              `gorm:"default:0" json:"questions_count"`
	TotalMarks     float64          `gorm:"type:numeric(6,2);default:100" json:"total_marks"`
	PassingMarks   float64          `gorm:"type:numeric(6,2);default:40" json:"passing_marks"`
	TimeLimit      int              `gorm:"default:0" json:"time_limit"` // minutes, 0 = unlimited
	Status         AssessmentStatus `gorm:"type:varchar(20);default:'draft'" json:"status"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`

	Questions []Question `gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE;" json:"questions,omitempty"`
	Rubric    *Rubric    `gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE;" json:"rubric,omitempty"`
}

// Options is stored as a JSON array of strings; order is the display order
// and must survive a round trip untouched.
type Question struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	AssessmentID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Assessment    Assessment     `gorm:"foreignKey:AssessmentID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	QuestionText  string         `gorm:"type:text;not null" json:"question_text"`
	QuestionType  QuestionType   `gorm:"type:varchar(20);not null;default:'mcq'" json:"question_type"`
	Options       datatypes.JSON `gorm:"type:jsonb" json:"options,omitempty"`
	CorrectAnswer string         `gorm:"type:text" json:"correct_answer"`
	Marks         float64        `gorm:"type:numeric(6,2);default:1" json:"marks"`
	SortOrder     int            `gorm:"default:0" json:"sort_order"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// Criteria is a JSON array of {criteria, points, description} objects.
type Rubric struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	AssessmentID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"assessment_id"`
	Assessment   Assessment     `gorm:"foreignKey:AssessmentID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Criteria     datatypes.JSON `gorm:"type:jsonb" json:"criteria"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// RubricCriterion is the element shape of Rubric.Criteria, validated on read.
type RubricCriterion struct {
	Criteria    string  `json:"criteria"`
	Points      float64 `json:"points"`
	Description string  `json:"description"`
}

func (a *Assessment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (r *Rubric) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
