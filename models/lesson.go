package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LessonStatus string

const (
	LessonDraft     LessonStatus = "draft"
	LessonPublished LessonStatus = "published"
	LessonArchived  LessonStatus = "archived"
)

type Lesson struct {
	ID        uuid.UUID    `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	TeacherID uuid.UUID    `gorm:"type:uuid;not null" json:"teacher_id"`
	Teacher   User         `gorm:"foreignKey:TeacherID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Title     string       `gorm:"size:255;not null" json:"title"`
	ClassName string       `gorm:"size:50" json:"class_name"`
	Grade     string       `gorm:"size:20" json:"grade"`
	Subject   string       `gorm:"size:100" json:"subject"`
	Topic     string       `gorm:"size:255" json:"topic"`
	Content   string       `gorm:"type:text" json:"content"`
	Duration  int          `gorm:"default:0" json:"duration"` // minutes
	Status    LessonStatus `gorm:"type:varchar(20);default:'draft'" json:"status"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
