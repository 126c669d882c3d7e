package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRole string

const (
	ChatRoleUser   ChatRole = "user"
	ChatRoleSystem ChatRole = "system"
)

// ChatLog is the append-only tutoring transcript; rows are never updated.
type ChatLog struct {
	ID        uuid.UUID `gorm:"type:uuid;default:(gen_random_uuid());primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Student   User      `gorm:"foreignKey:StudentID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Role      ChatRole  `gorm:"type:varchar(10);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (l *ChatLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
