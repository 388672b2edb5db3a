package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PromptArchive struct {
	Id              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId          string         `gorm:"type:text;not null;index"`
	TaskDescription string         `gorm:"type:text;not null"`
	Answers         datatypes.JSON `gorm:"type:jsonb"`
	Recommendations datatypes.JSON `gorm:"type:jsonb"`
	Prompt          string         `gorm:"type:text;not null"`
	EditedCount     int            `gorm:"not null"`
	SavedAt         time.Time      `gorm:"not null;index"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
}

func (PromptArchive) TableName() string {
	return "prompt_archives"
}
