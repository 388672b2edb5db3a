package entity

import (
	"time"

	"prompt-builder-bot/pkg/store"

	"github.com/google/uuid"
)

// PromptArchive is a saved prompt document with the context it was built from
type PromptArchive struct {
	Id              uuid.UUID
	UserId          string
	TaskDescription string
	Answers         []store.Answer
	Recommendations store.Recommendation
	Prompt          string
	EditedCount     int
	SavedAt         time.Time
}
