package models

import (
	"time"

	"gorm.io/datatypes"
)

// SessionResult is what the results destination keeps for a completed session.
type SessionResult struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	SessionID     string         `json:"session_id" gorm:"size:36;uniqueIndex;not null"`
	AssessmentID  uint           `json:"assessment_id" gorm:"not null;index"`
	StudentID     string         `json:"student_id" gorm:"size:64;not null;index"`
	Score         int            `json:"score" gorm:"not null"`
	Correct       int            `json:"correct"`
	Total         int            `json:"total"`
	Answered      int            `json:"answered"`
	PendingReview int            `json:"pending_review"`
	EndReason     string         `json:"end_reason" gorm:"size:16"`
	Breakdown     datatypes.JSON `json:"breakdown" gorm:"type:jsonb"` // []session.QuestionOutcome
	Answers       datatypes.JSON `json:"answers" gorm:"type:jsonb"`   // map[questionID][]string
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   time.Time      `json:"completed_at"`
	CreatedAt     time.Time      `json:"created_at"`

	Assessment *Assessment `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
}

func (SessionResult) TableName() string {
	return "session_results"
}
