package services

import (
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/session"
)

// ===== ASSESSMENT REQUESTS =====

type QuestionInput struct {
	Kind    string           `json:"kind" validate:"required,question_kind"`
	Prompt  string           `json:"prompt" validate:"required,max=5000"`
	Options []session.Option `json:"options,omitempty" validate:"omitempty,max=10"`
	// Correct lists option ids for multiple choice, or "true"/"false".
	Correct   []string `json:"correct,omitempty"`
	Reference *string  `json:"reference,omitempty" validate:"omitempty,max=5000"`
}

type CreateAssessmentRequest struct {
	Title           string          `json:"title" validate:"required,min=1,max=200"`
	Description     *string         `json:"description" validate:"omitempty,max=1000"`
	DurationSeconds int             `json:"duration_seconds" validate:"required,min=1,max=86400"`
	Questions       []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

type ImportAssessmentRequest struct {
	Title           string `form:"title" json:"title" validate:"required,min=1,max=200"`
	DurationSeconds int    `form:"duration_seconds" json:"duration_seconds" validate:"required,min=1,max=86400"`
}

// ===== ASSESSMENT RESPONSES =====

// AssessmentResponse never carries answer keys
type AssessmentResponse struct {
	ID              uint                    `json:"id"`
	Title           string                  `json:"title"`
	Description     *string                 `json:"description,omitempty"`
	DurationSeconds int                     `json:"duration_seconds"`
	Status          models.AssessmentStatus `json:"status"`
	CreatedBy       string                  `json:"created_by"`
	CreatedAt       time.Time               `json:"created_at"`
	QuestionsCount  int                     `json:"questions_count"`
	Questions       []session.QuestionView  `json:"questions"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ImportResult struct {
	Assessment   *AssessmentResponse `json:"assessment,omitempty"`
	TotalRows    int                 `json:"total_rows"`
	SuccessCount int                 `json:"success_count"`
	ErrorCount   int                 `json:"error_count"`
	Errors       []ImportRowError    `json:"errors"`
}

// ===== SESSION REQUESTS =====

type StartSessionRequest struct {
	AssessmentID uint `json:"assessment_id" validate:"required"`
}

// AnswerRequest sets the answer of one question. Values is used for
// multi-select questions; an empty Value clears the answer.
type AnswerRequest struct {
	QuestionID int      `json:"question_id" validate:"required"`
	Value      *string  `json:"value"`
	Values     []string `json:"values" validate:"omitempty,max=10"`
}

type NavigateRequest struct {
	Action string `json:"action" validate:"required,navigate_action"`
	Index  *int   `json:"index"`
}

// SubmitRequest must carry confirmed=true; the gate rejects anything else.
type SubmitRequest struct {
	Confirmed bool `json:"confirmed"`
}

// ===== SESSION RESPONSES =====

type SessionResponse struct {
	SessionID       string    `json:"session_id"`
	StudentID       string    `json:"student_id"`
	AssessmentTitle string    `json:"assessment_title"`
	StartedAt       time.Time `json:"started_at"`
	session.State
}

// ClockUpdate is pushed to watchers on every tick and once more on completion
type ClockUpdate struct {
	SessionID string          `json:"session_id"`
	Remaining int             `json:"remaining_seconds"`
	Display   string          `json:"display"`
	Status    session.Status  `json:"status"`
	Result    *session.Result `json:"result,omitempty"`
}
