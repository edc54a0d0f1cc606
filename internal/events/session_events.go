package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents the lifecycle events of an assessment session
type EventType string

const (
	EventSessionStarted     EventType = "session.started"
	EventSessionResumed     EventType = "session.resumed"
	EventSessionTimeExpired EventType = "session.time_expired"
	EventSessionSubmitted   EventType = "session.submitted"
	EventSessionAbandoned   EventType = "session.abandoned"
)

const (
	eventSource  = "assessment-session"
	eventVersion = "1.0"
)

// SessionEvent is the envelope for every published event
type SessionEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type SessionStartedEvent struct {
	SessionID       string    `json:"session_id"`
	AssessmentID    uint      `json:"assessment_id"`
	AssessmentTitle string    `json:"assessment_title"`
	StudentID       string    `json:"student_id"`
	QuestionCount   int       `json:"question_count"`
	DurationSeconds int       `json:"duration_seconds"`
	StartedAt       time.Time `json:"started_at"`
}

type SessionResumedEvent struct {
	SessionID        string `json:"session_id"`
	AssessmentID     uint   `json:"assessment_id"`
	StudentID        string `json:"student_id"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

type SessionTimeExpiredEvent struct {
	SessionID    string    `json:"session_id"`
	AssessmentID uint      `json:"assessment_id"`
	StudentID    string    `json:"student_id"`
	ExpiredAt    time.Time `json:"expired_at"`
	Answered     int       `json:"answered"`
}

type SessionSubmittedEvent struct {
	SessionID     string    `json:"session_id"`
	AssessmentID  uint      `json:"assessment_id"`
	StudentID     string    `json:"student_id"`
	Score         int       `json:"score"`
	Correct       int       `json:"correct"`
	Total         int       `json:"total"`
	PendingReview int       `json:"pending_review"`
	Reason        string    `json:"reason"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Destination   string    `json:"destination"`
}

type SessionAbandonedEvent struct {
	SessionID    string    `json:"session_id"`
	AssessmentID uint      `json:"assessment_id"`
	StudentID    string    `json:"student_id"`
	AbandonedAt  time.Time `json:"abandoned_at"`
	Answered     int       `json:"answered"`
}

// NewSessionEvent wraps a payload in an envelope
func NewSessionEvent(eventType EventType, data interface{}) *SessionEvent {
	return &SessionEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
