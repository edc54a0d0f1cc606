package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/repositories"
	"github.com/SAP-F-2025/assessment-session/internal/session"
)

// AssessmentService manages the question source
type AssessmentService interface {
	Create(ctx context.Context, req *CreateAssessmentRequest, creatorID string) (*AssessmentResponse, error)
	GetByID(ctx context.Context, id uint) (*AssessmentResponse, error)
	ImportFromExcel(ctx context.Context, reader io.Reader, req *ImportAssessmentRequest, creatorID string) (*ImportResult, error)
}

// SessionService hosts live assessment sessions
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest, studentID string) (*SessionResponse, error)
	Get(ctx context.Context, sessionID, studentID string) (*SessionResponse, error)
	Answer(ctx context.Context, sessionID string, req *AnswerRequest, studentID string) (*SessionResponse, error)
	Navigate(ctx context.Context, sessionID string, req *NavigateRequest, studentID string) (*SessionResponse, error)
	ToggleFlag(ctx context.Context, sessionID string, questionID int, studentID string) (*SessionResponse, error)
	Preview(ctx context.Context, sessionID, studentID string) (*session.Summary, error)
	Submit(ctx context.Context, sessionID string, req *SubmitRequest, studentID string) (*session.Result, error)
	Watch(ctx context.Context, sessionID, studentID string) (<-chan ClockUpdate, func(), error)
	Resume(ctx context.Context, sessionID, studentID string) (*SessionResponse, error)
	Abandon(ctx context.Context, sessionID, studentID string) error
	Shutdown()
}

// ResultService is the results destination
type ResultService interface {
	Record(ctx context.Context, result *models.SessionResult) error
	GetBySession(ctx context.Context, sessionID, studentID string) (*models.SessionResult, error)
	ListByAssessment(ctx context.Context, assessmentID uint, studentID string, filters repositories.ResultFilters) ([]*models.SessionResult, int64, error)
	ExportToExcel(ctx context.Context, assessmentID uint) ([]byte, error)
}

// ServiceManager gives handlers access to every service
type ServiceManager interface {
	Assessment() AssessmentService
	Session() SessionService
	Result() ResultService
	Shutdown()
}
