package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/assessment-session/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type AssessmentFilters struct {
	Status    *models.AssessmentStatus `json:"status"`
	CreatedBy *string                  `json:"created_by"`
	Limit     int                      `json:"limit"`
	Offset    int                      `json:"offset"`
	SortBy    string                   `json:"sort_by"`    // "created_at", "title"
	SortOrder string                   `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	AssessmentID *uint  `json:"assessment_id"`
	StudentID    string `json:"student_id"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
	SortBy       string `json:"sort_by"` // "completed_at", "score"
	SortOrder    string `json:"sort_order"`
}

// ===== REPOSITORY INTERFACES =====

// AssessmentRepository is the question source: assessments with their ordered
// questions.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id uint) (*models.Assessment, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Assessment, error)
	List(ctx context.Context, filters AssessmentFilters) ([]*models.Assessment, int64, error)
}

// ResultRepository is the results destination for completed sessions.
type ResultRepository interface {
	Create(ctx context.Context, result *models.SessionResult) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.SessionResult, error)
	List(ctx context.Context, filters ResultFilters) ([]*models.SessionResult, int64, error)
}

// Repository groups the repositories a service needs.
type Repository interface {
	Assessment() AssessmentRepository
	Result() ResultRepository
}

// IsNotFoundError reports whether err is a missing-record error
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
