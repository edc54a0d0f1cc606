package postgres

import (
	"context"

	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create stores a result. A second result for the same session is ignored so
// a retried finalization stays idempotent.
func (r *ResultPostgreSQL) Create(ctx context.Context, result *models.SessionResult) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
		Create(result).Error
}

func (r *ResultPostgreSQL) GetBySessionID(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	var result models.SessionResult
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.SessionResult, int64, error) {
	var results []*models.SessionResult
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SessionResult{})
	if filters.AssessmentID != nil {
		query = query.Where("assessment_id = ?", *filters.AssessmentID)
	}
	if filters.StudentID != "" {
		query = query.Where("student_id = ?", filters.StudentID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		"created_at", "completed_at", "score")
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, err
	}

	return results, total, nil
}
