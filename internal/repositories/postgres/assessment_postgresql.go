package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/repositories"
	"gorm.io/gorm"
)

type AssessmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create stores an assessment together with its questions
func (a *AssessmentPostgreSQL) Create(ctx context.Context, assessment *models.Assessment) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		questions := assessment.Questions
		assessment.Questions = nil
		if assessment.Status == "" {
			assessment.Status = models.StatusActive
		}

		if err := tx.Create(assessment).Error; err != nil {
			return fmt.Errorf("failed to create assessment: %w", err)
		}

		for i := range questions {
			questions[i].AssessmentID = assessment.ID
			questions[i].Order = i + 1
		}
		if len(questions) > 0 {
			if err := tx.CreateInBatches(questions, 100).Error; err != nil {
				return fmt.Errorf("failed to create assessment questions: %w", err)
			}
		}

		assessment.Questions = questions
		assessment.QuestionsCount = len(questions)
		return nil
	})
}

// GetByID retrieves an assessment without its questions
func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := a.db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

// GetByIDWithQuestions retrieves an assessment with questions in display order
func (a *AssessmentPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	err := a.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order(`"order" ASC`).Order("id ASC")
		}).
		First(&assessment, id).Error
	if err != nil {
		return nil, err
	}

	assessment.QuestionsCount = len(assessment.Questions)
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	var assessments []*models.Assessment
	var total int64

	query := a.db.WithContext(ctx).Model(&models.Assessment{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		"created_at", "title")
	if err := query.Find(&assessments).Error; err != nil {
		return nil, 0, err
	}

	return assessments, total, nil
}
