package postgres

import (
	"strings"

	"github.com/SAP-F-2025/assessment-session/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// SharedHelpers holds query helpers used by every postgres repository
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPaginationAndSort restricts sorting to the allowed columns and clamps
// the page size.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed ...string) *gorm.DB {
	column := "created_at"
	for _, a := range allowed {
		if a == sortBy {
			column = sortBy
			break
		}
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	query = query.Order(column + " " + order)

	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// postgresRepository implements repositories.Repository
type postgresRepository struct {
	assessment repositories.AssessmentRepository
	result     repositories.ResultRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &postgresRepository{
		assessment: NewAssessmentPostgreSQL(db),
		result:     NewResultPostgreSQL(db),
	}
}

func (r *postgresRepository) Assessment() repositories.AssessmentRepository { return r.assessment }

func (r *postgresRepository) Result() repositories.ResultRepository { return r.result }
