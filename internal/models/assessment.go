package models

import (
	"time"

	"gorm.io/gorm"
)

type AssessmentStatus string

const (
	StatusDraft    AssessmentStatus = "Draft"
	StatusActive   AssessmentStatus = "Active"
	StatusArchived AssessmentStatus = "Archived"
)

type Assessment struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	Title           string           `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description     *string          `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	DurationSeconds int              `json:"duration_seconds" gorm:"not null" validate:"required,min=1,max=86400"`
	Status          AssessmentStatus `json:"status" gorm:"default:Active;index" validate:"omitempty,oneof=Draft Active Archived"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"size:64;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:AssessmentID"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

func (Assessment) TableName() string {
	return "assessments"
}
