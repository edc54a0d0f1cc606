package errors_test

import (
	"testing"

	apperrors "github.com/SAP-F-2025/assessment-session/internal/errors"
	"github.com/SAP-F-2025/assessment-session/internal/services"
	"github.com/SAP-F-2025/assessment-session/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationErrors(t *testing.T, err error) apperrors.ValidationErrors {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(apperrors.ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	return errs
}

func TestValidationMessages_CustomTags(t *testing.T) {
	v := validator.New()

	errs := validationErrors(t, v.Validate(&services.QuestionInput{Kind: "essay", Prompt: "Why?"}))
	require.Len(t, errs, 1)
	assert.Equal(t, "kind", errs[0].Field)
	assert.Equal(t, "question_kind", errs[0].Rule)
	assert.Equal(t, "essay", errs[0].Value)
	assert.Equal(t, "must be one of: multiple_choice, true_false, free_response", errs[0].Message)

	errs = validationErrors(t, v.Validate(&services.NavigateRequest{Action: "sideways"}))
	require.Len(t, errs, 1)
	assert.Equal(t, "action", errs[0].Field)
	assert.Equal(t, "must be one of: next, previous, jump", errs[0].Message)
	assert.Equal(t, "validation failed: action must be one of: next, previous, jump", errs.Error())
}

func TestValidationMessages_Bounds(t *testing.T) {
	v := validator.New()

	errs := validationErrors(t, v.Validate(&services.CreateAssessmentRequest{
		Title:           "Quiz",
		DurationSeconds: 90000,
		Questions:       []services.QuestionInput{{Kind: "free_response", Prompt: "Why?"}},
	}))
	require.Len(t, errs, 1)
	assert.Equal(t, "duration_seconds", errs[0].Field)
	assert.Equal(t, "must be at most 86400", errs[0].Message)

	errs = validationErrors(t, v.Validate(&services.CreateAssessmentRequest{Title: "Quiz", DurationSeconds: 60}))
	require.Len(t, errs, 1)
	assert.Equal(t, "questions", errs[0].Field)
	assert.Equal(t, "required", errs[0].Rule)
	assert.Equal(t, "is required", errs[0].Message)

	errs = validationErrors(t, v.Validate(&services.CreateAssessmentRequest{
		DurationSeconds: 60,
		Questions:       []services.QuestionInput{{Kind: "true_false"}},
	}))
	assert.Len(t, errs, 2)
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestValidationError_SingleField(t *testing.T) {
	err := apperrors.NewValidationError("index", "is required for jump", nil)
	assert.Equal(t, "validation error on field 'index': is required for jump", err.Error())

	var empty apperrors.ValidationErrors
	assert.Equal(t, "validation failed", empty.Error())
}
