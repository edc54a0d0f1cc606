package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/assessment-session/internal/session"
)

const (
	minChoiceOptions = 2
	maxChoiceOptions = 10
)

// QuestionValidator checks question definitions before they are stored
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a single question definition
func (v *QuestionValidator) ValidateQuestion(q session.Question) error {
	if strings.TrimSpace(q.Prompt()) == "" {
		return fmt.Errorf("question prompt is required")
	}

	switch q := q.(type) {
	case session.MultipleChoice:
		return v.validateMultipleChoice(q)
	case session.TrueFalse, session.FreeResponse:
		return nil
	default:
		return fmt.Errorf("unsupported question kind: %s", q.Kind())
	}
}

// ValidateBatch validates the ordered question list of an assessment
func (v *QuestionValidator) ValidateBatch(questions []session.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, q := range questions {
		if err := v.ValidateQuestion(q); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

func (v *QuestionValidator) validateMultipleChoice(q session.MultipleChoice) error {
	if len(q.Options) < minChoiceOptions {
		return fmt.Errorf("must have at least %d options", minChoiceOptions)
	}

	if len(q.Options) > maxChoiceOptions {
		return fmt.Errorf("cannot have more than %d options", maxChoiceOptions)
	}

	if len(q.Correct) == 0 {
		return fmt.Errorf("must have at least 1 correct answer")
	}

	optionIDs := make(map[string]bool, len(q.Options))
	for _, option := range q.Options {
		if option.ID == "" || strings.TrimSpace(option.Text) == "" {
			return fmt.Errorf("option id and text cannot be empty")
		}
		if optionIDs[option.ID] {
			return fmt.Errorf("duplicate option id '%s'", option.ID)
		}
		optionIDs[option.ID] = true
	}

	for _, correctID := range q.Correct {
		if !optionIDs[correctID] {
			return fmt.Errorf("correct answer ID '%s' does not match any option", correctID)
		}
	}

	return nil
}
