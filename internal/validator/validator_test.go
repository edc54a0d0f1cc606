package validator

import (
	"testing"

	"github.com/SAP-F-2025/assessment-session/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type navigatePayload struct {
	Action string `json:"action" validate:"required,navigate_action"`
}

type questionPayload struct {
	Kind string `json:"kind" validate:"required,question_kind"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(navigatePayload{Action: "jump"}))
	assert.NoError(t, v.Validate(questionPayload{Kind: "free_response"}))

	err := v.Validate(navigatePayload{Action: "sideways"})
	require.Error(t, err)
	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "action", errs[0].Field)
	assert.Equal(t, "navigate_action", errs[0].Rule)

	err = v.Validate(questionPayload{Kind: "essay"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind")
}

func TestQuestionValidator(t *testing.T) {
	qv := New().Question()
	options := []session.Option{{ID: "A", Text: "one"}, {ID: "B", Text: "two"}}

	assert.NoError(t, qv.ValidateQuestion(session.MultipleChoice{ID: 1, Text: "q", Options: options, Correct: []string{"B"}}))
	assert.NoError(t, qv.ValidateQuestion(session.TrueFalse{ID: 2, Text: "q", Correct: true}))
	assert.NoError(t, qv.ValidateQuestion(session.FreeResponse{ID: 3, Text: "q"}))

	cases := map[string]session.Question{
		"blank prompt":    session.TrueFalse{ID: 1, Text: "  "},
		"too few options": session.MultipleChoice{ID: 1, Text: "q", Options: options[:1], Correct: []string{"A"}},
		"no correct":      session.MultipleChoice{ID: 1, Text: "q", Options: options},
		"unknown correct": session.MultipleChoice{ID: 1, Text: "q", Options: options, Correct: []string{"C"}},
		"duplicate option": session.MultipleChoice{ID: 1, Text: "q",
			Options: []session.Option{{ID: "A", Text: "x"}, {ID: "A", Text: "y"}}, Correct: []string{"A"}},
	}
	for name, q := range cases {
		assert.Error(t, qv.ValidateQuestion(q), name)
	}

	assert.Error(t, qv.ValidateBatch(nil))
	err := qv.ValidateBatch([]session.Question{session.FreeResponse{ID: 1, Text: "ok"}, session.FreeResponse{ID: 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question 2")
}
