package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/session"
	"gorm.io/datatypes"
)

// Question is the stored form of a session question. Options and the answer
// key are kept as jsonb.
type Question struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	AssessmentID   uint           `json:"assessment_id" gorm:"not null;index"`
	Order          int            `json:"order" gorm:"not null"`
	Kind           string         `json:"kind" gorm:"not null;size:32"`
	Prompt         string         `json:"prompt" gorm:"type:text;not null"`
	Options        datatypes.JSON `json:"options" gorm:"type:jsonb"`         // []session.Option
	CorrectOptions datatypes.JSON `json:"correct_options" gorm:"type:jsonb"` // []string
	Reference      *string        `json:"reference,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "assessment_questions"
}

// ToSession converts a stored question into its session variant.
func (q *Question) ToSession() (session.Question, error) {
	kind, err := session.ParseKind(q.Kind)
	if err != nil {
		return nil, fmt.Errorf("question %d: %w", q.ID, err)
	}

	var correct []string
	if len(q.CorrectOptions) > 0 {
		if err := json.Unmarshal(q.CorrectOptions, &correct); err != nil {
			return nil, fmt.Errorf("question %d: failed to decode answer key: %w", q.ID, err)
		}
	}

	switch kind {
	case session.KindMultipleChoice:
		var options []session.Option
		if len(q.Options) > 0 {
			if err := json.Unmarshal(q.Options, &options); err != nil {
				return nil, fmt.Errorf("question %d: failed to decode options: %w", q.ID, err)
			}
		}
		return session.MultipleChoice{ID: int(q.ID), Text: q.Prompt, Options: options, Correct: correct}, nil
	case session.KindTrueFalse:
		return session.TrueFalse{
			ID:      int(q.ID),
			Text:    q.Prompt,
			Correct: len(correct) == 1 && correct[0] == session.OptionTrue,
		}, nil
	default:
		fr := session.FreeResponse{ID: int(q.ID), Text: q.Prompt}
		if q.Reference != nil {
			fr.Reference = *q.Reference
		}
		return fr, nil
	}
}

// ToSessionQuestions converts an ordered slice of stored questions.
func ToSessionQuestions(questions []Question) ([]session.Question, error) {
	out := make([]session.Question, 0, len(questions))
	for i := range questions {
		q, err := questions[i].ToSession()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
