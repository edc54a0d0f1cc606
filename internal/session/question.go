package session

import (
	"fmt"
	"sort"
)

// Kind identifies a question variant
type Kind string

const (
	KindMultipleChoice Kind = "multiple_choice"
	KindTrueFalse      Kind = "true_false"
	KindFreeResponse   Kind = "free_response"
)

// Fixed option identifiers of a true/false question
const (
	OptionTrue  = "true"
	OptionFalse = "false"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMultipleChoice, KindTrueFalse, KindFreeResponse:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Option is a selectable choice of a multiple-choice question
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is one of MultipleChoice, TrueFalse or FreeResponse.
type Question interface {
	QuestionID() int
	Kind() Kind
	Prompt() string

	sealed()
}

type MultipleChoice struct {
	ID      int
	Text    string
	Options []Option
	// Correct holds the option ids of the right answer; usually one.
	Correct []string
}

func (q MultipleChoice) QuestionID() int { return q.ID }
func (q MultipleChoice) Kind() Kind      { return KindMultipleChoice }
func (q MultipleChoice) Prompt() string  { return q.Text }
func (MultipleChoice) sealed()           {}

type TrueFalse struct {
	ID      int
	Text    string
	Correct bool
}

func (q TrueFalse) QuestionID() int { return q.ID }
func (q TrueFalse) Kind() Kind      { return KindTrueFalse }
func (q TrueFalse) Prompt() string  { return q.Text }
func (TrueFalse) sealed()           {}

// FreeResponse questions are never scored automatically. Reference is an
// optional model answer for human graders.
type FreeResponse struct {
	ID        int
	Text      string
	Reference string
}

func (q FreeResponse) QuestionID() int { return q.ID }
func (q FreeResponse) Kind() Kind      { return KindFreeResponse }
func (q FreeResponse) Prompt() string  { return q.Text }
func (FreeResponse) sealed()           {}

// QuestionView is the client-facing rendering of a question. It never carries
// correct answers.
type QuestionView struct {
	ID      int      `json:"id"`
	Kind    Kind     `json:"kind"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options,omitempty"`
	Multi   bool     `json:"multi,omitempty"`
}

// View renders a question for display.
func View(q Question) QuestionView {
	v := QuestionView{ID: q.QuestionID(), Kind: q.Kind(), Prompt: q.Prompt()}
	switch q := q.(type) {
	case MultipleChoice:
		v.Options = append([]Option(nil), q.Options...)
		v.Multi = len(q.Correct) > 1
	case TrueFalse:
		v.Options = []Option{{ID: OptionTrue, Text: "True"}, {ID: OptionFalse, Text: "False"}}
	case FreeResponse:
	default:
		panic(fmt.Sprintf("session: unhandled question type %T", q))
	}
	return v
}

// outcome of automatically grading one answer
type outcome int

const (
	outcomeIncorrect outcome = iota
	outcomeCorrect
	outcomePendingReview
)

func grade(q Question, a Answer) outcome {
	switch q := q.(type) {
	case MultipleChoice:
		if sameSet(a.Values(), q.Correct) {
			return outcomeCorrect
		}
		return outcomeIncorrect
	case TrueFalse:
		want := OptionFalse
		if q.Correct {
			want = OptionTrue
		}
		if a.Value() == want && len(a.Values()) == 1 {
			return outcomeCorrect
		}
		return outcomeIncorrect
	case FreeResponse:
		if a.IsEmpty() {
			return outcomeIncorrect
		}
		return outcomePendingReview
	default:
		panic(fmt.Sprintf("session: unhandled question type %T", q))
	}
}

func sameSet(got, want []string) bool {
	if len(got) == 0 || len(got) != len(want) {
		return false
	}
	g := append([]string(nil), got...)
	w := append([]string(nil), want...)
	sort.Strings(g)
	sort.Strings(w)
	for i := range g {
		if g[i] != w[i] {
			return false
		}
	}
	return true
}
