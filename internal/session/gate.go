package session

import (
	"fmt"
	"math"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitting Status = "submitting"
	StatusCompleted  Status = "completed"
)

// EndReason records what triggered submission
type EndReason string

const (
	EndReasonManual  EndReason = "manual"
	EndReasonTimeout EndReason = "timeout"
)

// Summary is what a student sees before confirming a manual submission.
type Summary struct {
	Total      int    `json:"total"`
	Answered   int    `json:"answered"`
	Unanswered int    `json:"unanswered"`
	Flagged    int    `json:"flagged"`
	Warning    string `json:"warning,omitempty"`
}

type QuestionOutcome struct {
	QuestionID int    `json:"question_id"`
	Kind       Kind   `json:"kind"`
	Answered   bool   `json:"answered"`
	Outcome    string `json:"outcome"` // correct, incorrect, pending_review
}

// Result is the output of a completed session.
type Result struct {
	AssessmentID  uint              `json:"assessment_id"`
	Score         int               `json:"score"`
	Correct       int               `json:"correct"`
	Total         int               `json:"total"`
	Answered      int               `json:"answered"`
	PendingReview int               `json:"pending_review"`
	Reason        EndReason         `json:"reason"`
	Breakdown     []QuestionOutcome `json:"breakdown"`
	Answers       map[int][]string  `json:"answers"`
	Destination   string            `json:"destination"`
}

// Gate walks in_progress -> submitting -> completed, never backwards.
type Gate struct {
	status Status
	result *Result
}

func NewGate() *Gate {
	return &Gate{status: StatusInProgress}
}

func (g *Gate) Status() Status { return g.status }

func (g *Gate) Result() *Result { return g.result }

func (g *Gate) begin() error {
	if g.status != StatusInProgress {
		return ErrAlreadySubmitted
	}
	g.status = StatusSubmitting
	return nil
}

func (g *Gate) complete(r *Result) {
	g.result = r
	g.status = StatusCompleted
}

// Summarize builds the confirmation summary. Unanswered questions produce a
// warning but never block submission.
func Summarize(questions []Question, answers *AnswerStore, flags *FlagSet) Summary {
	s := Summary{Total: len(questions), Flagged: flags.Len()}
	for _, q := range questions {
		if a, ok := answers.Get(q.QuestionID()); ok && !a.IsEmpty() {
			s.Answered++
		}
	}
	s.Unanswered = s.Total - s.Answered
	if s.Unanswered > 0 {
		s.Warning = fmt.Sprintf("%d question(s) unanswered", s.Unanswered)
	}
	return s
}

// Score grades every question with uniform weight. All questions count toward
// the denominator; free-response answers are reported as pending review and
// never count as correct.
func Score(questions []Question, answers *AnswerStore) (score int, breakdown []QuestionOutcome) {
	if len(questions) == 0 {
		return 0, nil
	}
	correct := 0
	breakdown = make([]QuestionOutcome, 0, len(questions))
	for _, q := range questions {
		a, _ := answers.Get(q.QuestionID())
		o := QuestionOutcome{QuestionID: q.QuestionID(), Kind: q.Kind(), Answered: !a.IsEmpty()}
		switch grade(q, a) {
		case outcomeCorrect:
			correct++
			o.Outcome = "correct"
		case outcomePendingReview:
			o.Outcome = "pending_review"
		default:
			o.Outcome = "incorrect"
		}
		breakdown = append(breakdown, o)
	}
	score = int(math.Round(float64(correct) / float64(len(questions)) * 100))
	return score, breakdown
}

// ResultPath is the results destination for a completed session.
func ResultPath(assessmentID uint, score int) string {
	return fmt.Sprintf("/results/%d?score=%d", assessmentID, score)
}
