package session

import "fmt"

// Session is one visit to the assessment-taking flow: the question list plus
// the answer store, flag set, timer, cursor and submission gate.
//
// A Session is not safe for concurrent use. Callers serialize access.
type Session struct {
	assessmentID uint
	duration     int
	questions    []Question
	index        map[int]int

	answers *AnswerStore
	flags   *FlagSet
	timer   *Timer
	cursor  *Cursor
	gate    *Gate
}

// State is a read-only view of a session.
type State struct {
	AssessmentID   uint         `json:"assessment_id"`
	Status         Status       `json:"status"`
	Cursor         int          `json:"cursor"`
	Total          int          `json:"total"`
	IsFirst        bool         `json:"is_first"`
	IsLast         bool         `json:"is_last"`
	Remaining      int          `json:"remaining_seconds"`
	Display        string       `json:"display"`
	Answered       int          `json:"answered"`
	Flagged        []int        `json:"flagged"`
	Current        QuestionView `json:"current"`
	CurrentAnswer  []string     `json:"current_answer,omitempty"`
	CurrentFlagged bool         `json:"current_flagged"`
	Result         *Result      `json:"result,omitempty"`
}

// New creates a session and starts its countdown.
func New(assessmentID uint, questions []Question, totalSeconds int) (*Session, error) {
	if totalSeconds <= 0 {
		return nil, ErrInvalidDuration
	}
	s, err := build(assessmentID, questions, totalSeconds)
	if err != nil {
		return nil, err
	}
	s.timer.Start(totalSeconds)
	return s, nil
}

func build(assessmentID uint, questions []Question, totalSeconds int) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	index := make(map[int]int, len(questions))
	for i, q := range questions {
		if _, dup := index[q.QuestionID()]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateQuestion, q.QuestionID())
		}
		index[q.QuestionID()] = i
	}
	return &Session{
		assessmentID: assessmentID,
		duration:     totalSeconds,
		questions:    append([]Question(nil), questions...),
		index:        index,
		answers:      NewAnswerStore(),
		flags:        NewFlagSet(),
		timer:        NewTimer(),
		cursor:       NewCursor(len(questions)),
		gate:         NewGate(),
	}, nil
}

func (s *Session) AssessmentID() uint { return s.assessmentID }

func (s *Session) Duration() int { return s.duration }

func (s *Session) Status() Status { return s.gate.Status() }

func (s *Session) Result() *Result { return s.gate.Result() }

func (s *Session) Remaining() int { return s.timer.Remaining() }

// Expired is closed when the countdown reaches zero.
func (s *Session) Expired() <-chan struct{} { return s.timer.Expired() }

func (s *Session) Questions() []Question {
	return append([]Question(nil), s.questions...)
}

func (s *Session) SetAnswer(questionID int, a Answer) error {
	if err := s.mutable(questionID); err != nil {
		return err
	}
	s.answers.Set(questionID, a)
	return nil
}

func (s *Session) Answer(questionID int) (Answer, bool) {
	return s.answers.Get(questionID)
}

func (s *Session) AnsweredCount() int { return s.answers.AnsweredCount() }

func (s *Session) ToggleFlag(questionID int) (bool, error) {
	if err := s.mutable(questionID); err != nil {
		return false, err
	}
	return s.flags.Toggle(questionID), nil
}

func (s *Session) IsFlagged(questionID int) bool { return s.flags.IsFlagged(questionID) }

func (s *Session) Next() bool { return s.cursor.Next() }

func (s *Session) Previous() bool { return s.cursor.Previous() }

func (s *Session) JumpTo(index int) bool { return s.cursor.JumpTo(index) }

// Tick advances the countdown by one second. When the tick expires the timer
// the session is submitted without confirmation and the result is returned.
func (s *Session) Tick() *Result {
	if s.gate.Status() != StatusInProgress {
		return nil
	}
	if !s.timer.Tick() {
		return nil
	}
	r, err := s.finalize(EndReasonTimeout)
	if err != nil {
		return nil
	}
	return r
}

// Preview returns the confirmation summary for a manual submission.
func (s *Session) Preview() Summary {
	return Summarize(s.questions, s.answers, s.flags)
}

// Submit finalizes a manual submission. The student must have confirmed.
func (s *Session) Submit(confirmed bool) (*Result, error) {
	if s.gate.Status() != StatusInProgress {
		return nil, ErrAlreadySubmitted
	}
	if !confirmed {
		return nil, ErrConfirmationRequired
	}
	return s.finalize(EndReasonManual)
}

func (s *Session) finalize(reason EndReason) (*Result, error) {
	if err := s.gate.begin(); err != nil {
		return nil, err
	}
	s.timer.Stop()
	score, breakdown := Score(s.questions, s.answers)
	r := &Result{
		AssessmentID: s.assessmentID,
		Score:        score,
		Total:        len(s.questions),
		Answered:     s.answers.AnsweredCount(),
		Reason:       reason,
		Breakdown:    breakdown,
		Answers:      s.answers.all(),
		Destination:  ResultPath(s.assessmentID, score),
	}
	for _, o := range breakdown {
		switch o.Outcome {
		case "correct":
			r.Correct++
		case "pending_review":
			r.PendingReview++
		}
	}
	s.gate.complete(r)
	return r, nil
}

func (s *Session) State() State {
	q := s.questions[s.cursor.Index()]
	st := State{
		AssessmentID:   s.assessmentID,
		Status:         s.gate.Status(),
		Cursor:         s.cursor.Index(),
		Total:          len(s.questions),
		IsFirst:        s.cursor.IsFirst(),
		IsLast:         s.cursor.IsLast(),
		Remaining:      s.timer.Remaining(),
		Display:        s.timer.Display(),
		Answered:       s.answers.AnsweredCount(),
		Flagged:        s.flags.IDs(),
		Current:        View(q),
		CurrentFlagged: s.flags.IsFlagged(q.QuestionID()),
		Result:         s.gate.Result(),
	}
	if a, ok := s.answers.Get(q.QuestionID()); ok {
		st.CurrentAnswer = a.Values()
	}
	return st
}

func (s *Session) mutable(questionID int) error {
	if s.gate.Status() != StatusInProgress {
		return ErrSessionClosed
	}
	if _, ok := s.index[questionID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	return nil
}
