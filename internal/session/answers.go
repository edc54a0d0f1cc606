package session

import "strings"

// Answer is a recorded response: a single option id, several option ids or
// free text.
type Answer struct {
	values []string
}

func Text(s string) Answer {
	return Answer{values: []string{s}}
}

func Choice(optionID string) Answer {
	return Answer{values: []string{optionID}}
}

func Choices(optionIDs ...string) Answer {
	return Answer{values: append([]string(nil), optionIDs...)}
}

// Value returns the first value, or "" when nothing was recorded.
func (a Answer) Value() string {
	if len(a.values) == 0 {
		return ""
	}
	return a.values[0]
}

func (a Answer) Values() []string {
	return append([]string(nil), a.values...)
}

// IsEmpty reports whether the answer carries no non-blank value.
func (a Answer) IsEmpty() bool {
	for _, v := range a.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// AnswerStore keeps the latest answer per question id. Writes always win.
type AnswerStore struct {
	answers map[int]Answer
}

// NewAnswerStore returns an empty store.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: make(map[int]Answer)}
}

// Set records a, replacing any earlier answer to the question.
func (s *AnswerStore) Set(questionID int, a Answer) {
	s.answers[questionID] = a
}

// Get returns the recorded answer and whether one exists.
func (s *AnswerStore) Get(questionID int) (Answer, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

// AnsweredCount counts questions whose answer is not empty.
func (s *AnswerStore) AnsweredCount() int {
	n := 0
	for _, a := range s.answers {
		if !a.IsEmpty() {
			n++
		}
	}
	return n
}

// all returns a copy keyed by question id, used for snapshots and results.
func (s *AnswerStore) all() map[int][]string {
	out := make(map[int][]string, len(s.answers))
	for id, a := range s.answers {
		out[id] = a.Values()
	}
	return out
}
