package session

import "fmt"

// Snapshot is the persisted form of a session. Questions are not included;
// they are reloaded from the question source on restore.
type Snapshot struct {
	AssessmentID uint             `json:"assessment_id"`
	Duration     int              `json:"duration"`
	Remaining    int              `json:"remaining"`
	Cursor       int              `json:"cursor"`
	Answers      map[int][]string `json:"answers"`
	Flags        []int            `json:"flags"`
	Status       Status           `json:"status"`
	Result       *Result          `json:"result,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		AssessmentID: s.assessmentID,
		Duration:     s.duration,
		Remaining:    s.timer.Remaining(),
		Cursor:       s.cursor.Index(),
		Answers:      s.answers.all(),
		Flags:        s.flags.IDs(),
		Status:       s.gate.Status(),
		Result:       s.gate.Result(),
	}
}

// Restore rebuilds a session from a snapshot. An in-progress session resumes
// counting down from the saved remaining time.
func Restore(questions []Question, snap Snapshot) (*Session, error) {
	duration := snap.Duration
	if duration <= 0 {
		duration = snap.Remaining
	}
	s, err := build(snap.AssessmentID, questions, duration)
	if err != nil {
		return nil, err
	}
	for id, values := range snap.Answers {
		if _, ok := s.index[id]; !ok {
			return nil, fmt.Errorf("%w: answer for question %d", ErrSnapshotMismatch, id)
		}
		s.answers.Set(id, Choices(values...))
	}
	for _, id := range snap.Flags {
		if _, ok := s.index[id]; !ok {
			return nil, fmt.Errorf("%w: flag for question %d", ErrSnapshotMismatch, id)
		}
		s.flags.Set(id)
	}
	s.cursor.JumpTo(snap.Cursor)

	switch snap.Status {
	case StatusCompleted:
		if snap.Result == nil {
			return nil, fmt.Errorf("%w: completed without result", ErrSnapshotMismatch)
		}
		s.timer.Start(snap.Remaining)
		s.timer.Stop()
		s.gate.status = StatusSubmitting
		s.gate.complete(snap.Result)
	case StatusInProgress, "":
		s.timer.Start(snap.Remaining)
	default:
		// submitting is never observable between operations
		return nil, fmt.Errorf("%w: status %q", ErrSnapshotMismatch, snap.Status)
	}
	return s, nil
}
