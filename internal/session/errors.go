package session

import "errors"

var (
	ErrNoQuestions          = errors.New("session needs at least one question")
	ErrDuplicateQuestion    = errors.New("duplicate question id")
	ErrInvalidDuration      = errors.New("duration must be positive")
	ErrUnknownKind          = errors.New("unknown question kind")
	ErrUnknownQuestion      = errors.New("question is not part of this session")
	ErrSessionClosed        = errors.New("session is no longer in progress")
	ErrAlreadySubmitted     = errors.New("session already submitted")
	ErrConfirmationRequired = errors.New("manual submission must be confirmed")
	ErrSnapshotMismatch     = errors.New("snapshot does not match question set")
)
