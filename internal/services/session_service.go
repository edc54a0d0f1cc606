package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/cache"
	"github.com/SAP-F-2025/assessment-session/internal/events"
	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/repositories"
	"github.com/SAP-F-2025/assessment-session/internal/session"
	"github.com/SAP-F-2025/assessment-session/internal/validator"
	"github.com/google/uuid"
)

// SessionServiceConfig controls how live sessions are hosted
type SessionServiceConfig struct {
	TickInterval          time.Duration
	SnapshotEnabled       bool
	SnapshotIntervalTicks int
	// CompletedRetention keeps completed sessions readable in memory. Zero
	// keeps them until abandoned or shutdown.
	CompletedRetention time.Duration
	// NewTicker defaults to a time.Ticker.
	NewTicker TickerFactory
}

type sessionService struct {
	repo      repositories.Repository
	results   ResultService
	snapshots cache.SnapshotStore
	publisher events.EventPublisher
	logger    *slog.Logger
	opLog     *ServiceLogger
	validator *validator.Validator
	cfg       SessionServiceConfig

	mu       sync.RWMutex
	live     map[string]*liveSession
	closed   bool
	tickers  sync.WaitGroup
	shutdown sync.Once
}

func NewSessionService(
	repo repositories.Repository,
	results ResultService,
	snapshots cache.SnapshotStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	cfg SessionServiceConfig,
) SessionService {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTimeTicker
	}
	return &sessionService{
		repo:      repo,
		results:   results,
		snapshots: snapshots,
		publisher: publisher,
		logger:    logger,
		opLog:     NewServiceLogger(logger, LogConfig{Service: "session", Component: "session_service"}),
		validator: validator,
		cfg:       cfg,
		live:      make(map[string]*liveSession),
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest, studentID string) (resp *SessionResponse, err error) {
	op := s.opLog.WithOperation(ctx, "start_session", studentID)
	defer func() {
		id := ""
		if resp != nil {
			id = resp.SessionID
		}
		op.LogResult(id, "session", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	assessment, questions, err := s.loadQuestions(ctx, req.AssessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.Status != models.StatusActive {
		return nil, ErrAssessmentNotActive
	}

	sess, err := session.New(assessment.ID, questions, assessment.DurationSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to build session: %w", err)
	}

	ls := newLiveSession(uuid.NewString(), studentID, assessment.Title, time.Now(), sess)
	if err := s.host(ls); err != nil {
		return nil, err
	}

	ls.mu.Lock()
	resp = ls.response()
	snap := ls.snapshot()
	ls.mu.Unlock()

	s.persist(ctx, ls, snap)
	s.publish(ctx, events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:       ls.id,
		AssessmentID:    assessment.ID,
		AssessmentTitle: assessment.Title,
		StudentID:       studentID,
		QuestionCount:   len(questions),
		DurationSeconds: assessment.DurationSeconds,
		StartedAt:       ls.startedAt,
	})

	return resp, nil
}

func (s *sessionService) Resume(ctx context.Context, sessionID, studentID string) (resp *SessionResponse, err error) {
	op := s.opLog.WithOperation(ctx, "resume_session", studentID)
	defer func() { op.LogResult(sessionID, "session", err) }()

	if ls, err := s.lookup(sessionID, studentID, "resume"); err == nil {
		ls.mu.Lock()
		defer ls.mu.Unlock()
		return ls.response(), nil
	} else if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	if s.snapshots == nil {
		return nil, ErrSessionNotFound
	}
	stored, err := s.snapshots.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	if stored.StudentID != studentID {
		return nil, NewPermissionError(studentID, sessionID, "session", "resume", "session belongs to another student")
	}

	assessment, questions, err := s.loadQuestions(ctx, stored.State.AssessmentID)
	if err != nil {
		return nil, err
	}
	sess, err := session.Restore(questions, stored.State)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", sessionID, err)
	}

	ls := newLiveSession(sessionID, studentID, assessment.Title, stored.StartedAt, sess)
	if err := s.host(ls); err != nil {
		return nil, err
	}

	ls.mu.Lock()
	resp = ls.response()
	ls.mu.Unlock()

	s.logger.Info("Session restored from snapshot",
		"session_id", sessionID,
		"remaining_seconds", resp.Remaining,
		"saved_at", stored.SavedAt)

	s.publish(ctx, events.EventSessionResumed, events.SessionResumedEvent{
		SessionID:        sessionID,
		AssessmentID:     assessment.ID,
		StudentID:        studentID,
		RemainingSeconds: resp.Remaining,
	})

	return resp, nil
}

func (s *sessionService) Abandon(ctx context.Context, sessionID, studentID string) (err error) {
	op := s.opLog.WithOperation(ctx, "abandon_session", studentID)
	defer func() { op.LogResult(sessionID, "session", err) }()

	ls, err := s.lookup(sessionID, studentID, "abandon")
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.live, sessionID)
	s.mu.Unlock()
	ls.stopTicker()
	// A tick that expired the session concurrently loses to the abandon.
	abandoned := ls.retire()

	ls.mu.Lock()
	answered := ls.sess.AnsweredCount()
	assessmentID := ls.sess.AssessmentID()
	ls.closeWatchers()
	ls.mu.Unlock()

	s.deleteSnapshot(ctx, sessionID)

	if abandoned {
		s.publish(ctx, events.EventSessionAbandoned, events.SessionAbandonedEvent{
			SessionID:    sessionID,
			AssessmentID: assessmentID,
			StudentID:    studentID,
			AbandonedAt:  time.Now(),
			Answered:     answered,
		})
	}
	return nil
}

// Shutdown stops every ticker and waits for them to exit. In-progress
// sessions keep their snapshot so they can be resumed after a restart.
func (s *sessionService) Shutdown() {
	s.shutdown.Do(func() {
		s.mu.Lock()
		s.closed = true
		hosted := make([]*liveSession, 0, len(s.live))
		for _, ls := range s.live {
			hosted = append(hosted, ls)
		}
		s.mu.Unlock()

		for _, ls := range hosted {
			ls.stopTicker()
		}
		s.tickers.Wait()

		ctx := context.Background()
		for _, ls := range hosted {
			ls.mu.Lock()
			var snap *snapshotWrite
			if ls.sess.Status() == session.StatusInProgress {
				snap = ls.snapshot()
			}
			ls.closeWatchers()
			ls.mu.Unlock()
			s.persist(ctx, ls, snap)
		}
		s.logger.Info("Session service stopped", "sessions", len(hosted))
	})
}

// ===== STUDENT OPERATIONS =====

func (s *sessionService) Get(ctx context.Context, sessionID, studentID string) (*SessionResponse, error) {
	ls, err := s.lookup(sessionID, studentID, "read")
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.response(), nil
}

func (s *sessionService) Answer(ctx context.Context, sessionID string, req *AnswerRequest, studentID string) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, studentID, "answer", func(sess *session.Session) error {
		return sess.SetAnswer(req.QuestionID, req.answer())
	})
}

func (s *sessionService) Navigate(ctx context.Context, sessionID string, req *NavigateRequest, studentID string) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Action == validator.ActionJump && req.Index == nil {
		return nil, ValidationErrors{*NewValidationError("index", "is required for jump", nil)}
	}

	return s.mutate(ctx, sessionID, studentID, "navigate", func(sess *session.Session) error {
		// Moves past either end are ignored and leave the cursor in place.
		switch req.Action {
		case validator.ActionNext:
			sess.Next()
		case validator.ActionPrevious:
			sess.Previous()
		case validator.ActionJump:
			sess.JumpTo(*req.Index)
		}
		return nil
	})
}

func (s *sessionService) ToggleFlag(ctx context.Context, sessionID string, questionID int, studentID string) (*SessionResponse, error) {
	return s.mutate(ctx, sessionID, studentID, "flag", func(sess *session.Session) error {
		_, err := sess.ToggleFlag(questionID)
		return err
	})
}

func (s *sessionService) Preview(ctx context.Context, sessionID, studentID string) (*session.Summary, error) {
	ls, err := s.lookup(sessionID, studentID, "preview")
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.sess.Status() != session.StatusInProgress {
		return nil, session.ErrAlreadySubmitted
	}
	summary := ls.sess.Preview()
	return &summary, nil
}

func (s *sessionService) Submit(ctx context.Context, sessionID string, req *SubmitRequest, studentID string) (result *session.Result, err error) {
	op := s.opLog.WithOperation(ctx, "submit_session", studentID)
	defer func() { op.LogResult(sessionID, "session", err) }()

	ls, err := s.lookup(sessionID, studentID, "submit")
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	result, err = ls.sess.Submit(req.Confirmed)
	ls.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if !s.finish(ctx, ls, result) {
		return nil, ErrSessionNotFound
	}
	return result, nil
}

// Watch subscribes to clock updates. The channel is closed when the session
// completes or is abandoned; the returned func unsubscribes early.
func (s *sessionService) Watch(ctx context.Context, sessionID, studentID string) (<-chan ClockUpdate, func(), error) {
	ls, err := s.lookup(sessionID, studentID, "watch")
	if err != nil {
		return nil, nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.sess.Status() == session.StatusCompleted || ls.watchersClosed {
		ch := make(chan ClockUpdate, 1)
		ch <- ls.clock()
		close(ch)
		return ch, func() {}, nil
	}

	id, ch := ls.subscribe()
	ch <- ls.clock()
	return ch, func() { ls.unsubscribe(id) }, nil
}

// ===== INTERNALS =====

func (s *sessionService) loadQuestions(ctx context.Context, assessmentID uint) (*models.Assessment, []session.Question, error) {
	assessment, err := s.repo.Assessment().GetByIDWithQuestions(ctx, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrAssessmentNotFound
		}
		return nil, nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	questions, err := models.ToSessionQuestions(assessment.Questions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load questions: %w", err)
	}
	return assessment, questions, nil
}

// host registers a session and starts its ticker when it is still running.
func (s *sessionService) host(ls *liveSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}
	if _, exists := s.live[ls.id]; exists {
		return ErrConflict
	}
	s.live[ls.id] = ls

	if ls.sess.Status() == session.StatusInProgress {
		s.tickers.Add(1)
		go s.run(ls)
	} else {
		ls.stopTicker()
	}
	return nil
}

func (s *sessionService) lookup(sessionID, studentID, action string) (*liveSession, error) {
	s.mu.RLock()
	ls, ok := s.live[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if ls.studentID != studentID {
		return nil, NewPermissionError(studentID, sessionID, "session", action, "session belongs to another student")
	}
	return ls, nil
}

// mutate applies fn under the session lock and snapshots the new state.
func (s *sessionService) mutate(ctx context.Context, sessionID, studentID, action string, fn func(*session.Session) error) (*SessionResponse, error) {
	ls, err := s.lookup(sessionID, studentID, action)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	if err := fn(ls.sess); err != nil {
		ls.mu.Unlock()
		return nil, err
	}
	resp := ls.response()
	var snap *snapshotWrite
	if ls.sess.Status() == session.StatusInProgress {
		snap = ls.snapshot()
	}
	ls.mu.Unlock()

	s.persist(ctx, ls, snap)
	return resp, nil
}

// finish runs once per session after the gate completes: the result goes to
// the results destination, events are published, the snapshot is dropped and
// watchers receive the final update. It reports false when the session was
// abandoned first.
func (s *sessionService) finish(ctx context.Context, ls *liveSession, result *session.Result) bool {
	ls.stopTicker()
	if !ls.retire() {
		return false
	}

	completedAt := time.Now()
	record, err := newSessionResult(ls.id, ls.studentID, ls.startedAt, completedAt, result)
	if err != nil {
		s.logger.Error("Failed to encode session result", "session_id", ls.id, "error", err)
	} else if err := s.results.Record(ctx, record); err != nil {
		s.logger.Error("Failed to record session result", "session_id", ls.id, "error", err)
	}

	if result.Reason == session.EndReasonTimeout {
		s.publish(ctx, events.EventSessionTimeExpired, events.SessionTimeExpiredEvent{
			SessionID:    ls.id,
			AssessmentID: result.AssessmentID,
			StudentID:    ls.studentID,
			ExpiredAt:    completedAt,
			Answered:     result.Answered,
		})
	}
	s.publish(ctx, events.EventSessionSubmitted, events.SessionSubmittedEvent{
		SessionID:     ls.id,
		AssessmentID:  result.AssessmentID,
		StudentID:     ls.studentID,
		Score:         result.Score,
		Correct:       result.Correct,
		Total:         result.Total,
		PendingReview: result.PendingReview,
		Reason:        string(result.Reason),
		SubmittedAt:   completedAt,
		Destination:   result.Destination,
	})
	s.deleteSnapshot(ctx, ls.id)

	ls.mu.Lock()
	ls.broadcast(ls.clock())
	ls.closeWatchers()
	ls.mu.Unlock()

	s.logger.Info("Session completed",
		"session_id", ls.id,
		"reason", result.Reason,
		"score", result.Score,
		"destination", result.Destination)

	if s.cfg.CompletedRetention > 0 {
		time.AfterFunc(s.cfg.CompletedRetention, func() { s.evict(ls) })
	}
	return true
}

func (s *sessionService) evict(ls *liveSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.live[ls.id]; ok && current == ls {
		delete(s.live, ls.id)
	}
}

// persist writes a snapshot unless the session has been retired or a newer
// snapshot already went out.
func (s *sessionService) persist(ctx context.Context, ls *liveSession, w *snapshotWrite) {
	if !s.cfg.SnapshotEnabled || s.snapshots == nil || w == nil {
		return
	}
	ls.saveMu.Lock()
	defer ls.saveMu.Unlock()
	if ls.retired || w.gen <= ls.savedGen {
		return
	}
	if err := s.snapshots.Save(ctx, w.snap); err != nil {
		s.logger.Warn("Failed to save session snapshot", "session_id", ls.id, "error", err)
		return
	}
	ls.savedGen = w.gen
}

func (s *sessionService) deleteSnapshot(ctx context.Context, sessionID string) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to delete session snapshot", "session_id", sessionID, "error", err)
	}
}

func (s *sessionService) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSessionEvent(ctx, events.NewSessionEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish session event", "event_type", eventType, "error", err)
	}
}
