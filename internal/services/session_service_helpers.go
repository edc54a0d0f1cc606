package services

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/cache"
	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/session"
	"gorm.io/datatypes"
)

const (
	watcherBuffer       = 8
	backgroundOpTimeout = 5 * time.Second
)

// ===== TICKER =====

// Ticker delivers the one-second heartbeat of a session
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(interval time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func NewTimeTicker(interval time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(interval)}
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// ===== LIVE SESSION =====

// liveSession is a hosted session. mu guards sess and the watchers.
type liveSession struct {
	id        string
	studentID string
	title     string
	startedAt time.Time

	mu             sync.Mutex
	sess           *session.Session
	ticks          int
	watchers       map[int]chan ClockUpdate
	nextWatcher    int
	watchersClosed bool

	stop     chan struct{}
	stopOnce sync.Once

	// saveMu orders snapshot writes against retire. Once retired, nothing is
	// written for this session again.
	saveMu   sync.Mutex
	savedGen uint64
	retired  bool
	snapGen  uint64 // guarded by mu
}

// snapshotWrite is a snapshot taken under mu, tagged with its generation so
// an older one never overwrites a newer one.
type snapshotWrite struct {
	snap *cache.SessionSnapshot
	gen  uint64
}

func newLiveSession(id, studentID, title string, startedAt time.Time, sess *session.Session) *liveSession {
	return &liveSession{
		id:        id,
		studentID: studentID,
		title:     title,
		startedAt: startedAt,
		sess:      sess,
		watchers:  make(map[int]chan ClockUpdate),
		stop:      make(chan struct{}),
	}
}

func (ls *liveSession) stopTicker() {
	ls.stopOnce.Do(func() { close(ls.stop) })
}

func (ls *liveSession) response() *SessionResponse {
	return &SessionResponse{
		SessionID:       ls.id,
		StudentID:       ls.studentID,
		AssessmentTitle: ls.title,
		StartedAt:       ls.startedAt,
		State:           ls.sess.State(),
	}
}

// snapshot must be called with mu held.
func (ls *liveSession) snapshot() *snapshotWrite {
	ls.snapGen++
	return &snapshotWrite{
		snap: &cache.SessionSnapshot{
			SessionID: ls.id,
			StudentID: ls.studentID,
			StartedAt: ls.startedAt,
			State:     ls.sess.Snapshot(),
		},
		gen: ls.snapGen,
	}
}

// retire marks the session as finished or abandoned. Only the first caller
// gets true.
func (ls *liveSession) retire() bool {
	ls.saveMu.Lock()
	defer ls.saveMu.Unlock()
	if ls.retired {
		return false
	}
	ls.retired = true
	return true
}

func (ls *liveSession) clock() ClockUpdate {
	remaining := ls.sess.Remaining()
	return ClockUpdate{
		SessionID: ls.id,
		Remaining: remaining,
		Display:   session.FormatClock(remaining),
		Status:    ls.sess.Status(),
		Result:    ls.sess.Result(),
	}
}

func (ls *liveSession) subscribe() (int, chan ClockUpdate) {
	ls.nextWatcher++
	ch := make(chan ClockUpdate, watcherBuffer)
	ls.watchers[ls.nextWatcher] = ch
	return ls.nextWatcher, ch
}

func (ls *liveSession) unsubscribe(id int) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ch, ok := ls.watchers[id]; ok {
		delete(ls.watchers, id)
		close(ch)
	}
}

// broadcast never blocks; a slow watcher misses updates.
func (ls *liveSession) broadcast(update ClockUpdate) {
	for _, ch := range ls.watchers {
		select {
		case ch <- update:
		default:
		}
	}
}

func (ls *liveSession) closeWatchers() {
	for id, ch := range ls.watchers {
		delete(ls.watchers, id)
		close(ch)
	}
	ls.watchersClosed = true
}

// ===== TICK LOOP =====

func (s *sessionService) run(ls *liveSession) {
	defer s.tickers.Done()
	defer func() {
		if r := recover(); r != nil {
			s.opLog.LogRecovery(context.Background(), "session_tick", ls.id, r, debug.Stack())
		}
	}()

	ticker := s.cfg.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ls.stop:
			return
		case <-ticker.C():
			if done := s.tick(ls); done {
				return
			}
		}
	}
}

// tick advances the session clock by one second. It reports whether the
// session has stopped running.
func (s *sessionService) tick(ls *liveSession) bool {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundOpTimeout)
	defer cancel()

	ls.mu.Lock()
	if ls.sess.Status() != session.StatusInProgress {
		ls.mu.Unlock()
		return true
	}
	result := ls.sess.Tick()
	ls.ticks++
	var snap *snapshotWrite
	if result == nil {
		ls.broadcast(ls.clock())
		if s.cfg.SnapshotIntervalTicks > 0 && ls.ticks%s.cfg.SnapshotIntervalTicks == 0 {
			snap = ls.snapshot()
		}
	}
	ls.mu.Unlock()

	if result != nil {
		s.logger.Info("Session time expired, submitting", "session_id", ls.id)
		s.finish(ctx, ls, result)
		return true
	}
	s.persist(ctx, ls, snap)
	return false
}

// ===== CONVERSIONS =====

func (r *AnswerRequest) answer() session.Answer {
	if len(r.Values) > 0 {
		return session.Choices(r.Values...)
	}
	if r.Value != nil {
		return session.Text(*r.Value)
	}
	return session.Text("")
}

func newSessionResult(sessionID, studentID string, startedAt, completedAt time.Time, r *session.Result) (*models.SessionResult, error) {
	breakdown, err := json.Marshal(r.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal breakdown: %w", err)
	}
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	return &models.SessionResult{
		SessionID:     sessionID,
		AssessmentID:  r.AssessmentID,
		StudentID:     studentID,
		Score:         r.Score,
		Correct:       r.Correct,
		Total:         r.Total,
		Answered:      r.Answered,
		PendingReview: r.PendingReview,
		EndReason:     string(r.Reason),
		Breakdown:     datatypes.JSON(breakdown),
		Answers:       datatypes.JSON(answers),
		StartedAt:     startedAt,
		CompletedAt:   completedAt,
	}, nil
}
