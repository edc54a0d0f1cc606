package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/repositories"
	"github.com/SAP-F-2025/assessment-session/internal/session"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// MockAssessmentRepository is a mock implementation of AssessmentRepository
type MockAssessmentRepository struct {
	mock.Mock
}

func (m *MockAssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}

func (m *MockAssessmentRepository) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*models.Assessment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAssessmentRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Assessment, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*models.Assessment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAssessmentRepository) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Assessment), args.Get(1).(int64), args.Error(2)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, result *models.SessionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.SessionResult, error) {
	args := m.Called(ctx, sessionID)
	if r := args.Get(0); r != nil {
		return r.(*models.SessionResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResultRepository) List(ctx context.Context, filters repositories.ResultFilters) ([]*models.SessionResult, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.SessionResult), args.Get(1).(int64), args.Error(2)
}

type mockRepository struct {
	assessment *MockAssessmentRepository
	result     *MockResultRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		assessment: &MockAssessmentRepository{},
		result:     &MockResultRepository{},
	}
}

func (m *mockRepository) Assessment() repositories.AssessmentRepository { return m.assessment }
func (m *mockRepository) Result() repositories.ResultRepository         { return m.result }

// ===== FAKE TICKER =====

type fakeTicker struct {
	ch chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               {}

// fakeClock hands out tickers the test drives by hand
type fakeClock struct {
	created chan *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{created: make(chan *fakeTicker, 16)}
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	t := &fakeTicker{ch: make(chan time.Time)}
	c.created <- t
	return t
}

func (c *fakeClock) next(t *testing.T) *fakeTicker {
	t.Helper()
	select {
	case tk := <-c.created:
		return tk
	case <-time.After(2 * time.Second):
		t.Fatal("ticker was not created")
		return nil
	}
}

// tick delivers one tick and waits for the matching clock update
func tick(t *testing.T, tk *fakeTicker, updates <-chan ClockUpdate) ClockUpdate {
	t.Helper()
	select {
	case tk.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("ticker goroutine not receiving")
	}
	return nextUpdate(t, updates)
}

func nextUpdate(t *testing.T, updates <-chan ClockUpdate) ClockUpdate {
	t.Helper()
	select {
	case u, ok := <-updates:
		require.True(t, ok, "updates closed")
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("no clock update")
		return ClockUpdate{}
	}
}

// ===== FIXTURES =====

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jsonOf(t *testing.T, v interface{}) datatypes.JSON {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return datatypes.JSON(b)
}

// quizAssessment has a multiple-choice, a true/false and a free-response
// question with ids 11, 12 and 13.
func quizAssessment(t *testing.T, durationSeconds int) *models.Assessment {
	ref := "model answer"
	return &models.Assessment{
		ID:              7,
		Title:           "Quiz",
		DurationSeconds: durationSeconds,
		Status:          models.StatusActive,
		Questions: []models.Question{
			{
				ID: 11, AssessmentID: 7, Order: 1,
				Kind:           string(session.KindMultipleChoice),
				Prompt:         "Pick A",
				Options:        jsonOf(t, []session.Option{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}}),
				CorrectOptions: jsonOf(t, []string{"A"}),
			},
			{
				ID: 12, AssessmentID: 7, Order: 2,
				Kind:           string(session.KindTrueFalse),
				Prompt:         "Sky is blue",
				CorrectOptions: jsonOf(t, []string{"true"}),
			},
			{
				ID: 13, AssessmentID: 7, Order: 3,
				Kind:      string(session.KindFreeResponse),
				Prompt:    "Explain",
				Reference: &ref,
			},
		},
	}
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
