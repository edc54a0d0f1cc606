package services

import (
	"log/slog"

	"github.com/SAP-F-2025/assessment-session/internal/cache"
	"github.com/SAP-F-2025/assessment-session/internal/events"
	"github.com/SAP-F-2025/assessment-session/internal/repositories"
	"github.com/SAP-F-2025/assessment-session/internal/validator"
)

type serviceManager struct {
	assessment AssessmentService
	session    SessionService
	result     ResultService
}

func NewServiceManager(
	repo repositories.Repository,
	snapshots cache.SnapshotStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	cfg SessionServiceConfig,
) ServiceManager {
	results := NewResultService(repo, logger)
	return &serviceManager{
		assessment: NewAssessmentService(repo, logger, validator),
		session:    NewSessionService(repo, results, snapshots, publisher, logger, validator, cfg),
		result:     results,
	}
}

func (m *serviceManager) Assessment() AssessmentService { return m.assessment }
func (m *serviceManager) Session() SessionService       { return m.session }
func (m *serviceManager) Result() ResultService         { return m.result }

// Shutdown stops the session tickers
func (m *serviceManager) Shutdown() {
	m.session.Shutdown()
}
