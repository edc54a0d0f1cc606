package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/repositories"
	"github.com/xuri/excelize/v2"
)

type resultService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewResultService(repo repositories.Repository, logger *slog.Logger) ResultService {
	return &resultService{
		repo:   repo,
		logger: logger,
	}
}

// Record stores the result of a completed session. Recording the same
// session twice keeps the first result.
func (s *resultService) Record(ctx context.Context, result *models.SessionResult) error {
	if err := s.repo.Result().Create(ctx, result); err != nil {
		return fmt.Errorf("failed to record session result: %w", err)
	}

	s.logger.Info("Session result recorded",
		"session_id", result.SessionID,
		"assessment_id", result.AssessmentID,
		"score", result.Score,
		"end_reason", result.EndReason)
	return nil
}

func (s *resultService) GetBySession(ctx context.Context, sessionID, studentID string) (*models.SessionResult, error) {
	result, err := s.repo.Result().GetBySessionID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get session result: %w", err)
	}

	if result.StudentID != studentID {
		return nil, NewPermissionError(studentID, sessionID, "session", "read_result", "result belongs to another student")
	}
	return result, nil
}

// ListByAssessment lists the student's results for an assessment
func (s *resultService) ListByAssessment(ctx context.Context, assessmentID uint, studentID string, filters repositories.ResultFilters) ([]*models.SessionResult, int64, error) {
	filters.AssessmentID = &assessmentID
	filters.StudentID = studentID

	results, total, err := s.repo.Result().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list results: %w", err)
	}
	return results, total, nil
}

// ===== EXPORT =====

const exportPageSize = 100

var resultExportHeaders = []string{
	"Session ID", "Student ID", "Score", "Correct", "Pending Review",
	"Answered", "Total", "End Reason", "Started At", "Completed At",
}

// ExportToExcel writes every result of an assessment to an xlsx workbook
func (s *resultService) ExportToExcel(ctx context.Context, assessmentID uint) ([]byte, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	var results []*models.SessionResult
	for {
		page, total, err := s.repo.Result().List(ctx, repositories.ResultFilters{
			AssessmentID: &assessmentID,
			Limit:        exportPageSize,
			Offset:       len(results),
			SortBy:       "completed_at",
			SortOrder:    "asc",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list results: %w", err)
		}
		results = append(results, page...)
		if len(page) == 0 || int64(len(results)) >= total {
			break
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Results"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Assessment")
	f.SetCellValue(sheet, "B1", assessment.Title)
	for i, header := range resultExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheet, cell, header)
	}

	for i, r := range results {
		row := strconv.Itoa(i + 4)
		f.SetCellValue(sheet, "A"+row, r.SessionID)
		f.SetCellValue(sheet, "B"+row, r.StudentID)
		f.SetCellValue(sheet, "C"+row, r.Score)
		f.SetCellValue(sheet, "D"+row, r.Correct)
		f.SetCellValue(sheet, "E"+row, r.PendingReview)
		f.SetCellValue(sheet, "F"+row, r.Answered)
		f.SetCellValue(sheet, "G"+row, r.Total)
		f.SetCellValue(sheet, "H"+row, r.EndReason)
		f.SetCellValue(sheet, "I"+row, r.StartedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheet, "J"+row, r.CompletedAt.Format("2006-01-02 15:04:05"))
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported assessment results", "assessment_id", assessmentID, "rows", len(results))
	return buffer.Bytes(), nil
}
