package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/repositories"
	"github.com/SAP-F-2025/assessment-session/internal/session"
	"github.com/SAP-F-2025/assessment-session/internal/validator"
	"gorm.io/datatypes"
)

type assessmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssessmentService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AssessmentService {
	return &assessmentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE OPERATIONS =====

func (s *assessmentService) Create(ctx context.Context, req *CreateAssessmentRequest, creatorID string) (*AssessmentResponse, error) {
	s.logger.Info("Creating assessment", "creator_id", creatorID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	questions := make([]session.Question, 0, len(req.Questions))
	for i := range req.Questions {
		q, err := req.Questions[i].toSession(i + 1)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf("questions[%d]", i), err.Error(), req.Questions[i].Kind)
		}
		questions = append(questions, q)
	}
	if err := s.validator.Question().ValidateBatch(questions); err != nil {
		return nil, NewValidationError("questions", err.Error(), nil)
	}

	assessment, err := buildAssessment(req.Title, req.Description, req.DurationSeconds, creatorID, req.Questions)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Assessment().Create(ctx, assessment); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	s.logger.Info("Assessment created successfully", "assessment_id", assessment.ID, "questions", len(assessment.Questions))
	return buildAssessmentResponse(assessment, questions), nil
}

// GetByID returns the assessment as students see it, without answer keys
func (s *assessmentService) GetByID(ctx context.Context, id uint) (*AssessmentResponse, error) {
	assessment, err := s.repo.Assessment().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	questions, err := models.ToSessionQuestions(assessment.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	return buildAssessmentResponse(assessment, questions), nil
}

// ===== HELPERS =====

// toSession builds the session variant of a question input. id is a
// placeholder used only for validation before the row is stored.
func (in *QuestionInput) toSession(id int) (session.Question, error) {
	kind, err := session.ParseKind(in.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case session.KindMultipleChoice:
		return session.MultipleChoice{ID: id, Text: in.Prompt, Options: in.Options, Correct: in.Correct}, nil
	case session.KindTrueFalse:
		if len(in.Correct) != 1 || (in.Correct[0] != session.OptionTrue && in.Correct[0] != session.OptionFalse) {
			return nil, fmt.Errorf("true/false questions need correct set to %q or %q", session.OptionTrue, session.OptionFalse)
		}
		return session.TrueFalse{ID: id, Text: in.Prompt, Correct: in.Correct[0] == session.OptionTrue}, nil
	default:
		fr := session.FreeResponse{ID: id, Text: in.Prompt}
		if in.Reference != nil {
			fr.Reference = *in.Reference
		}
		return fr, nil
	}
}

func (in *QuestionInput) toModel() (models.Question, error) {
	q := models.Question{
		Kind:      in.Kind,
		Prompt:    in.Prompt,
		Reference: in.Reference,
	}

	if len(in.Options) > 0 {
		options, err := json.Marshal(in.Options)
		if err != nil {
			return q, fmt.Errorf("failed to marshal options: %w", err)
		}
		q.Options = datatypes.JSON(options)
	}
	if len(in.Correct) > 0 && in.Kind != string(session.KindFreeResponse) {
		correct, err := json.Marshal(in.Correct)
		if err != nil {
			return q, fmt.Errorf("failed to marshal answer key: %w", err)
		}
		q.CorrectOptions = datatypes.JSON(correct)
	}
	return q, nil
}

func buildAssessment(title string, description *string, durationSeconds int, creatorID string, inputs []QuestionInput) (*models.Assessment, error) {
	assessment := &models.Assessment{
		Title:           title,
		Description:     description,
		DurationSeconds: durationSeconds,
		Status:          models.StatusActive,
		CreatedBy:       creatorID,
		Questions:       make([]models.Question, 0, len(inputs)),
	}
	for i := range inputs {
		q, err := inputs[i].toModel()
		if err != nil {
			return nil, err
		}
		assessment.Questions = append(assessment.Questions, q)
	}
	return assessment, nil
}

func buildAssessmentResponse(assessment *models.Assessment, questions []session.Question) *AssessmentResponse {
	views := make([]session.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, session.View(q))
	}
	// Stored ids replace the placeholders used during validation.
	for i := range views {
		if i < len(assessment.Questions) && assessment.Questions[i].ID != 0 {
			views[i].ID = int(assessment.Questions[i].ID)
		}
	}

	return &AssessmentResponse{
		ID:              assessment.ID,
		Title:           assessment.Title,
		Description:     assessment.Description,
		DurationSeconds: assessment.DurationSeconds,
		Status:          assessment.Status,
		CreatedBy:       assessment.CreatedBy,
		CreatedAt:       assessment.CreatedAt,
		QuestionsCount:  len(views),
		Questions:       views,
	}
}
