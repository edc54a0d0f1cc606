package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/assessment-session/internal/services"
	"github.com/SAP-F-2025/assessment-session/internal/utils"
	"github.com/gin-gonic/gin"
)

const maxImportFileSize = 10 << 20

type AssessmentHandler struct {
	BaseHandler
	assessmentService services.AssessmentService
}

func NewAssessmentHandler(
	assessmentService services.AssessmentService,
	logger utils.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assessmentService: assessmentService,
	}
}

// CreateAssessment creates a new assessment
// @Summary Create assessment
// @Description Creates an active assessment with its ordered questions
// @Tags assessments
// @Accept json
// @Produce json
// @Param assessment body services.CreateAssessmentRequest true "Assessment data"
// @Success 201 {object} SuccessResponse{data=services.AssessmentResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /assessments [post]
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	userID, ok := h.studentID(c)
	if !ok {
		return
	}

	var req services.CreateAssessmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating assessment", "title", req.Title, "questions", len(req.Questions))

	assessment, err := h.assessmentService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Assessment created", assessment)
}

// ImportAssessment creates an assessment from an uploaded question workbook
// @Summary Import assessment
// @Description Columns: type, prompt, options (pipe separated), correct, reference
// @Tags assessments
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx workbook"
// @Param title formData string true "Assessment title"
// @Param duration_seconds formData int true "Time limit in seconds"
// @Success 201 {object} SuccessResponse{data=services.ImportResult}
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /assessments/import [post]
func (h *AssessmentHandler) ImportAssessment(c *gin.Context) {
	userID, ok := h.studentID(c)
	if !ok {
		return
	}

	var req services.ImportAssessmentRequest
	if err := c.ShouldBind(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid form data", err, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "File is required", err)
		return
	}
	if fileHeader.Size > maxImportFileSize {
		h.RespondWithError(c, http.StatusBadRequest, "File is too large", nil, map[string]interface{}{
			"max_bytes": maxImportFileSize,
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Cannot read uploaded file", err)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing assessment", "file", fileHeader.Filename, "size", fileHeader.Size)

	result, err := h.assessmentService.ImportFromExcel(c.Request.Context(), file, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Assessment imported", result)
}

// GetAssessment retrieves an assessment by ID
// @Summary Get assessment
// @Description Questions are returned without answer keys
// @Tags assessments
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} SuccessResponse{data=services.AssessmentResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	id, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	assessment, err := h.assessmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Assessment retrieved", assessment)
}
