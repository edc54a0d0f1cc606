package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/models"
	"github.com/SAP-F-2025/assessment-session/internal/services"
	"github.com/SAP-F-2025/assessment-session/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResultPage is the body served at the results destination
type ResultPage struct {
	AssessmentID uint                    `json:"assessment_id"`
	Score        *int                    `json:"score,omitempty"`
	Results      []*models.SessionResult `json:"results"`
	Total        int64                   `json:"total"`
}

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
	}
}

// GetResults serves the results destination a submitted session points at
// @Summary Results destination
// @Tags results
// @Produce json
// @Param assessment_id path uint true "Assessment ID"
// @Param score query int false "Score carried from the submission"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} SuccessResponse{data=ResultPage}
// @Failure 400 {object} ErrorResponse
// @Router /results/{assessment_id} [get]
func (h *ResultHandler) GetResults(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	assessmentID, ok := h.parseUintParam(c, "assessment_id")
	if !ok {
		return
	}

	results, total, err := h.resultService.ListByAssessment(c.Request.Context(), assessmentID, studentID, parseResultFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Results retrieved", ResultPage{
		AssessmentID: assessmentID,
		Score:        parseIntQueryPtr(c, "score"),
		Results:      results,
		Total:        total,
	})
}

// ExportResults downloads every result of an assessment as a workbook.
// The route is restricted to staff.
// @Summary Export results
// @Tags results
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param assessment_id path uint true "Assessment ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /results/{assessment_id}/export [get]
func (h *ResultHandler) ExportResults(c *gin.Context) {
	if _, ok := h.studentID(c); !ok {
		return
	}
	assessmentID, ok := h.parseUintParam(c, "assessment_id")
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting results", "assessment_id", assessmentID)

	data, err := h.resultService.ExportToExcel(c.Request.Context(), assessmentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("results_%d_%s.xlsx", assessmentID, time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
