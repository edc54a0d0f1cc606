package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/assessment-session/internal/middleware"
	"github.com/SAP-F-2025/assessment-session/internal/services"
	"github.com/SAP-F-2025/assessment-session/internal/session"
	"github.com/SAP-F-2025/assessment-session/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// log returns the request scoped logger, which already carries the request id
func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.LoggerFromContext(c, h.logger)
}

func (h *BaseHandler) requestFields(c *gin.Context, additionalFields []interface{}) []interface{} {
	fields := []interface{}{
		"student_id", c.GetString(middleware.StudentIDKey),
		"role", c.GetString(middleware.RoleKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	return append(fields, additionalFields...)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := h.requestFields(c, additionalFields)
	fields = append(fields, "remote_addr", c.ClientIP())
	h.log(c).Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.log(c).LogError(err, message, h.requestFields(c, additionalFields)...)
}

// LogWarn logs warning messages with context
func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.log(c).Warn(message, h.requestFields(c, additionalFields)...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}

	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode, "error", err)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// studentID returns the authenticated student or aborts with 401
func (h *BaseHandler) studentID(c *gin.Context) (string, bool) {
	id := c.GetString(middleware.StudentIDKey)
	if id == "" {
		h.RespondWithError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return "", false
	}
	return id, true
}

func (h *BaseHandler) parseUintParam(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid "+param, err)
		return 0, false
	}
	return uint(id), true
}

func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return false
	}
	return true
}

// handleServiceError maps service and session errors onto status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, []services.ValidationError{*validationError})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err, map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Session not found", err)
	case errors.Is(err, services.ErrAssessmentNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Assessment not found", err)
	case errors.Is(err, services.ErrResultNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Result not found", err)
	case errors.Is(err, services.ErrAssessmentNotActive):
		h.RespondWithError(c, http.StatusConflict, "Assessment is not open for sessions", err)

	// Session rules
	case errors.Is(err, session.ErrUnknownQuestion):
		h.RespondWithError(c, http.StatusBadRequest, "Question is not part of this session", err)
	case errors.Is(err, session.ErrConfirmationRequired):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Submission must be confirmed", err)
	case errors.Is(err, session.ErrSessionClosed):
		h.RespondWithError(c, http.StatusConflict, "Session is no longer in progress", err)
	case errors.Is(err, session.ErrAlreadySubmitted):
		h.RespondWithError(c, http.StatusConflict, "Session already submitted", err)
	case errors.Is(err, session.ErrSnapshotMismatch):
		h.RespondWithError(c, http.StatusConflict, "Saved session no longer matches the assessment", err)
	case errors.Is(err, session.ErrNoQuestions), errors.Is(err, session.ErrInvalidDuration),
		errors.Is(err, session.ErrDuplicateQuestion), errors.Is(err, session.ErrUnknownKind):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Assessment cannot be taken", err)

	// Generic errors
	case errors.Is(err, services.ErrUnavailable):
		h.RespondWithError(c, http.StatusServiceUnavailable, "Service is shutting down", err)
	case errors.Is(err, services.ErrUnauthorized):
		h.RespondWithError(c, http.StatusUnauthorized, "Unauthorized access", err)
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrSessionAccessDenied):
		h.RespondWithError(c, http.StatusForbidden, "Forbidden - insufficient permissions", err)
	case errors.Is(err, services.ErrConflict):
		h.RespondWithError(c, http.StatusConflict, "Resource conflict", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
