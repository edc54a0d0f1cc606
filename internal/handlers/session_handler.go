package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/SAP-F-2025/assessment-session/internal/services"
	"github.com/SAP-F-2025/assessment-session/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const clockWriteWait = 5 * time.Second

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
	resultService  services.ResultService
	upgrader       websocket.Upgrader
}

func NewSessionHandler(
	sessionService services.SessionService,
	resultService services.ResultService,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
		resultService:  resultService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Tokens travel in the query string, not cookies.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// StartSession starts a timed session for an assessment
// @Summary Start session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body services.StartSessionRequest true "Assessment to take"
// @Success 201 {object} SuccessResponse{data=services.SessionResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}

	var req services.StartSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Starting session", "assessment_id", req.AssessmentID)

	resp, err := h.sessionService.Start(c.Request.Context(), &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Session started", resp)
}

// GetSession returns the current state of a session
// @Summary Get session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse{data=services.SessionResponse}
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	resp, err := h.sessionService.Get(c.Request.Context(), sessionID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session retrieved", resp)
}

// ResumeSession rehosts a session from its snapshot after a reload or restart
// @Summary Resume session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse{data=services.SessionResponse}
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/resume [post]
func (h *SessionHandler) ResumeSession(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	h.LogRequest(c, "Resuming session", "session_id", sessionID)

	resp, err := h.sessionService.Resume(c.Request.Context(), sessionID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Session resumed", resp)
}

// AbandonSession discards a session without submitting it
// @Summary Abandon session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	h.LogRequest(c, "Abandoning session", "session_id", sessionID)

	if err := h.sessionService.Abandon(c.Request.Context(), sessionID, studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetAnswer records the answer to one question
// @Summary Set answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.AnswerRequest true "Answer"
// @Success 200 {object} SuccessResponse{data=services.SessionResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answers [put]
func (h *SessionHandler) SetAnswer(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.AnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.sessionService.Answer(c.Request.Context(), sessionID, &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Answer saved", resp)
}

// Navigate moves the question cursor
// @Summary Navigate
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.NavigateRequest true "next, previous or jump"
// @Success 200 {object} SuccessResponse{data=services.SessionResponse}
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{id}/navigate [post]
func (h *SessionHandler) Navigate(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.NavigateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.sessionService.Navigate(c.Request.Context(), sessionID, &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Cursor moved", resp)
}

// ToggleFlag marks or unmarks a question for review
// @Summary Toggle flag
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param question_id path int true "Question ID"
// @Success 200 {object} SuccessResponse{data=services.SessionResponse}
// @Failure 400 {object} ErrorResponse
// @Router /sessions/{id}/flags/{question_id} [post]
func (h *SessionHandler) ToggleFlag(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}
	questionID, err := strconv.Atoi(c.Param("question_id"))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid question_id", err)
		return
	}

	resp, err := h.sessionService.ToggleFlag(c.Request.Context(), sessionID, questionID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Flag toggled", resp)
}

// PreviewSubmission returns the confirmation summary
// @Summary Preview submission
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse{data=session.Summary}
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/submission [get]
func (h *SessionHandler) PreviewSubmission(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	summary, err := h.sessionService.Preview(c.Request.Context(), sessionID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Submission summary", summary)
}

// SubmitSession submits a session after the student confirmed
// @Summary Submit session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.SubmitRequest true "Confirmation"
// @Success 200 {object} SuccessResponse{data=session.Result}
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req services.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Submitting session", "session_id", sessionID)

	result, err := h.sessionService.Submit(c.Request.Context(), sessionID, &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Location", result.Destination)
	h.RespondWithSuccess(c, http.StatusOK, "Session submitted", result)
}

// GetSessionResult returns the stored result of a completed session
// @Summary Get session result
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse{data=models.SessionResult}
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/result [get]
func (h *SessionHandler) GetSessionResult(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	result, err := h.resultService.GetBySession(c.Request.Context(), sessionID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Result retrieved", result)
}

// StreamClock upgrades to a websocket and pushes a ClockUpdate every second
// until the session completes or the client goes away.
// @Summary Countdown stream
// @Tags sessions
// @Param id path string true "Session ID"
// @Router /sessions/{id}/clock [get]
func (h *SessionHandler) StreamClock(c *gin.Context) {
	studentID, ok := h.studentID(c)
	if !ok {
		return
	}
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	updates, unsubscribe, err := h.sessionService.Watch(c.Request.Context(), sessionID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.LogError(c, err, "Failed to upgrade clock stream", "session_id", sessionID)
		return
	}
	defer conn.Close()

	// Reads only detect the client closing the socket.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, open := <-updates:
			conn.SetWriteDeadline(time.Now().Add(clockWriteWait))
			if !open {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}
