package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/assessment-session/internal/middleware"
	"github.com/SAP-F-2025/assessment-session/internal/services"
	"github.com/SAP-F-2025/assessment-session/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	assessmentHandler *AssessmentHandler
	sessionHandler    *SessionHandler
	resultHandler     *ResultHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		assessmentHandler: NewAssessmentHandler(serviceManager.Assessment(), logger),
		sessionHandler:    NewSessionHandler(serviceManager.Session(), serviceManager.Result(), logger),
		resultHandler:     NewResultHandler(serviceManager.Result(), logger),
	}
}

// SetupRoutes sets up all API routes. auth resolves the caller identity and
// role for everything under /api/v1. Authoring and exports are staff only.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1", auth)
	staff := middleware.RequireStaff()
	{
		// Assessment routes
		assessments := v1.Group("/assessments")
		{
			assessments.POST("", staff, hm.assessmentHandler.CreateAssessment)
			assessments.POST("/import", staff, hm.assessmentHandler.ImportAssessment)
			assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
		}

		// Session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.DELETE("/:id", hm.sessionHandler.AbandonSession)
			sessions.POST("/:id/resume", hm.sessionHandler.ResumeSession)
			sessions.PUT("/:id/answers", hm.sessionHandler.SetAnswer)
			sessions.POST("/:id/navigate", hm.sessionHandler.Navigate)
			sessions.POST("/:id/flags/:question_id", hm.sessionHandler.ToggleFlag)
			sessions.GET("/:id/submission", hm.sessionHandler.PreviewSubmission)
			sessions.POST("/:id/submit", hm.sessionHandler.SubmitSession)
			sessions.GET("/:id/result", hm.sessionHandler.GetSessionResult)
			sessions.GET("/:id/clock", hm.sessionHandler.StreamClock)
		}

		// Results destination
		results := v1.Group("/results")
		{
			results.GET("/:assessment_id", hm.resultHandler.GetResults)
			results.GET("/:assessment_id/export", staff, hm.resultHandler.ExportResults)
		}
	}
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "assessment-session",
	})
}
