package utils

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestContextLoggerAssignsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	r := gin.New()
	r.Use(ContextLogger(logger))
	r.GET("/ping", func(c *gin.Context) {
		LoggerFromContext(c, nil).Info("pong")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), "request_id="+w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestLoggerMiddlewareLogsRouteAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	r := gin.New()
	r.Use(LoggerMiddleware(logger), ContextLogger(logger))
	r.GET("/sessions/:id", func(c *gin.Context) { c.Status(http.StatusConflict) })

	req := httptest.NewRequest(http.MethodGet, "/sessions/s-1", nil)
	req.Header.Set(RequestIDHeader, "req-9")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "request_id=req-9")
	assert.Contains(t, out, "path=/sessions/:id")
	assert.Contains(t, out, "status_code=409")
}

func TestLoggerFromContextFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fallback := NewSlogLogger(slog.Default())
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, fallback, LoggerFromContext(c, fallback))
}

func TestLogRequestLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	logger.LogRequest("GET", "/x", 200, time.Millisecond)
	assert.Contains(t, buf.String(), "level=INFO")
	buf.Reset()

	logger.LogRequest("GET", "/x", 409, time.Millisecond)
	assert.Contains(t, buf.String(), "level=WARN")
	buf.Reset()

	logger.LogRequest("GET", "/x", 503, time.Millisecond)
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestToSlogLogger(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, base, ToSlogLogger(NewSlogLogger(base)))
}
