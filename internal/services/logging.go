package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// ===== OPERATION LOGGING =====

// LogOperation records the outcome of one service call. Expected client
// errors are logged below error level.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID, resourceID, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		switch {
		case IsValidation(err) || IsBusinessRule(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsUnauthorized(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsNotFound(err):
			status = "not_found"
		case IsConflict(err):
			level = slog.LevelWarn
			status = "conflict"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		switch e := err.(type) {
		case ValidationErrors:
			attrs = append(attrs, slog.Int("validation_errors_count", len(e)))
		case *BusinessRuleError:
			attrs = append(attrs, slog.String("business_rule", e.Rule))
		case *PermissionError:
			attrs = append(attrs, slog.String("permission_action", e.Action))
		}
	}

	if level == slog.LevelDebug && !l.config.EnableDebug {
		return
	}
	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// LogRecovery logs a panic recovered inside a background goroutine
func (l *ServiceLogger) LogRecovery(ctx context.Context, operation, resourceID string, recovered interface{}, stack []byte) {
	l.logger.LogAttrs(ctx, slog.LevelError, "Recovered from panic",
		slog.String("operation", operation),
		slog.String("resource_id", resourceID),
		slog.Any("panic", recovered),
		slog.String("stack", string(stack)),
	)
}

// ===== CONTEXTUAL LOGGER =====

// ContextualLogger times a single operation
type ContextualLogger struct {
	parent    *ServiceLogger
	ctx       context.Context
	operation string
	userID    string
	start     time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *ContextualLogger {
	return &ContextualLogger{
		parent:    l,
		ctx:       ctx,
		operation: operation,
		userID:    userID,
		start:     time.Now(),
	}
}

func (cl *ContextualLogger) LogResult(resourceID, resourceType string, err error) {
	cl.parent.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID, resourceType, time.Since(cl.start), err)
}
