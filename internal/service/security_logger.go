// internal/service/security_logger.go
package service

import (
	"context"
	"log/slog"

	"github.com/gurkanbulca/tasktracker/internal/metrics"
	"github.com/gurkanbulca/tasktracker/internal/middleware"
	"github.com/gurkanbulca/tasktracker/internal/models"
	"github.com/gurkanbulca/tasktracker/pkg/security"
)

// SecurityLogger provides convenience methods for logging security events
type SecurityLogger struct {
	logger *slog.Logger
}

// NewSecurityLogger creates a new security logger
func NewSecurityLogger(logger *slog.Logger) *SecurityLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SecurityLogger{
		logger: logger.With(slog.String("component", "security")),
	}
}

// LogFromContext logs a security event using context information
func (sl *SecurityLogger) LogFromContext(ctx context.Context, eventType, description, severity string, attrs ...slog.Attr) {
	clientInfo := middleware.GetClientInfoFromContext(ctx)

	attrs = append(attrs,
		slog.String("event_type", eventType),
		slog.String("severity", severity),
		slog.String("ip_address", clientInfo.IPAddress),
		slog.String("user_agent", clientInfo.UserAgent),
	)
	if clientInfo.UserID != "" {
		attrs = append(attrs, slog.String("actor_id", clientInfo.UserID))
	}

	metrics.SecurityEvents.WithLabelValues(eventType).Inc()
	sl.logger.LogAttrs(ctx, security.LogLevel(severity), description, attrs...)
}

// Convenience methods for common security events

func (sl *SecurityLogger) LogUserRegistered(ctx context.Context, user *models.User) {
	sl.LogFromContext(ctx, security.EventTypeUserRegistered,
		"New user registered", security.SeverityLow, userAttrs(user)...)
}

func (sl *SecurityLogger) LogSuperuserCreated(ctx context.Context, user *models.User) {
	sl.LogFromContext(ctx, security.EventTypeSuperuserCreated,
		"Superuser created", security.SeverityMedium, userAttrs(user)...)
}

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, user *models.User) {
	sl.LogFromContext(ctx, security.EventTypeLoginSuccess,
		"User successfully logged in", security.SeverityLow, userAttrs(user)...)
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, username, reason string) {
	sl.LogFromContext(ctx, security.EventTypeLoginFailed,
		"Failed login attempt", security.SeverityMedium,
		slog.String("username", username), slog.String("reason", reason))
}

func (sl *SecurityLogger) LogSessionStarted(ctx context.Context, user *models.User) {
	sl.LogFromContext(ctx, security.EventTypeSessionStarted,
		"Session started", security.SeverityLow, userAttrs(user)...)
}

func (sl *SecurityLogger) LogSessionEnded(ctx context.Context, user *models.User) {
	sl.LogFromContext(ctx, security.EventTypeSessionEnded,
		"Session ended", security.SeverityLow, userAttrs(user)...)
}

func (sl *SecurityLogger) LogTokenRefreshed(ctx context.Context, user *models.User) {
	sl.LogFromContext(ctx, security.EventTypeTokenRefreshed,
		"Access token refreshed", security.SeverityLow, userAttrs(user)...)
}

func (sl *SecurityLogger) LogTokenBlacklisted(ctx context.Context, userID, jti string) {
	sl.LogFromContext(ctx, security.EventTypeTokenBlacklisted,
		"Refresh token blacklisted", security.SeverityLow,
		slog.String("user_id", userID), slog.String("jti", jti))
}

func (sl *SecurityLogger) LogInvalidToken(ctx context.Context, reason string) {
	sl.LogFromContext(ctx, security.EventTypeInvalidToken,
		"Invalid token presented", security.SeverityMedium, slog.String("reason", reason))
}

func userAttrs(user *models.User) []slog.Attr {
	return []slog.Attr{
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
	}
}
