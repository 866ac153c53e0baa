// pkg/security/event_types.go
package security

import "log/slog"

// EventType constants for authentication and token lifecycle events
const (
	EventTypeUserRegistered   = "user_registered"
	EventTypeLoginSuccess     = "login_success"
	EventTypeLoginFailed      = "login_failed"
	EventTypeSessionStarted   = "session_started"
	EventTypeSessionEnded     = "session_ended"
	EventTypeTokenRefreshed   = "token_refreshed"
	EventTypeTokenBlacklisted = "token_blacklisted"
	EventTypeInvalidToken     = "invalid_token"
	EventTypeSuperuserCreated = "superuser_created"
)

// Severity constants
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// ValidEventTypes returns all valid event type strings
func ValidEventTypes() []string {
	return []string{
		EventTypeUserRegistered,
		EventTypeLoginSuccess,
		EventTypeLoginFailed,
		EventTypeSessionStarted,
		EventTypeSessionEnded,
		EventTypeTokenRefreshed,
		EventTypeTokenBlacklisted,
		EventTypeInvalidToken,
		EventTypeSuperuserCreated,
	}
}

// IsValidEventType checks if the event type string is valid
func IsValidEventType(eventType string) bool {
	for _, valid := range ValidEventTypes() {
		if valid == eventType {
			return true
		}
	}
	return false
}

// LogLevel maps a severity onto the slog level events are written at.
func LogLevel(severity string) slog.Level {
	switch severity {
	case SeverityMedium:
		return slog.LevelWarn
	case SeverityHigh, SeverityCritical:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
