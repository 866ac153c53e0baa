// internal/middleware/context_extractor.go
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/tasktracker/internal/models"
)

// ContextKeys for storing request metadata
type ContextKey string

const (
	ContextKeyIPAddress ContextKey = "ip_address"
	ContextKeyUserAgent ContextKey = "user_agent"
	ContextKeyUser      ContextKey = "user"
	ContextKeyAuthVia   ContextKey = "auth_via"
)

// ClientMetadata copies the client address and user agent into the request context
// so services can attach them to security events.
func ClientMetadata() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if ip := c.ClientIP(); ip != "" {
			ctx = context.WithValue(ctx, ContextKeyIPAddress, ip)
		}
		if ua := c.Request.UserAgent(); ua != "" {
			ctx = context.WithValue(ctx, ContextKeyUserAgent, ua)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// WithUser stores the authenticated user and the credential that resolved it.
func WithUser(ctx context.Context, user *models.User, via string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUser, user)
	return context.WithValue(ctx, ContextKeyAuthVia, via)
}

// GetIPAddressFromContext extracts IP address from context
func GetIPAddressFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyIPAddress).(string); ok {
		return ip
	}
	return ""
}

// GetUserAgentFromContext extracts user agent from context
func GetUserAgentFromContext(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

// GetUserFromContext returns the authenticated user, if any.
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*models.User)
	return user, ok && user != nil
}

// GetAuthViaFromContext returns the name of the authenticator that resolved the user.
func GetAuthViaFromContext(ctx context.Context) string {
	if via, ok := ctx.Value(ContextKeyAuthVia).(string); ok {
		return via
	}
	return ""
}

// ClientInfo groups the request metadata attached to security events.
type ClientInfo struct {
	IPAddress string
	UserAgent string
	UserID    string
	Username  string
}

// GetClientInfoFromContext extracts all client information from context
func GetClientInfoFromContext(ctx context.Context) ClientInfo {
	info := ClientInfo{
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
	}
	if user, ok := GetUserFromContext(ctx); ok {
		info.UserID = user.ID.String()
		info.Username = user.Username
	}
	return info
}
