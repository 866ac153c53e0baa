// internal/middleware/auth.go
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/bornholm/go-x/slogx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gurkanbulca/tasktracker/internal/models"
	"github.com/gurkanbulca/tasktracker/internal/repository"
	"github.com/gurkanbulca/tasktracker/pkg/auth"
)

// Names reported by GetAuthViaFromContext.
const (
	AuthViaBearer  = "bearer"
	AuthViaSession = "session"
)

// Authenticator resolves the request credentials it understands to a user.
// It returns a nil user, not an error, when its credential is absent or does
// not validate, so the next authenticator gets a chance.
type Authenticator interface {
	Name() string
	Authenticate(c *gin.Context) (*models.User, error)
}

// Authenticate tries each authenticator in order and stores the first resolved
// user in the request context. When none succeeds, onUnauthorized handles the request.
func Authenticate(onUnauthorized gin.HandlerFunc, authenticators ...Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, authenticator := range authenticators {
			user, err := authenticator.Authenticate(c)
			if err != nil {
				slog.ErrorContext(c.Request.Context(), "could not authenticate user",
					slog.String("authenticator", authenticator.Name()), slogx.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "A server error occurred."})
				return
			}

			if user == nil {
				continue
			}

			ctx := WithUser(c.Request.Context(), user, authenticator.Name())
			c.Request = c.Request.WithContext(ctx)

			c.Next()
			return
		}

		onUnauthorized(c)
		c.Abort()
	}
}

// BearerAuthenticator accepts "Authorization: Bearer <access token>".
type BearerAuthenticator struct {
	tokenManager *auth.TokenManager
	users        repository.UserStore
}

func NewBearerAuthenticator(tokenManager *auth.TokenManager, users repository.UserStore) *BearerAuthenticator {
	return &BearerAuthenticator{
		tokenManager: tokenManager,
		users:        users,
	}
}

func (a *BearerAuthenticator) Name() string {
	return AuthViaBearer
}

// Authenticate implements [Authenticator].
func (a *BearerAuthenticator) Authenticate(c *gin.Context) (*models.User, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, nil
	}

	token, err := auth.ExtractTokenFromHeader(header)
	if err != nil {
		return nil, nil
	}

	claims, err := a.tokenManager.ValidateAccessToken(token)
	if err != nil {
		slog.DebugContext(c.Request.Context(), "rejected bearer token", slogx.Error(err))
		return nil, nil
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil
	}

	return activeUser(c, a.users, userID)
}

var _ Authenticator = &BearerAuthenticator{}

func activeUser(c *gin.Context, users repository.UserStore, id uuid.UUID) (*models.User, error) {
	user, err := users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	if !user.IsActive {
		return nil, nil
	}

	return user, nil
}
