package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"

	"github.com/gurkanbulca/tasktracker/internal/models"
	"github.com/gurkanbulca/tasktracker/internal/repository"
)

const sessionUserIDKey = "user_id"

var errSessionNotFound = errors.New("session not found")

// NewSessionStore returns a signed cookie store for the session credential.
func NewSessionStore(secret string, maxAge time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))

	store.MaxAge(int(maxAge.Seconds()))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode

	return store
}

// SessionAuthenticator accepts the session cookie written by StoreSessionUser.
type SessionAuthenticator struct {
	store       sessions.Store
	sessionName string
	users       repository.UserStore
}

func NewSessionAuthenticator(store sessions.Store, sessionName string, users repository.UserStore) *SessionAuthenticator {
	return &SessionAuthenticator{
		store:       store,
		sessionName: sessionName,
		users:       users,
	}
}

func (a *SessionAuthenticator) Name() string {
	return AuthViaSession
}

// Authenticate implements [Authenticator].
func (a *SessionAuthenticator) Authenticate(c *gin.Context) (*models.User, error) {
	userID, err := a.sessionUserID(c.Request)
	if err != nil {
		return nil, nil
	}

	return activeUser(c, a.users, userID)
}

// StoreSessionUser starts a session for user.
func (a *SessionAuthenticator) StoreSessionUser(c *gin.Context, user *models.User) error {
	sess, err := a.store.Get(c.Request, a.sessionName)
	if err != nil && sess == nil {
		return errors.WithStack(err)
	}

	sess.Values[sessionUserIDKey] = user.ID.String()

	if err := sess.Save(c.Request, c.Writer); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// ClearSession expires the session cookie.
func (a *SessionAuthenticator) ClearSession(c *gin.Context) error {
	sess, err := a.store.Get(c.Request, a.sessionName)
	if err != nil && sess == nil {
		return errors.WithStack(err)
	}

	delete(sess.Values, sessionUserIDKey)
	sess.Options.MaxAge = -1

	if err := sess.Save(c.Request, c.Writer); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (a *SessionAuthenticator) sessionUserID(r *http.Request) (uuid.UUID, error) {
	sess, err := a.store.Get(r, a.sessionName)
	if err != nil {
		return uuid.Nil, errors.WithStack(err)
	}

	raw, ok := sess.Values[sessionUserIDKey].(string)
	if !ok || raw == "" {
		return uuid.Nil, errSessionNotFound
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.WithStack(err)
	}

	return id, nil
}

var _ Authenticator = &SessionAuthenticator{}
