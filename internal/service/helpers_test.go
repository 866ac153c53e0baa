package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gurkanbulca/tasktracker/internal/database"
	"github.com/gurkanbulca/tasktracker/internal/database/databasetest"
	"github.com/gurkanbulca/tasktracker/internal/models"
	"github.com/gurkanbulca/tasktracker/internal/repository"
	"github.com/gurkanbulca/tasktracker/pkg/auth"
)

const testPassword = "TestPass123!"

// testEnv wires the services on top of a private in-memory database.
type testEnv struct {
	t         *testing.T
	db        *database.DB
	users     *repository.UserRepository
	tasks     *TaskService
	auth      *AuthService
	tokens    *auth.TokenManager
	passwords *auth.PasswordManager
}

type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := databasetest.Open(t)
	clock := &steppingClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	users := repository.NewUserRepository(db)
	tokens := auth.NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
	passwords := auth.NewPasswordManager(auth.WithHashCost(bcrypt.MinCost))
	securityLogger := NewSecurityLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &testEnv{
		t:         t,
		db:        db,
		users:     users,
		tasks:     NewTaskService(repository.NewTaskRepository(db, repository.WithClock(clock.Now))),
		auth:      NewAuthService(users, repository.NewTokenBlacklist(db), tokens, passwords, securityLogger),
		tokens:    tokens,
		passwords: passwords,
	}
}

// createUser registers an active user with testPassword.
func (e *testEnv) createUser(username string) *models.User {
	e.t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Password: testPassword,
		Email:    username + "@example.com",
	})
	require.NoError(e.t, err)
	return user
}

func (e *testEnv) createTask(owner *models.User, title string) *models.Task {
	e.t.Helper()
	task, err := e.tasks.CreateTask(context.Background(), owner, TaskInput{
		Title:       Value(title),
		Description: Value("description of " + title),
	})
	require.NoError(e.t, err)
	return task
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}
