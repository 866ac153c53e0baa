// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gurkanbulca/tasktracker/internal/models"
	"github.com/gurkanbulca/tasktracker/internal/repository"
	"github.com/gurkanbulca/tasktracker/pkg/auth"
)

// UserAccounts is the user persistence the auth service needs.
type UserAccounts interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	SetSuperuser(ctx context.Context, id uuid.UUID, superuser bool) error
}

// TokenRevocation stores revoked refresh tokens until they expire.
type TokenRevocation interface {
	Add(ctx context.Context, token *models.BlacklistedToken) error
	Contains(ctx context.Context, jti string) (bool, error)
	FlushExpired(ctx context.Context, now time.Time) (int64, error)
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type AuthService struct {
	users           UserAccounts
	blacklist       TokenRevocation
	tokenManager    *auth.TokenManager
	passwordManager *auth.PasswordManager
	securityLogger  *SecurityLogger
	now             func() time.Time
}

func NewAuthService(
	users UserAccounts,
	blacklist TokenRevocation,
	tokenManager *auth.TokenManager,
	passwordManager *auth.PasswordManager,
	securityLogger *SecurityLogger,
) *AuthService {
	return &AuthService{
		users:           users,
		blacklist:       blacklist,
		tokenManager:    tokenManager,
		passwordManager: passwordManager,
		securityLogger:  securityLogger,
		now:             time.Now,
	}
}

// Register creates a regular, active account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.createUser(ctx, in)
	if err != nil {
		return nil, err
	}

	s.securityLogger.LogUserRegistered(ctx, user)

	return user, nil
}

// CreateSuperuser creates an active account with elevated privileges.
func (s *AuthService) CreateSuperuser(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.createUser(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetSuperuser(ctx, user.ID, true); err != nil {
		return nil, fmt.Errorf("failed to grant superuser: %w", err)
	}
	user.IsSuperuser = true

	s.securityLogger.LogSuperuserCreated(ctx, user)

	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validateRegistration(in); err != nil {
		return nil, err
	}

	hashedPassword, err := s.passwordManager.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashedPassword,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, &ValidationError{Fields: map[string][]string{"username": {MsgUsernameTaken}}}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *AuthService) validateRegistration(in RegisterInput) error {
	verr := &ValidationError{}

	switch {
	case in.Username == "":
		verr.Add("username", MsgRequired)
	case len(in.Username) > auth.MaxUsernameLength:
		verr.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", auth.MaxUsernameLength))
	case len(in.Username) < auth.MinUsernameLength:
		verr.Add("username", fmt.Sprintf("Ensure this field has at least %d characters.", auth.MinUsernameLength))
	case auth.ValidateUsername(in.Username) != nil:
		verr.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	if in.Password == "" {
		verr.Add("password", MsgRequired)
	} else if err := s.passwordManager.ValidatePassword(in.Password); err != nil {
		verr.Add("password", err.Error())
	}

	if in.Email != "" {
		if err := auth.ValidateEmail(in.Email); err != nil {
			verr.Add("email", "Enter a valid email address.")
		}
	}

	return verr.OrNil()
}

// Authenticate checks a username and password pair. Unknown users, wrong
// passwords and inactive accounts all fail with ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.securityLogger.LogLoginFailed(ctx, username, "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.passwordManager.ComparePassword(user.PasswordHash, password); err != nil {
		s.securityLogger.LogLoginFailed(ctx, username, "invalid password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.securityLogger.LogLoginFailed(ctx, username, "account is deactivated")
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates the user and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*auth.TokenPair, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokenManager.GenerateTokenPair(user.ID.String(), user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.securityLogger.LogLoginSuccess(ctx, user)

	return tokens, nil
}

// StartSession authenticates the user for the session credential form.
func (s *AuthService) StartSession(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.securityLogger.LogSessionStarted(ctx, user)

	return user, nil
}

// EndSession records the end of identity's session.
func (s *AuthService) EndSession(ctx context.Context, identity *models.User) {
	if identity != nil {
		s.securityLogger.LogSessionEnded(ctx, identity)
	}
}

// Refresh issues a new access token for a refresh token that is valid, not
// blacklisted and belongs to an active user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := s.validRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", 0, err
	}

	user, err := s.tokenOwner(ctx, claims)
	if err != nil {
		return "", 0, err
	}

	accessToken, expiresIn, err := s.tokenManager.RefreshAccessToken(claims)
	if err != nil {
		return "", 0, fmt.Errorf("failed to refresh token: %w", err)
	}

	s.securityLogger.LogTokenRefreshed(ctx, user)

	return accessToken, expiresIn, nil
}

// Logout blacklists the given refresh token. Missing, invalid and already
// blacklisted tokens all fail with ErrInvalidToken.
func (s *AuthService) Logout(ctx context.Context, identity *models.User, refreshToken string) error {
	if identity == nil {
		return ErrUnauthenticated
	}

	claims, err := s.validRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ErrInvalidToken
	}

	err = s.blacklist.Add(ctx, &models.BlacklistedToken{
		JTI:       claims.ID,
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	s.securityLogger.LogTokenBlacklisted(ctx, claims.UserID, claims.ID)

	return nil
}

// Me returns the current state of the authenticated user.
func (s *AuthService) Me(ctx context.Context, identity *models.User) (*models.User, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// FlushExpiredTokens drops blacklist entries for tokens that have expired.
func (s *AuthService) FlushExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.blacklist.FlushExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to flush expired tokens: %w", err)
	}
	return n, nil
}

func (s *AuthService) validRefreshToken(ctx context.Context, refreshToken string) (*auth.CustomClaims, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.tokenManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.securityLogger.LogInvalidToken(ctx, err.Error())
		return nil, ErrInvalidToken
	}

	blacklisted, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if blacklisted {
		s.securityLogger.LogInvalidToken(ctx, "token is blacklisted")
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *AuthService) tokenOwner(ctx context.Context, claims *auth.CustomClaims) (*models.User, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	return user, nil
}
