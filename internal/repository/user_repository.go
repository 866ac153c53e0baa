package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/gurkanbulca/tasktracker/internal/database"
	"github.com/gurkanbulca/tasktracker/internal/models"
)

var userColumns = []string{"id", "username", "email", "password_hash", "is_superuser", "is_active", "date_joined"}

// UserStore is the read side of the user repository used to resolve identities.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts u, assigning its id and join date. Usernames are unique case-insensitively.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	exists, err := r.ExistsByUsername(ctx, u.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	created := *u
	created.ID = uuid.New()
	created.DateJoined = time.Now().UTC().Truncate(time.Microsecond)

	query, args := entsql.Dialect(r.db.Dialect).
		Insert(usersTable).
		Columns(userColumns...).
		Values(created.ID, created.Username, created.Email, created.PasswordHash, created.IsSuperuser, created.IsActive, created.DateJoined).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, entsql.EQ("id", id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, entsql.EqualFold("username", username))
}

// ExistsByUsername reports whether a user with that name exists, ignoring case.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	b := entsql.Dialect(r.db.Dialect)
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(usersTable)).
		Where(entsql.EqualFold("username", strings.TrimSpace(username))).
		Query()

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}

	return count > 0, nil
}

// SetSuperuser grants or revokes the elevated-privilege flag.
func (r *UserRepository) SetSuperuser(ctx context.Context, id uuid.UUID, superuser bool) error {
	query, args := entsql.Dialect(r.db.Dialect).
		Update(usersTable).
		Set("is_superuser", superuser).
		Where(entsql.EQ("id", id)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *UserRepository) getOne(ctx context.Context, p *entsql.Predicate) (*models.User, error) {
	b := entsql.Dialect(r.db.Dialect)
	query, args := b.Select(userColumns...).
		From(b.Table(usersTable)).
		Where(p).
		Query()

	var u models.User
	if err := r.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.DateJoined = u.DateJoined.UTC()

	return &u, nil
}
