package repository

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/gurkanbulca/tasktracker/internal/database"
	"github.com/gurkanbulca/tasktracker/internal/models"
)

const blacklistTable = "blacklisted_tokens"

// TokenBlacklist persists revoked refresh tokens by their jti.
type TokenBlacklist struct {
	db *database.DB
}

func NewTokenBlacklist(db *database.DB) *TokenBlacklist {
	return &TokenBlacklist{db: db}
}

// Add revokes a token. Revoking the same jti twice returns ErrConflict.
func (b *TokenBlacklist) Add(ctx context.Context, token *models.BlacklistedToken) error {
	blacklisted, err := b.Contains(ctx, token.JTI)
	if err != nil {
		return err
	}
	if blacklisted {
		return ErrConflict
	}

	query, args := entsql.Dialect(b.db.Dialect).
		Insert(blacklistTable).
		Columns("jti", "user_id", "expires_at", "blacklisted_at").
		Values(token.JTI, token.UserID, token.ExpiresAt.UTC(), time.Now().UTC().Truncate(time.Microsecond)).
		Query()

	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (b *TokenBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	builder := entsql.Dialect(b.db.Dialect)
	query, args := builder.Select(entsql.Count("*")).
		From(builder.Table(blacklistTable)).
		Where(entsql.EQ("jti", jti)).
		Query()

	var count int
	if err := b.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check token blacklist: %w", err)
	}

	return count > 0, nil
}

// FlushExpired drops entries whose token would be rejected as expired anyway.
func (b *TokenBlacklist) FlushExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args := entsql.Dialect(b.db.Dialect).
		Delete(blacklistTable).
		Where(entsql.LT("expires_at", now.UTC())).
		Query()

	res, err := b.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("flush expired tokens: %w", err)
	}

	return res.RowsAffected()
}
