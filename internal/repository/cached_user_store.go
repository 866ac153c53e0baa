package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gurkanbulca/tasktracker/internal/models"
)

// CachedUserStore keeps recently resolved users in memory for a short time so
// every authenticated request does not hit the users table. Changes to a user,
// such as deactivation, are seen once the entry expires.
type CachedUserStore struct {
	backend UserStore
	cache   *expirable.LRU[uuid.UUID, models.User]
}

func NewCachedUserStore(backend UserStore, size int, ttl time.Duration) *CachedUserStore {
	return &CachedUserStore{
		backend: backend,
		cache:   expirable.NewLRU[uuid.UUID, models.User](size, nil, ttl),
	}
}

func (s *CachedUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.cache.Get(id); ok {
		return &u, nil
	}

	u, err := s.backend.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Add(id, *u)

	return u, nil
}

var _ UserStore = &CachedUserStore{}
