// internal/service/task_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bornholm/go-x/slogx"
	"github.com/google/uuid"

	"github.com/gurkanbulca/tasktracker/internal/metrics"
	"github.com/gurkanbulca/tasktracker/internal/models"
	"github.com/gurkanbulca/tasktracker/internal/policy"
	"github.com/gurkanbulca/tasktracker/internal/repository"
)

// TaskStore is the persistence the task service needs.
type TaskStore interface {
	Create(ctx context.Context, scope repository.OwnerScope, t *models.Task) (*models.Task, error)
	Get(ctx context.Context, scope repository.OwnerScope, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, scope repository.OwnerScope, filter repository.ListFilter) ([]*models.Task, error)
	Update(ctx context.Context, scope repository.OwnerScope, id uuid.UUID, mutate repository.TaskMutator) (*models.Task, error)
	Delete(ctx context.Context, scope repository.OwnerScope, id uuid.UUID, check repository.TaskMutator) error
}

// ListOptions are the query parameters accepted when listing tasks.
type ListOptions struct {
	Search   string
	Ordering string
	Limit    int
	Offset   int
}

// TaskService runs every task operation through the same pipeline:
// authenticated identity, owner scope, mutability guard, then the store.
type TaskService struct {
	store TaskStore
	guard policy.Guard
}

func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{
		store: store,
		guard: policy.Mutability,
	}
}

// CreateTask validates the input and stores a task owned by identity.
func (s *TaskService) CreateTask(ctx context.Context, identity *models.User, in TaskInput) (task *models.Task, err error) {
	defer func() { s.observe(ctx, policy.OpCreate, err) }()

	scope, err := scopeOf(identity)
	if err != nil {
		return nil, err
	}

	draft := &models.Task{Priority: models.DefaultPriority}
	if err := applyTaskInput(draft, in, false); err != nil {
		return nil, err
	}

	task, err = s.store.Create(ctx, scope, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns one of identity's tasks.
func (s *TaskService) GetTask(ctx context.Context, identity *models.User, rawID string) (task *models.Task, err error) {
	defer func() { s.observe(ctx, policy.OpRetrieve, err) }()

	scope, err := scopeOf(identity)
	if err != nil {
		return nil, err
	}

	id, err := parseTaskID(rawID)
	if err != nil {
		return nil, err
	}

	task, err = s.store.Get(ctx, scope, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to get task")
	}

	return task, nil
}

// ListTasks returns identity's tasks filtered and ordered by opts.
func (s *TaskService) ListTasks(ctx context.Context, identity *models.User, opts ListOptions) (tasks []*models.Task, err error) {
	defer func() { s.observe(ctx, policy.OpList, err) }()

	scope, err := scopeOf(identity)
	if err != nil {
		return nil, err
	}

	filter := repository.ListFilter{
		Search:   opts.Search,
		Ordering: ParseOrdering(opts.Ordering),
		Limit:    max(opts.Limit, 0),
		Offset:   max(opts.Offset, 0),
	}

	tasks, err = s.store.List(ctx, scope, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask applies in to one of identity's tasks. A task outside the owner
// scope is reported as not found before the guard runs, and the guard runs
// before the payload is validated.
func (s *TaskService) UpdateTask(ctx context.Context, identity *models.User, rawID string, in TaskInput, partial bool) (task *models.Task, err error) {
	defer func() { s.observe(ctx, policy.OpUpdate, err) }()

	scope, err := scopeOf(identity)
	if err != nil {
		return nil, err
	}

	id, err := parseTaskID(rawID)
	if err != nil {
		return nil, err
	}

	task, err = s.store.Update(ctx, scope, id, func(current *models.Task) error {
		if err := s.guard(policy.OpUpdate, current); err != nil {
			return &ForbiddenError{Reason: err}
		}
		return applyTaskInput(current, in, partial)
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to update task")
	}

	return task, nil
}

// DeleteTask removes one of identity's tasks unless the guard refuses.
func (s *TaskService) DeleteTask(ctx context.Context, identity *models.User, rawID string) (err error) {
	defer func() { s.observe(ctx, policy.OpDelete, err) }()

	scope, err := scopeOf(identity)
	if err != nil {
		return err
	}

	id, err := parseTaskID(rawID)
	if err != nil {
		return err
	}

	err = s.store.Delete(ctx, scope, id, func(current *models.Task) error {
		if err := s.guard(policy.OpDelete, current); err != nil {
			return &ForbiddenError{Reason: err}
		}
		return nil
	})
	if err != nil {
		return translateStoreError(err, "failed to delete task")
	}

	return nil
}

func (s *TaskService) observe(ctx context.Context, op policy.Operation, err error) {
	outcome := Outcome(err)
	metrics.TaskOperations.WithLabelValues(string(op), outcome).Inc()

	if outcome == metrics.OutcomeError {
		slog.ErrorContext(ctx, "task operation failed", slog.String("operation", string(op)), slogx.Error(err))
	}
}

// Outcome classifies err for metrics.
func Outcome(err error) string {
	var verr *ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUnauthenticated):
		return metrics.OutcomeUnauthorized
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.As(err, &verr):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

// ParseOrdering turns a comma separated list such as "-priority,created_at"
// into sort keys. Unknown fields are ignored.
func ParseOrdering(raw string) []repository.Order {
	var orders []repository.Order
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		field, desc := strings.CutPrefix(part, "-")
		switch field {
		case repository.SortPriority, repository.SortCreatedAt:
			orders = append(orders, repository.Order{Field: field, Desc: desc})
		}
	}
	return orders
}

// scopeOf builds a fresh owner scope from the authenticated identity.
func scopeOf(identity *models.User) (repository.OwnerScope, error) {
	if identity == nil || !identity.IsActive {
		return repository.OwnerScope{}, ErrUnauthenticated
	}
	return repository.ScopeFor(identity.ID), nil
}

// parseTaskID treats a malformed id like an id that does not exist.
func parseTaskID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

func translateStoreError(err error, msg string) error {
	var (
		forbidden *ForbiddenError
		verr      *ValidationError
	)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.As(err, &forbidden), errors.As(err, &verr):
		return err
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
