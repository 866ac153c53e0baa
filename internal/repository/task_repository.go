// internal/repository/task_repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gurkanbulca/tasktracker/internal/database"
	"github.com/gurkanbulca/tasktracker/internal/models"
)

const (
	tasksTable = "tasks"
	usersTable = "users"
)

// Sort keys accepted by ListFilter.Ordering.
const (
	SortCreatedAt = "created_at"
	SortPriority  = "priority"
)

// OwnerScope restricts every task query to the records of a single owner.
// It is built per request from the authenticated identity.
type OwnerScope struct {
	OwnerID uuid.UUID
}

func ScopeFor(ownerID uuid.UUID) OwnerScope {
	return OwnerScope{OwnerID: ownerID}
}

func (s OwnerScope) predicate(t *entsql.SelectTable) *entsql.Predicate {
	return entsql.EQ(t.C("owner_id"), s.OwnerID)
}

// Order is a single sort key with a direction.
type Order struct {
	Field string
	Desc  bool
}

type ListFilter struct {
	Search   string
	Ordering []Order
	Limit    int
	Offset   int
}

// TaskMutator inspects the locked, persisted task and applies changes to it in place.
// Returning an error aborts the transaction and leaves the record untouched.
type TaskMutator func(current *models.Task) error

type TaskRepository struct {
	db  *database.DB
	now func() time.Time
}

type TaskRepositoryOption func(*TaskRepository)

// WithClock overrides the time source used to stamp created_at and updated_at.
func WithClock(now func() time.Time) TaskRepositoryOption {
	return func(r *TaskRepository) {
		r.now = now
	}
}

func NewTaskRepository(db *database.DB, opts ...TaskRepositoryOption) *TaskRepository {
	r := &TaskRepository{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TaskRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect)
}

// timestamp returns the current time at the precision PostgreSQL stores.
func (r *TaskRepository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// Create persists t for the scope owner. The id, owner and both timestamps are assigned here.
func (r *TaskRepository) Create(ctx context.Context, scope OwnerScope, t *models.Task) (*models.Task, error) {
	now := r.timestamp()

	created := *t
	created.ID = uuid.New()
	created.OwnerID = scope.OwnerID
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Priority == "" {
		created.Priority = models.DefaultPriority
	}

	query, args := r.builder().
		Insert(tasksTable).
		Columns("id", "title", "description", "priority", "is_completed", "owner_id", "created_at", "updated_at").
		Values(created.ID, created.Title, created.Description, string(created.Priority), created.IsCompleted, created.OwnerID, created.CreatedAt, created.UpdatedAt).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return r.Get(ctx, scope, created.ID)
}

// Get returns the task with the given id if it belongs to the scope owner.
func (r *TaskRepository) Get(ctx context.Context, scope OwnerScope, id uuid.UUID) (*models.Task, error) {
	selector, t := r.selectWithOwner()
	selector.Where(entsql.And(scope.predicate(t), entsql.EQ(t.C("id"), id)))

	query, args := selector.Query()

	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	return normalize(&task), nil
}

// List returns the scope owner's tasks matching filter.
func (r *TaskRepository) List(ctx context.Context, scope OwnerScope, filter ListFilter) ([]*models.Task, error) {
	selector, t := r.selectWithOwner()

	predicates := []*entsql.Predicate{scope.predicate(t)}
	if search := strings.TrimSpace(filter.Search); search != "" {
		predicates = append(predicates, entsql.Or(
			entsql.ContainsFold(t.C("title"), search),
			entsql.ContainsFold(t.C("description"), search),
		))
	}
	selector.Where(entsql.And(predicates...))

	ordering := filter.Ordering
	if len(ordering) == 0 {
		ordering = []Order{{Field: SortCreatedAt, Desc: true}}
	}
	for _, o := range ordering {
		switch o.Field {
		case SortPriority:
			selector.OrderExpr(entsql.ExprP(priorityRankExpr(t.C("priority")) + direction(o.Desc)))
		case SortCreatedAt:
			selector.OrderBy(orderColumn(t.C("created_at"), o.Desc))
		default:
			return nil, fmt.Errorf("unsupported ordering field %q", o.Field)
		}
	}
	// Stable order for rows sharing the sort keys.
	selector.OrderBy(entsql.Asc(t.C("id")))

	limit := filter.Limit
	if limit <= 0 && filter.Offset > 0 {
		// OFFSET needs a LIMIT on SQLite.
		limit = math.MaxInt32
	}
	if limit > 0 {
		selector.Limit(limit)
	}
	if filter.Offset > 0 {
		selector.Offset(filter.Offset)
	}

	query, args := selector.Query()

	var tasks []*models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	for _, task := range tasks {
		normalize(task)
	}

	return tasks, nil
}

// Update locks the scope owner's task, hands the persisted state to mutate and
// writes the result back with a fresh updated_at, all in one transaction.
func (r *TaskRepository) Update(ctx context.Context, scope OwnerScope, id uuid.UUID, mutate TaskMutator) (*models.Task, error) {
	err := r.db.InTx(ctx, func(tx *sqlx.Tx) error {
		current, err := r.lock(ctx, tx, scope, id)
		if err != nil {
			return err
		}

		if err := mutate(current); err != nil {
			return err
		}

		current.UpdatedAt = r.timestamp()
		if current.UpdatedAt.Before(current.CreatedAt) {
			current.UpdatedAt = current.CreatedAt
		}

		query, args := r.builder().
			Update(tasksTable).
			Set("title", current.Title).
			Set("description", current.Description).
			Set("priority", string(current.Priority)).
			Set("is_completed", current.IsCompleted).
			Set("updated_at", current.UpdatedAt).
			Where(entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", scope.OwnerID))).
			Query()

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update task %s: %w", id, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, scope, id)
}

// Delete locks the scope owner's task, lets check veto the deletion based on the
// persisted state, then removes it.
func (r *TaskRepository) Delete(ctx context.Context, scope OwnerScope, id uuid.UUID, check TaskMutator) error {
	return r.db.InTx(ctx, func(tx *sqlx.Tx) error {
		current, err := r.lock(ctx, tx, scope, id)
		if err != nil {
			return err
		}

		if err := check(current); err != nil {
			return err
		}

		query, args := r.builder().
			Delete(tasksTable).
			Where(entsql.And(entsql.EQ("id", id), entsql.EQ("owner_id", scope.OwnerID))).
			Query()

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete task %s: %w", id, err)
		}

		return nil
	})
}

// CountByState reports how many tasks exist in each mutability state.
func (r *TaskRepository) CountByState(ctx context.Context) (map[models.TaskState]int, error) {
	b := r.builder()
	t := b.Table(tasksTable)
	query, args := b.Select(t.C("is_completed"), entsql.As(entsql.Count("*"), "total")).
		From(t).
		GroupBy(t.C("is_completed")).
		Query()

	var rows []struct {
		IsCompleted bool `db:"is_completed"`
		Total       int  `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	counts := map[models.TaskState]int{
		models.TaskStateOpen:      0,
		models.TaskStateCompleted: 0,
	}
	for _, row := range rows {
		if row.IsCompleted {
			counts[models.TaskStateCompleted] += row.Total
		} else {
			counts[models.TaskStateOpen] += row.Total
		}
	}

	return counts, nil
}

func (r *TaskRepository) lock(ctx context.Context, tx *sqlx.Tx, scope OwnerScope, id uuid.UUID) (*models.Task, error) {
	b := r.builder()
	t := b.Table(tasksTable)
	selector := b.Select(taskColumns(t)...).
		From(t).
		Where(entsql.And(scope.predicate(t), entsql.EQ(t.C("id"), id)))

	// SQLite has no row locks; its single writer already serializes the transaction.
	if r.db.Dialect == dialect.Postgres {
		selector.ForUpdate()
	}

	query, args := selector.Query()

	var task models.Task
	if err := tx.GetContext(ctx, &task, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock task %s: %w", id, err)
	}

	return normalize(&task), nil
}

func (r *TaskRepository) selectWithOwner() (*entsql.Selector, *entsql.SelectTable) {
	b := r.builder()
	t := b.Table(tasksTable)
	u := b.Table(usersTable).As("owner")

	columns := append(taskColumns(t), entsql.As(u.C("username"), "owner_username"))
	selector := b.Select(columns...).
		From(t).
		Join(u).
		On(t.C("owner_id"), u.C("id"))

	return selector, t
}

func taskColumns(t *entsql.SelectTable) []string {
	return []string{
		t.C("id"),
		t.C("title"),
		t.C("description"),
		t.C("priority"),
		t.C("is_completed"),
		t.C("owner_id"),
		t.C("created_at"),
		t.C("updated_at"),
	}
}

// priorityRankExpr maps the priority enum onto its order, lowest first.
func priorityRankExpr(column string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for _, p := range models.Priorities() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, p.Rank())
	}
	b.WriteString(" END")
	return b.String()
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}

func orderColumn(column string, desc bool) string {
	if desc {
		return entsql.Desc(column)
	}
	return entsql.Asc(column)
}

func normalize(t *models.Task) *models.Task {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t
}
