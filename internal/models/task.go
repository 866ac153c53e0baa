package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority is the ordered importance of a task.
type Priority string

// Priority constants
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// DefaultPriority is assigned when a task is created without one.
const DefaultPriority = PriorityMedium

// Priorities returns every priority, lowest first.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// Rank returns the position of p in the priority order, or 0 for an unknown value.
func (p Priority) Rank() int {
	for i, candidate := range Priorities() {
		if candidate == p {
			return i + 1
		}
	}
	return 0
}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// TaskState is the mutability state of a task.
type TaskState string

const (
	TaskStateOpen      TaskState = "open"
	TaskStateCompleted TaskState = "completed"
)

const MaxTitleLength = 100

type Task struct {
	ID          uuid.UUID `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Priority    Priority  `db:"priority"`
	IsCompleted bool      `db:"is_completed"`
	OwnerID     uuid.UUID `db:"owner_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	// OwnerUsername is filled by queries joining the users table.
	OwnerUsername string `db:"owner_username"`
}

// State reports whether the task is still open for edits.
func (t *Task) State() TaskState {
	if t.IsCompleted {
		return TaskStateCompleted
	}
	return TaskStateOpen
}
