// Package policy holds the guards evaluated against a persisted task before an
// operation is allowed to touch it.
package policy

import (
	"errors"

	"github.com/gurkanbulca/tasktracker/internal/models"
)

// ErrTaskCompleted is returned when a write or delete reaches a completed task.
var ErrTaskCompleted = errors.New("cannot edit or delete a completed task")

// Operation identifies what a request wants to do with a task.
type Operation string

const (
	OpList     Operation = "list"
	OpRetrieve Operation = "retrieve"
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
)

// Safe reports whether the operation only reads.
func (op Operation) Safe() bool {
	return op == OpList || op == OpRetrieve
}

// Guard decides whether op may proceed against the persisted task.
type Guard func(op Operation, current *models.Task) error

// Mutability blocks every unsafe operation on a completed task. It looks only at
// the stored state, never at the incoming payload, so a completed task cannot be
// reopened either.
func Mutability(op Operation, current *models.Task) error {
	if op.Safe() {
		return nil
	}
	if current.State() == models.TaskStateCompleted {
		return ErrTaskCompleted
	}
	return nil
}
