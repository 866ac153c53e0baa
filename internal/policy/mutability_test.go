package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gurkanbulca/tasktracker/internal/models"
)

func TestMutability(t *testing.T) {
	open := &models.Task{IsCompleted: false}
	completed := &models.Task{IsCompleted: true}

	tests := []struct {
		name    string
		op      Operation
		task    *models.Task
		wantErr error
	}{
		{name: "retrieve open", op: OpRetrieve, task: open},
		{name: "retrieve completed", op: OpRetrieve, task: completed},
		{name: "list completed", op: OpList, task: completed},
		{name: "update open", op: OpUpdate, task: open},
		{name: "delete open", op: OpDelete, task: open},
		{name: "update completed", op: OpUpdate, task: completed, wantErr: ErrTaskCompleted},
		{name: "delete completed", op: OpDelete, task: completed, wantErr: ErrTaskCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Mutability(tt.op, tt.task)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestMutability_Message(t *testing.T) {
	err := Mutability(OpUpdate, &models.Task{IsCompleted: true})
	assert.EqualError(t, err, "cannot edit or delete a completed task")
}
