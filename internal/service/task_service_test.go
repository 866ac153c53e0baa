package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/tasktracker/internal/models"
	"github.com/gurkanbulca/tasktracker/internal/policy"
	"github.com/gurkanbulca/tasktracker/internal/repository"
)

func TestTaskService_CreateTask(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser("alice")
	ctx := context.Background()

	tests := []struct {
		name       string
		input      TaskInput
		wantFields map[string][]string
		check      func(t *testing.T, task *models.Task)
	}{
		{
			name:  "defaults",
			input: TaskInput{Title: Value("Write report"), Description: Value("quarterly numbers")},
			check: func(t *testing.T, task *models.Task) {
				assert.Equal(t, "Write report", task.Title)
				assert.Equal(t, "quarterly numbers", task.Description)
				assert.Equal(t, models.PriorityMedium, task.Priority)
				assert.False(t, task.IsCompleted)
				assert.Equal(t, owner.ID, task.OwnerID)
				assert.Equal(t, "alice", task.OwnerUsername)
				assert.Equal(t, task.CreatedAt, task.UpdatedAt)
			},
		},
		{
			name: "explicit priority and trimmed text",
			input: TaskInput{
				Title:       Value("  Ship  "),
				Description: Value(" now "),
				Priority:    Value("critical"),
				IsCompleted: Value(true),
			},
			check: func(t *testing.T, task *models.Task) {
				assert.Equal(t, "Ship", task.Title)
				assert.Equal(t, "now", task.Description)
				assert.Equal(t, models.PriorityCritical, task.Priority)
				assert.True(t, task.IsCompleted)
			},
		},
		{
			name:  "title of exactly max length",
			input: TaskInput{Title: Value(strings.Repeat("é", models.MaxTitleLength)), Description: Value("d")},
			check: func(t *testing.T, task *models.Task) {
				assert.Equal(t, models.MaxTitleLength, len([]rune(task.Title)))
			},
		},
		{
			name:  "missing fields",
			input: TaskInput{},
			wantFields: map[string][]string{
				"title":       {MsgRequired},
				"description": {MsgRequired},
			},
		},
		{
			name:  "blank fields",
			input: TaskInput{Title: Value("   "), Description: Value("")},
			wantFields: map[string][]string{
				"title":       {MsgBlank},
				"description": {MsgBlank},
			},
		},
		{
			name:  "title too long",
			input: TaskInput{Title: Value(strings.Repeat("a", models.MaxTitleLength+1)), Description: Value("d")},
			wantFields: map[string][]string{
				"title": {"Ensure this field has no more than 100 characters."},
			},
		},
		{
			name:  "unknown priority",
			input: TaskInput{Title: Value("t"), Description: Value("d"), Priority: Value("urgent")},
			wantFields: map[string][]string{
				"priority": {`"urgent" is not a valid choice.`},
			},
		},
		{
			name: "null values",
			input: TaskInput{
				Title:       Value("t"),
				Description: Field[string]{Set: true, Null: true},
				IsCompleted: Field[bool]{Set: true, Null: true},
			},
			wantFields: map[string][]string{
				"description":  {MsgNull},
				"is_completed": {MsgNull},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := env.tasks.CreateTask(ctx, owner, tt.input)
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, fieldErrors(t, err))
				assert.Nil(t, task)
				return
			}
			require.NoError(t, err)
			tt.check(t, task)
		})
	}
}

func TestTaskService_CreateTaskIgnoresForeignFields(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser("alice")
	bob := env.createUser("bob")

	body := `{"title":"t","description":"d","owner":"` + bob.ID.String() + `","user":"bob","id":"` + uuid.NewString() + `","created_at":"2000-01-01T00:00:00Z"}`
	var in TaskInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))

	task, err := env.tasks.CreateTask(context.Background(), alice, in)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, task.OwnerID)
	assert.NotEqual(t, 2000, task.CreatedAt.Year())
}

func TestTaskService_RequiresActiveIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	inactive := env.createUser("carol")
	inactive.IsActive = false

	_, err := env.tasks.CreateTask(ctx, nil, TaskInput{Title: Value("t"), Description: Value("d")})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.tasks.ListTasks(ctx, inactive, ListOptions{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTaskService_OwnerScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser("alice")
	bob := env.createUser("bob")
	task := env.createTask(alice, "private")

	_, err := env.tasks.GetTask(ctx, bob, task.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.tasks.UpdateTask(ctx, bob, task.ID.String(), TaskInput{Title: Value("stolen")}, true)
	assert.ErrorIs(t, err, ErrNotFound)

	err = env.tasks.DeleteTask(ctx, bob, task.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.tasks.GetTask(ctx, alice, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	listed, err := env.tasks.ListTasks(ctx, bob, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, listed)

	got, err := env.tasks.GetTask(ctx, alice, task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "private", got.Title)
}

func TestTaskService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser("alice")

	created := env.createTask(owner, "lifecycle")
	id := created.ID.String()

	updated, err := env.tasks.UpdateTask(ctx, owner, id, TaskInput{Priority: Value("high")}, true)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	completed, err := env.tasks.UpdateTask(ctx, owner, id, TaskInput{IsCompleted: Value(true)}, true)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted)

	_, err = env.tasks.UpdateTask(ctx, owner, id, TaskInput{Title: Value("again")}, true)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, err, policy.ErrTaskCompleted)

	_, err = env.tasks.UpdateTask(ctx, owner, id, TaskInput{IsCompleted: Value(false)}, true)
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.tasks.DeleteTask(ctx, owner, id)
	assert.ErrorIs(t, err, ErrForbidden)

	after, err := env.tasks.GetTask(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, completed, after)
}

func TestTaskService_UpdatePrecedence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser("alice")
	other := env.createUser("bob")

	completed, err := env.tasks.CreateTask(ctx, owner, TaskInput{
		Title:       Value("done"),
		Description: Value("d"),
		IsCompleted: Value(true),
	})
	require.NoError(t, err)
	open := env.createTask(owner, "open")

	invalid := TaskInput{Title: Value("")}

	_, err = env.tasks.UpdateTask(ctx, other, completed.ID.String(), invalid, true)
	assert.ErrorIs(t, err, ErrNotFound, "scope is checked first")

	_, err = env.tasks.UpdateTask(ctx, owner, completed.ID.String(), invalid, true)
	assert.ErrorIs(t, err, ErrForbidden, "guard runs before validation")

	_, err = env.tasks.UpdateTask(ctx, owner, open.ID.String(), invalid, true)
	assert.Equal(t, map[string][]string{"title": {MsgBlank}}, fieldErrors(t, err))

	unchanged, err := env.tasks.GetTask(ctx, owner, open.ID.String())
	require.NoError(t, err)
	assert.Equal(t, open, unchanged)
}

func TestTaskService_FullUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser("alice")
	task := env.createTask(owner, "original")

	_, err := env.tasks.UpdateTask(ctx, owner, task.ID.String(), TaskInput{Title: Value("only title")}, false)
	assert.Equal(t, map[string][]string{"description": {MsgRequired}}, fieldErrors(t, err))

	updated, err := env.tasks.UpdateTask(ctx, owner, task.ID.String(), TaskInput{
		Title:       Value("new title"),
		Description: Value("new description"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "new description", updated.Description)
	assert.Equal(t, task.Priority, updated.Priority)
}

func TestTaskService_ListTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser("alice")

	for _, tc := range []struct{ title, priority string }{
		{"alpha", "low"},
		{"beta", "critical"},
		{"gamma", "high"},
	} {
		_, err := env.tasks.CreateTask(ctx, owner, TaskInput{
			Title:       Value(tc.title),
			Description: Value("about " + tc.title),
			Priority:    Value(tc.priority),
		})
		require.NoError(t, err)
	}

	titles := func(tasks []*models.Task) []string {
		out := make([]string, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.Title)
		}
		return out
	}

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{name: "default newest first", opts: ListOptions{}, want: []string{"gamma", "beta", "alpha"}},
		{name: "priority descending", opts: ListOptions{Ordering: "-priority"}, want: []string{"beta", "gamma", "alpha"}},
		{name: "created ascending", opts: ListOptions{Ordering: "created_at"}, want: []string{"alpha", "beta", "gamma"}},
		{name: "unknown ordering falls back", opts: ListOptions{Ordering: "title"}, want: []string{"gamma", "beta", "alpha"}},
		{name: "search is case insensitive", opts: ListOptions{Search: "BET"}, want: []string{"beta"}},
		{name: "search matches description", opts: ListOptions{Search: "about g"}, want: []string{"gamma"}},
		{name: "limit and offset", opts: ListOptions{Ordering: "created_at", Limit: 1, Offset: 1}, want: []string{"beta"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := env.tasks.ListTasks(ctx, owner, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(tasks))
		})
	}
}

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		raw  string
		want []repository.Order
	}{
		{raw: "", want: nil},
		{raw: "priority", want: []repository.Order{{Field: "priority"}}},
		{raw: "-priority, created_at", want: []repository.Order{{Field: "priority", Desc: true}, {Field: "created_at"}}},
		{raw: "title,-created_at,-", want: []repository.Order{{Field: "created_at", Desc: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOrdering(tt.raw))
		})
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(ErrNotFound))
	assert.Equal(t, "forbidden", Outcome(&ForbiddenError{Reason: policy.ErrTaskCompleted}))
	assert.Equal(t, "invalid", Outcome(&ValidationError{Fields: map[string][]string{"title": {MsgRequired}}}))
	assert.Equal(t, "unauthorized", Outcome(ErrUnauthenticated))
	assert.Equal(t, "error", Outcome(assert.AnError))
}
