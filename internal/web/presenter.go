package web

import (
	"time"

	"github.com/gurkanbulca/tasktracker/internal/models"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

type taskResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	IsCompleted bool    `json:"is_completed"`
	Owner       *string `json:"owner,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// presentTask renders a task for viewer. Only superusers see who owns it.
func presentTask(task *models.Task, viewer *models.User) taskResponse {
	resp := taskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		IsCompleted: task.IsCompleted,
		CreatedAt:   formatTimestamp(task.CreatedAt),
		UpdatedAt:   formatTimestamp(task.UpdatedAt),
	}

	if viewer != nil && viewer.IsSuperuser {
		owner := task.OwnerUsername
		resp.Owner = &owner
	}

	return resp
}

func presentTasks(tasks []*models.Task, viewer *models.User) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, presentTask(task, viewer))
	}
	return out
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func presentUser(user *models.User) userResponse {
	return userResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	}
}

type profileResponse struct {
	userResponse
	IsSuperuser bool   `json:"is_superuser"`
	DateJoined  string `json:"date_joined"`
}

func presentProfile(user *models.User) profileResponse {
	return profileResponse{
		userResponse: presentUser(user),
		IsSuperuser:  user.IsSuperuser,
		DateJoined:   formatTimestamp(user.DateJoined),
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
