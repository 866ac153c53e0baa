package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/tasktracker/internal/middleware"
	"github.com/gurkanbulca/tasktracker/internal/models"
	"github.com/gurkanbulca/tasktracker/internal/service"
)

func currentUser(c *gin.Context) *models.User {
	user, _ := middleware.GetUserFromContext(c.Request.Context())
	return user
}

func (s *Server) handleListTasks(c *gin.Context) {
	user := currentUser(c)

	tasks, err := s.tasks.ListTasks(c.Request.Context(), user, service.ListOptions{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Limit:    queryInt(c, "limit"),
		Offset:   queryInt(c, "offset"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, presentTasks(tasks, user))
}

func (s *Server) handleCreateTask(c *gin.Context) {
	user := currentUser(c)

	var in service.TaskInput
	if !bindJSON(c, &in) {
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), user, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, presentTask(task, user))
}

func (s *Server) handleGetTask(c *gin.Context) {
	user := currentUser(c)

	task, err := s.tasks.GetTask(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, presentTask(task, user))
}

func (s *Server) handleUpdateTask(partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var in service.TaskInput
		if !bindJSON(c, &in) {
			return
		}

		task, err := s.tasks.UpdateTask(c.Request.Context(), user, c.Param("id"), in, partial)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, presentTask(task, user))
	}
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.DeleteTask(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// queryInt reads a non-negative integer parameter. Missing or invalid values read as zero.
func queryInt(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
