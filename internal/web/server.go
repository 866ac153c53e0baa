package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gurkanbulca/tasktracker/internal/middleware"
	"github.com/gurkanbulca/tasktracker/internal/service"
)

// Server is the task tracker HTTP API
type Server struct {
	tasks       *service.TaskService
	auth        *service.AuthService
	sessions    *middleware.SessionAuthenticator
	router      *gin.Engine
	healthCheck func(ctx context.Context) error
}

type ServerOption func(*serverOptions)

type serverOptions struct {
	authRateLimit  gin.HandlerFunc
	healthCheck    func(ctx context.Context) error
	trustedProxies []string
}

// WithAuthRateLimit throttles the unauthenticated credential endpoints.
func WithAuthRateLimit(limiter gin.HandlerFunc) ServerOption {
	return func(o *serverOptions) {
		o.authRateLimit = limiter
	}
}

// WithHealthCheck makes /healthz report failures of check as 503.
func WithHealthCheck(check func(ctx context.Context) error) ServerOption {
	return func(o *serverOptions) {
		o.healthCheck = check
	}
}

// WithTrustedProxies sets the proxies whose forwarding headers gin believes.
func WithTrustedProxies(proxies ...string) ServerOption {
	return func(o *serverOptions) {
		o.trustedProxies = proxies
	}
}

// NewServer creates a new web server
func NewServer(
	tasks *service.TaskService,
	authService *service.AuthService,
	bearer *middleware.BearerAuthenticator,
	sessions *middleware.SessionAuthenticator,
	funcs ...ServerOption,
) (*Server, error) {
	opts := &serverOptions{}
	for _, fn := range funcs {
		fn(opts)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.ClientMetadata())
	if err := router.SetTrustedProxies(opts.trustedProxies); err != nil {
		return nil, err
	}

	s := &Server{
		tasks:       tasks,
		auth:        authService,
		sessions:    sessions,
		router:      router,
		healthCheck: opts.healthCheck,
	}

	router.GET("/healthz", s.handleHealthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	credentials := router.Group("/auth")
	if opts.authRateLimit != nil {
		credentials.Use(opts.authRateLimit)
	}
	{
		credentials.POST("/register", s.handleRegister)
		credentials.POST("/login", s.handleLogin)
		credentials.POST("/refresh", s.handleRefresh)
		credentials.POST("/session/login", s.handleSessionLogin)
	}

	authenticated := router.Group("/", middleware.Authenticate(handleUnauthorized, bearer, sessions))
	{
		authenticated.POST("/auth/logout", s.handleLogout)
		authenticated.POST("/auth/session/logout", s.handleSessionLogout)
		authenticated.GET("/auth/me", s.handleMe)

		authenticated.GET("/tasks", s.handleListTasks)
		authenticated.POST("/tasks", s.handleCreateTask)
		authenticated.GET("/tasks/:id", s.handleGetTask)
		authenticated.PUT("/tasks/:id", s.handleUpdateTask(false))
		authenticated.PATCH("/tasks/:id", s.handleUpdateTask(true))
		authenticated.DELETE("/tasks/:id", s.handleDeleteTask)
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(c *gin.Context) {
	if s.healthCheck != nil {
		if err := s.healthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
