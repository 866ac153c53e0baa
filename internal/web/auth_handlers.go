package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bornholm/go-x/slogx"
	"github.com/gin-gonic/gin"

	"github.com/gurkanbulca/tasktracker/internal/service"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type logoutRequest struct {
	Refresh string `json:"refresh"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := s.auth.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, presentUser(user))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  tokens.AccessToken,
		"refresh": tokens.RefreshToken,
	})
}

func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	access, _, err := s.auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (s *Server) handleLogout(c *gin.Context) {
	var req logoutRequest
	// A body that does not decode carries no usable token either.
	_ = c.ShouldBindJSON(&req)

	err := s.auth.Logout(c.Request.Context(), currentUser(c), req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid token"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusResetContent, gin.H{"message": "Logout successful"})
}

func (s *Server) handleSessionLogin(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	user, err := s.auth.StartSession(ctx, req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := s.sessions.StoreSessionUser(c, user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, presentUser(user))
}

func (s *Server) handleSessionLogout(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.sessions.ClearSession(c); err != nil {
		slog.ErrorContext(ctx, "could not clear session", slogx.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": detailServerError})
		return
	}

	s.auth.EndSession(ctx, currentUser(c))

	c.Status(http.StatusNoContent)
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.auth.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, presentProfile(user))
}
