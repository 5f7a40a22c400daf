package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/sitecraft/internal/api/middleware"
	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
)

// RegisterRequest creates an account
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest exchanges credentials for a session token
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login
type SessionResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      auth.Principal `json:"user"`
}

// Register creates an account and logs it in
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if _, err := h.auth.Register(req.Name, req.Email, req.Password); err != nil {
		h.respondError(c, err)
		return
	}

	session, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(session, user))
}

// Login verifies credentials and issues a token
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, user, err := h.auth.Login(req.Email, req.Password)
	if h.metrics != nil {
		h.metrics.RecordLogin(err == nil)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session, user))
}

// Logout ends the caller's session
func (h *Handlers) Logout(c *gin.Context, _ auth.Principal) {
	if token, ok := middleware.BearerToken(c.GetHeader("Authorization")); ok {
		h.auth.Logout(token)
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller
func (h *Handlers) Me(c *gin.Context, p auth.Principal) {
	c.JSON(http.StatusOK, p)
}

func sessionResponse(s *auth.Session, u *auth.User) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      auth.Principal{UserID: u.ID, Name: u.Name, Email: u.Email},
	}
}
