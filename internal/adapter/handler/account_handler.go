package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/srgjo27/driveezzy/internal/core/services"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type AccountHandler struct {
	svc      *services.AccountService
	sessions *SessionGate
	logger   *zap.Logger
}

func NewAccountHandler(svc *services.AccountService, sessions *SessionGate, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, sessions: sessions, logger: logger}
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.sessions.Issue(c, resp.UserID, resp.Name); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AccountHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
