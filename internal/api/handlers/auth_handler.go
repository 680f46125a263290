package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirevox/hirevox/internal/api/middleware"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/utils"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type AuthRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Register", "invalid request body", err))
		return
	}

	rec, err := h.svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := middleware.IssueRecruiterToken(rec.ID, string(rec.Role))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "AuthHandler.Register", "failed to issue token", err))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, ID: rec.ID, Email: rec.Email, Role: string(rec.Role)})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.Login", "invalid request body", err))
		return
	}

	rec, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := middleware.IssueRecruiterToken(rec.ID, string(rec.Role))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "AuthHandler.Login", "failed to issue token", err))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, ID: rec.ID, Email: rec.Email, Role: string(rec.Role)})
}
