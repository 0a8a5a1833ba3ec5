package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eduverse-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GET /api/accounts
func (ah *AuthHandler) Index(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"register":      "/api/accounts/register",
		"login":         "/api/accounts/login",
		"logout":        "/api/accounts/logout",
		"token_refresh": "/api/accounts/token/refresh",
		"protected":     "/api/accounts/protected",
		"me":            "/api/me",
	})
}

// POST /api/accounts/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": user})
}

// POST /api/accounts/login
// body: { "identifier" | "username" | "email": "...", "password": "..." }
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier"`
		Username   string `json:"username"`
		Email      string `json:"email"`
		Password   string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	identifier := firstNonEmpty(req.Identifier, req.Username, req.Email)
	if identifier == "" || req.Password == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("identifier and password are required"))
		return
	}
	res, err := ah.authService.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/accounts/token/refresh
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("refresh_token is required"))
		return
	}
	res, err := ah.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/accounts/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Logged out"})
}

// GET /api/accounts/protected
func (ah *AuthHandler) Protected(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"message": "You have access to this protected endpoint",
		"user_id": ctxutil.UserID(c.Request.Context()),
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
