package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/services"
)

type FollowHandler struct {
	followService services.FollowService
}

func NewFollowHandler(followService services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// POST /api/othersprofile/follow
// body: { "target_username": "...", "action": "follow" | "unfollow" }
func (fh *FollowHandler) Follow(c *gin.Context) {
	var req struct {
		TargetUsername string `json:"target_username" binding:"required"`
		Action         string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, profile, err := fh.followService.Follow(requestDBC(c), req.TargetUsername, req.Action)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg, "profile": profile})
}

// GET /api/othersprofile/:username
func (fh *FollowHandler) PublicProfile(c *gin.Context) {
	profile, err := fh.followService.PublicProfile(requestDBC(c), c.Param("username"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, profile)
}

// GET /api/othersprofile/:username/followers
func (fh *FollowHandler) Followers(c *gin.Context) {
	users, err := fh.followService.Followers(requestDBC(c), c.Param("username"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"followers": users})
}

// GET /api/othersprofile/:username/following
func (fh *FollowHandler) Following(c *gin.Context) {
	users, err := fh.followService.Following(requestDBC(c), c.Param("username"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"following": users})
}
