package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/services"
)

type InteractionHandler struct {
	interactions services.InteractionService
}

func NewInteractionHandler(interactions services.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

type postRef struct {
	Post uuid.UUID `json:"post" binding:"required"`
}

func bindPostRef(c *gin.Context) (uuid.UUID, bool) {
	var req postRef
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return uuid.Nil, false
	}
	return req.Post, true
}

func respondList[T any](c *gin.Context, key string, rows []T, err error) {
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{key: rows})
}

func respondCreated[T any](c *gin.Context, row T, err error) {
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

func respondFound[T any](c *gin.Context, row T, err error) {
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, row)
}

func respondDeleted(c *gin.Context, err error) {
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Comments

func (ih *InteractionHandler) ListComments(c *gin.Context) {
	postID, ok := optionalPostFilter(c)
	if !ok {
		return
	}
	rows, err := ih.interactions.ListComments(requestDBC(c), postID)
	respondList(c, "comments", rows, err)
}

// POST /api/posts/comments
// body: { "post": "<id>", "content": "..." }
func (ih *InteractionHandler) CreateComment(c *gin.Context) {
	var req struct {
		Post    uuid.UUID `json:"post" binding:"required"`
		Content string    `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := ih.interactions.CreateComment(requestDBC(c), req.Post, req.Content)
	respondCreated(c, row, err)
}

func (ih *InteractionHandler) GetComment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	row, err := ih.interactions.GetComment(requestDBC(c), id)
	respondFound(c, row, err)
}

func (ih *InteractionHandler) UpdateComment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := ih.interactions.UpdateComment(requestDBC(c), id, req.Content)
	respondFound(c, row, err)
}

func (ih *InteractionHandler) DeleteComment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	respondDeleted(c, ih.interactions.DeleteComment(requestDBC(c), id))
}

// Likes

func (ih *InteractionHandler) ListLikes(c *gin.Context) {
	postID, ok := optionalPostFilter(c)
	if !ok {
		return
	}
	rows, err := ih.interactions.ListLikes(requestDBC(c), postID)
	respondList(c, "likes", rows, err)
}

func (ih *InteractionHandler) CreateLike(c *gin.Context) {
	postID, ok := bindPostRef(c)
	if !ok {
		return
	}
	row, err := ih.interactions.CreateLike(requestDBC(c), postID)
	respondCreated(c, row, err)
}

func (ih *InteractionHandler) DeleteLike(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	respondDeleted(c, ih.interactions.DeleteLike(requestDBC(c), id))
}

// Saves

func (ih *InteractionHandler) ListSaves(c *gin.Context) {
	postID, ok := optionalPostFilter(c)
	if !ok {
		return
	}
	rows, err := ih.interactions.ListSaves(requestDBC(c), postID)
	respondList(c, "saves", rows, err)
}

func (ih *InteractionHandler) CreateSave(c *gin.Context) {
	postID, ok := bindPostRef(c)
	if !ok {
		return
	}
	row, err := ih.interactions.CreateSave(requestDBC(c), postID)
	respondCreated(c, row, err)
}

func (ih *InteractionHandler) DeleteSave(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	respondDeleted(c, ih.interactions.DeleteSave(requestDBC(c), id))
}

// Favorites

func (ih *InteractionHandler) ListFavorites(c *gin.Context) {
	postID, ok := optionalPostFilter(c)
	if !ok {
		return
	}
	rows, err := ih.interactions.ListFavorites(requestDBC(c), postID)
	respondList(c, "favorites", rows, err)
}

func (ih *InteractionHandler) CreateFavorite(c *gin.Context) {
	postID, ok := bindPostRef(c)
	if !ok {
		return
	}
	row, err := ih.interactions.CreateFavorite(requestDBC(c), postID)
	respondCreated(c, row, err)
}

func (ih *InteractionHandler) DeleteFavorite(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	respondDeleted(c, ih.interactions.DeleteFavorite(requestDBC(c), id))
}

// Shares

func (ih *InteractionHandler) ListShares(c *gin.Context) {
	postID, ok := optionalPostFilter(c)
	if !ok {
		return
	}
	rows, err := ih.interactions.ListShares(requestDBC(c), postID)
	respondList(c, "shares", rows, err)
}

// POST /api/posts/share
// body: { "post": "<id>", "shared_with": "<user id>"? }
func (ih *InteractionHandler) CreateShare(c *gin.Context) {
	var req struct {
		Post       uuid.UUID  `json:"post" binding:"required"`
		SharedWith *uuid.UUID `json:"shared_with"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := ih.interactions.CreateShare(requestDBC(c), req.Post, req.SharedWith)
	respondCreated(c, row, err)
}

func (ih *InteractionHandler) GetShare(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	row, err := ih.interactions.GetShare(requestDBC(c), id)
	respondFound(c, row, err)
}

func (ih *InteractionHandler) DeleteShare(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	respondDeleted(c, ih.interactions.DeleteShare(requestDBC(c), id))
}

// Reports

func (ih *InteractionHandler) ListReports(c *gin.Context) {
	postID, ok := optionalPostFilter(c)
	if !ok {
		return
	}
	rows, err := ih.interactions.ListReports(requestDBC(c), postID)
	respondList(c, "reports", rows, err)
}

// POST /api/posts/report
// body: { "post": "<id>", "reason": "..." }
func (ih *InteractionHandler) CreateReport(c *gin.Context) {
	var req struct {
		Post   uuid.UUID `json:"post" binding:"required"`
		Reason string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := ih.interactions.CreateReport(requestDBC(c), req.Post, req.Reason)
	respondCreated(c, row, err)
}

func (ih *InteractionHandler) GetReport(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	row, err := ih.interactions.GetReport(requestDBC(c), id)
	respondFound(c, row, err)
}

func (ih *InteractionHandler) DeleteReport(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	respondDeleted(c, ih.interactions.DeleteReport(requestDBC(c), id))
}
