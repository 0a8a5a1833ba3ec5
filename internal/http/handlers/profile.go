package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/services"
)

const maxJSONBody = 1 << 20

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GET /api/profiles
func (ph *ProfileHandler) GetMyProfile(c *gin.Context) {
	view, err := ph.profileService.GetMyProfile(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// PATCH|PUT /api/profiles
func (ph *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	view, err := ph.profileService.UpdateMyProfile(requestDBC(c), body)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/profiles/records/:kind
func (ph *ProfileHandler) ListRecords(c *gin.Context) {
	kind, ok := recordKind(c)
	if !ok {
		return
	}
	rows, err := ph.profileService.ListRecords(requestDBC(c), kind)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{string(kind): rows})
}

// PUT /api/profiles/records/:kind
// body: a JSON array replacing the whole list
func (ph *ProfileHandler) ReplaceRecords(c *gin.Context) {
	kind, ok := recordKind(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	rows, err := ph.profileService.ReplaceRecords(requestDBC(c), kind, body)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{string(kind): rows})
}

func recordKind(c *gin.Context) (services.RecordKind, bool) {
	kind, ok := services.ParseRecordKind(c.Param("kind"))
	if !ok {
		response.RespondError(c, http.StatusNotFound, "unknown_record_kind", fmt.Errorf("unknown record list %q", c.Param("kind")))
		return "", false
	}
	return kind, true
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxJSONBody+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return nil, false
	}
	if len(body) > maxJSONBody {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "body_too_large", fmt.Errorf("request body exceeds %d bytes", maxJSONBody))
		return nil, false
	}
	return body, true
}
