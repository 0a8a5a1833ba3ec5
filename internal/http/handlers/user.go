package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/platform/gcp"
	"github.com/yungbote/eduverse-backend/internal/services"
)

const maxAvatarBytes = 10 << 20

type UserHandler struct {
	userService services.UserService
	bucket      gcp.BucketService
}

func NewUserHandler(userService services.UserService, bucket gcp.BucketService) *UserHandler {
	return &UserHandler{
		userService: userService,
		bucket:      bucket,
	}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	normalizeUserAvatarURL(uh.bucket, me.User)
	response.RespondOK(c, me)
}

// GET /api/profiles/welcome
func (uh *UserHandler) Welcome(c *gin.Context) {
	msg, err := uh.userService.Welcome(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": msg})
}

// POST /api/profiles/avatar (multipart/form-data)
// field: "avatar"
func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "open_file_failed", err)
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "read_file_failed", err)
		return
	}
	if len(raw) > maxAvatarBytes {
		response.RespondError(c, http.StatusBadRequest, "file_too_large", errors.New("avatar exceeds 10MB"))
		return
	}

	u, err := uh.userService.UploadAvatarImage(requestDBC(c), raw)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	normalizeUserAvatarURL(uh.bucket, u)
	response.RespondOK(c, gin.H{"avatar_url": u.AvatarURL, "avatar_color": u.AvatarColor})
}
