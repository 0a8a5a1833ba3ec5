package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
)

func requestDBC(c *gin.Context) dbctx.Context {
	return dbctx.New(c.Request.Context())
}

// uuidParam parses the named path param, writing a 400 on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// optionalPostFilter reads ?post=<id>. An absent param yields nil.
func optionalPostFilter(c *gin.Context) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query("post"))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_post_id", err)
		return nil, false
	}
	return &id, true
}

func intQuery(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
