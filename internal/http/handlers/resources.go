package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/services"
)

type ResourceHandler struct {
	resources services.ResourceService
}

func NewResourceHandler(resources services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// GET /api/scraper/educational?q=
func (rh *ResourceHandler) Educational(c *gin.Context) {
	response.RespondOK(c, rh.resources.Educational(c.Query("q")))
}

// GET /api/scraper/jobs?q=
func (rh *ResourceHandler) Jobs(c *gin.Context) {
	response.RespondOK(c, rh.resources.Jobs(c.Query("q")))
}

// GET /api/scraper/skills?q=
func (rh *ResourceHandler) Skills(c *gin.Context) {
	response.RespondOK(c, rh.resources.Skills(c.Query("q")))
}
