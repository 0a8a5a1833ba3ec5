package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/platform/gcp"
	"github.com/yungbote/eduverse-backend/internal/services"
)

type SearchHandler struct {
	searchService services.SearchService
	bucket        gcp.BucketService
}

func NewSearchHandler(searchService services.SearchService, bucket gcp.BucketService) *SearchHandler {
	return &SearchHandler{searchService: searchService, bucket: bucket}
}

// GET /api/search?query=&name=&skills=&post_author=&post_type=
func (sh *SearchHandler) Search(c *gin.Context) {
	res, err := sh.searchService.Search(requestDBC(c), services.SearchQuery{
		Query:      c.Query("query"),
		Name:       c.Query("name"),
		Skills:     c.Query("skills"),
		PostAuthor: c.Query("post_author"),
		PostType:   c.Query("post_type"),
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if res.Posts != nil {
		normalizePostViews(sh.bucket, *res.Posts)
	}
	response.RespondOK(c, res)
}
