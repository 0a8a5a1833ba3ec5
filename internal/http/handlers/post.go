package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/http/response"
	"github.com/yungbote/eduverse-backend/internal/platform/gcp"
	"github.com/yungbote/eduverse-backend/internal/services"
)

const (
	maxPostImageBytes = 10 << 20
	maxMultipartMem   = 32 << 20
)

type PostHandler struct {
	postService services.PostService
	bucket      gcp.BucketService
}

func NewPostHandler(postService services.PostService, bucket gcp.BucketService) *PostHandler {
	return &PostHandler{postService: postService, bucket: bucket}
}

// GET /api/posts?author=&post_type=&page=&page_size=
func (ph *PostHandler) ListPosts(c *gin.Context) {
	page, err := ph.postService.ListPosts(requestDBC(c), services.PostListQuery{
		Author:   c.Query("author"),
		PostType: c.Query("post_type"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", services.DefaultPostPageSize),
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	normalizePostViews(ph.bucket, page.Results)
	response.RespondOK(c, page)
}

// POST /api/posts
// Accepts JSON, or multipart/form-data with images in "images[]" (or "images").
func (ph *PostHandler) CreatePost(c *gin.Context) {
	var in services.CreatePostInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.Request.ParseMultipartForm(maxMultipartMem); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		in.Title = c.PostForm("title")
		in.Content = c.PostForm("content")
		in.PostType = c.PostForm("post_type")
		in.Visibility = c.PostForm("visibility")
		images, err := readPostImages(c.Request.MultipartForm)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_image", err)
			return
		}
		in.Images = images
	} else if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	view, err := ph.postService.CreatePost(requestDBC(c), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	normalizePostImageURLs(ph.bucket, view.Post)
	response.RespondCreated(c, view)
}

// GET /api/posts/:id
func (ph *PostHandler) GetPost(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := ph.postService.GetPost(requestDBC(c), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	normalizePostImageURLs(ph.bucket, view.Post)
	response.RespondOK(c, view)
}

// PATCH|PUT /api/posts/:id
func (ph *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var in services.UpdatePostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := ph.postService.UpdatePost(requestDBC(c), id, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	normalizePostImageURLs(ph.bucket, view.Post)
	response.RespondOK(c, view)
}

// DELETE /api/posts/:id
func (ph *PostHandler) DeletePost(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := ph.postService.DeletePost(requestDBC(c), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func readPostImages(form *multipart.Form) ([]services.UploadedImage, error) {
	if form == nil {
		return nil, nil
	}
	files := append(form.File["images[]"], form.File["images"]...)
	out := make([]services.UploadedImage, 0, len(files))
	for _, fh := range files {
		img, err := readUploadedImage(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

func readUploadedImage(fh *multipart.FileHeader) (services.UploadedImage, error) {
	f, err := fh.Open()
	if err != nil {
		return services.UploadedImage{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxPostImageBytes+1))
	if err != nil {
		return services.UploadedImage{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	if len(raw) > maxPostImageBytes {
		return services.UploadedImage{}, fmt.Errorf("%s exceeds 10MB", fh.Filename)
	}
	return services.UploadedImage{Filename: fh.Filename, Data: raw}, nil
}
