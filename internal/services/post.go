package services

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/repos"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	domainposts "github.com/yungbote/eduverse-backend/internal/domain/posts"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
	"github.com/yungbote/eduverse-backend/internal/platform/gcp"
)

const (
	DefaultPostPageSize = 20
	MaxPostPageSize     = 100
	maxPostImages       = 10
)

// UploadedImage is one file from a multipart post.
type UploadedImage struct {
	Filename string
	Data     []byte
}

type CreatePostInput struct {
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	PostType   string          `json:"post_type"`
	Visibility string          `json:"visibility"`
	Images     []UploadedImage `json:"-"`
}

// UpdatePostInput holds the fields present in a PATCH/PUT body.
type UpdatePostInput struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	PostType   *string `json:"post_type"`
	Visibility *string `json:"visibility"`
	IsPinned   *bool   `json:"is_pinned"`
}

type PostListQuery struct {
	Author   string
	PostType string
	Page     int
	PageSize int
}

type PostPage struct {
	Count    int64      `json:"count"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Results  []PostView `json:"results"`
}

type PostService interface {
	CreatePost(dbc dbctx.Context, in CreatePostInput) (*PostView, error)
	ListPosts(dbc dbctx.Context, q PostListQuery) (*PostPage, error)
	GetPost(dbc dbctx.Context, postID uuid.UUID) (*PostView, error)
	UpdatePost(dbc dbctx.Context, postID uuid.UUID, in UpdatePostInput) (*PostView, error)
	DeletePost(dbc dbctx.Context, postID uuid.UUID) error
	// Views enriches posts for viewerID.
	Views(dbc dbctx.Context, viewerID uuid.UUID, posts []*types.Post) ([]PostView, error)
}

// PostRepos groups the repos a post service reads and cleans up.
type PostRepos struct {
	Post     repos.PostRepo
	Comment  repos.CommentRepo
	Like     repos.LikeRepo
	Save     repos.SaveRepo
	Favorite repos.FavoriteRepo
	Share    repos.ShareRepo
	Report   repos.ReportRepo
}

type postService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	profileRepo   repos.ProfileRepo
	r             PostRepos
	bucketService gcp.BucketService
}

func NewPostService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.ProfileRepo,
	postRepos PostRepos,
	bucketService gcp.BucketService,
) PostService {
	return &postService{
		db:            db,
		log:           log.With("service", "PostService"),
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		r:             postRepos,
		bucketService: bucketService,
	}
}

func (ps *postService) CreatePost(dbc dbctx.Context, in CreatePostInput) (*PostView, error) {
	authorID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.PostType = strings.TrimSpace(in.PostType)
	in.Visibility = strings.TrimSpace(in.Visibility)
	if in.PostType == "" {
		in.PostType = domainposts.PostTypeText
	}
	if in.Visibility == "" {
		in.Visibility = domainposts.VisibilityPublic
	}

	if in.Content == "" && len(in.Images) == 0 {
		return nil, apierr.BadRequest("validation_error", "Post must contain content or at least one image")
	}
	if !domainposts.ValidPostType(in.PostType) {
		return nil, apierr.BadRequest("validation_error", "post_type must be one of blog, news, review, text, image, video")
	}
	if !domainposts.ValidVisibility(in.Visibility) {
		return nil, apierr.BadRequest("validation_error", "visibility must be one of Public, Connections, Private")
	}
	if len(in.Title) > 255 {
		return nil, apierr.BadRequest("validation_error", "title must be at most 255 characters")
	}
	if len(in.Images) > maxPostImages {
		return nil, apierr.BadRequest("validation_error", fmt.Sprintf("A post can have at most %d images", maxPostImages))
	}
	for i, img := range in.Images {
		if _, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err != nil {
			return nil, apierr.BadRequest("invalid_image", fmt.Sprintf("images[%d] is not a supported image", i))
		}
	}

	post := &types.Post{
		ID:         uuid.New(),
		AuthorID:   authorID,
		Title:      in.Title,
		Content:    in.Content,
		PostType:   in.PostType,
		Visibility: in.Visibility,
	}

	// Upload first so the row never references a missing object.
	uploaded := make([]string, 0, len(in.Images))
	for i, img := range in.Images {
		key := fmt.Sprintf("post_image/%s/%d-%d%s", post.ID, i, time.Now().UnixNano(), imageExt(img.Filename))
		if err := ps.bucketService.UploadFile(dbc, gcp.BucketCategoryPostImage, key, bytes.NewReader(img.Data)); err != nil {
			ps.cleanupUploads(dbc, uploaded)
			return nil, fmt.Errorf("upload post image: %w", err)
		}
		uploaded = append(uploaded, key)
		post.Images = append(post.Images, &types.PostImage{
			PostID:    post.ID,
			URL:       ps.bucketService.GetPublicURL(gcp.BucketCategoryPostImage, key),
			BucketKey: key,
			Order:     i,
		})
	}
	if len(post.Images) > 0 {
		post.ImageBucketKey = post.Images[0].BucketKey
		post.ImageURL = post.Images[0].URL
	}

	if err := ps.r.Post.Create(dbc, post); err != nil {
		ps.cleanupUploads(dbc, uploaded)
		return nil, fmt.Errorf("create post: %w", err)
	}
	return ps.GetPost(dbc, post.ID)
}

func imageExt(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return ext
	}
	return ".img"
}

func (ps *postService) cleanupUploads(dbc dbctx.Context, keys []string) {
	for _, key := range keys {
		if err := ps.bucketService.DeleteFile(dbctx.New(dbc.Ctx), gcp.BucketCategoryPostImage, key); err != nil {
			ps.log.Warn("Failed to delete orphaned post image", "key", key, "error", err)
		}
	}
}

func (ps *postService) ListPosts(dbc dbctx.Context, q PostListQuery) (*PostPage, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPostPageSize
	}
	if q.PageSize > MaxPostPageSize {
		q.PageSize = MaxPostPageSize
	}
	posts, total, err := ps.r.Post.List(dbc, repos.PostQuery{
		ViewerID:       viewerID,
		AuthorUsername: q.Author,
		PostType:       q.PostType,
		Offset:         (q.Page - 1) * q.PageSize,
		Limit:          q.PageSize,
	})
	if err != nil {
		return nil, err
	}
	views, err := ps.Views(dbc, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return &PostPage{Count: total, Page: q.Page, PageSize: q.PageSize, Results: views}, nil
}

func (ps *postService) GetPost(dbc dbctx.Context, postID uuid.UUID) (*PostView, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	post, err := ps.r.Post.GetVisible(dbc, postID, viewerID)
	if err != nil {
		return nil, err
	}
	views, err := ps.Views(dbc, viewerID, []*types.Post{post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ownPost loads a post the caller can see and checks they wrote it.
func (ps *postService) ownPost(dbc dbctx.Context, postID uuid.UUID) (*types.Post, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	post, err := ps.r.Post.GetVisible(dbc, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != viewerID {
		return nil, fmt.Errorf("%w: only the author can modify this post", pkgerrors.ErrForbidden)
	}
	return post, nil
}

func (ps *postService) UpdatePost(dbc dbctx.Context, postID uuid.UUID, in UpdatePostInput) (*PostView, error) {
	post, err := ps.ownPost(dbc, postID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if len(t) > 255 {
			return nil, apierr.BadRequest("validation_error", "title must be at most 255 characters")
		}
		updates["title"] = t
	}
	if in.Content != nil {
		c := strings.TrimSpace(*in.Content)
		if c == "" && len(post.Images) == 0 {
			return nil, apierr.BadRequest("validation_error", "Post must contain content or at least one image")
		}
		updates["content"] = c
	}
	if in.PostType != nil {
		if !domainposts.ValidPostType(*in.PostType) {
			return nil, apierr.BadRequest("validation_error", "post_type must be one of blog, news, review, text, image, video")
		}
		updates["post_type"] = *in.PostType
	}
	if in.Visibility != nil {
		if !domainposts.ValidVisibility(*in.Visibility) {
			return nil, apierr.BadRequest("validation_error", "visibility must be one of Public, Connections, Private")
		}
		updates["visibility"] = *in.Visibility
	}
	if len(updates) > 0 {
		updates["is_edited"] = true
	}
	if in.IsPinned != nil {
		updates["is_pinned"] = *in.IsPinned
	}
	if err := ps.r.Post.Update(dbc, post.ID, updates); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return ps.GetPost(dbc, post.ID)
}

func (ps *postService) DeletePost(dbc dbctx.Context, postID uuid.UUID) error {
	post, err := ps.ownPost(dbc, postID)
	if err != nil {
		return err
	}
	err = ps.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		for _, del := range []func(dbctx.Context, uuid.UUID) error{
			ps.r.Comment.DeleteByPost,
			ps.r.Like.DeleteByPost,
			ps.r.Save.DeleteByPost,
			ps.r.Favorite.DeleteByPost,
			ps.r.Share.DeleteByPost,
			ps.r.Report.DeleteByPost,
		} {
			if err := del(txc, post.ID); err != nil {
				return err
			}
		}
		return ps.r.Post.Delete(txc, post.ID)
	})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	keys := make([]string, 0, len(post.Images))
	for _, img := range post.Images {
		keys = append(keys, img.BucketKey)
	}
	ps.cleanupUploads(dbc, keys)
	return nil
}

func (ps *postService) Views(dbc dbctx.Context, viewerID uuid.UUID, posts []*types.Post) ([]PostView, error) {
	out := make([]PostView, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	postIDs := make([]uuid.UUID, 0, len(posts))
	authorSet := map[uuid.UUID]struct{}{}
	authorIDs := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if _, ok := authorSet[p.AuthorID]; !ok {
			authorSet[p.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	var (
		comments, likes map[uuid.UUID]int64
		liked, saved    map[uuid.UUID]bool
		authors         []UserSummary
	)
	// Each lookup runs on its own pooled connection, never inside a caller's tx.
	g, gctx := errgroup.WithContext(dbc.Ctx)
	read := dbctx.New(gctx)
	g.Go(func() (err error) { comments, err = ps.r.Comment.CountByPosts(read, postIDs); return })
	g.Go(func() (err error) { likes, err = ps.r.Like.CountByPosts(read, postIDs); return })
	g.Go(func() (err error) { liked, err = ps.r.Like.PostIDsForUser(read, viewerID, postIDs); return })
	g.Go(func() (err error) { saved, err = ps.r.Save.PostIDsForUser(read, viewerID, postIDs); return })
	g.Go(func() error {
		users, err := ps.userRepo.GetByIDs(read, authorIDs)
		if err != nil {
			return err
		}
		authors, err = summarizeUsers(read, ps.profileRepo, users)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("enrich posts: %w", err)
	}

	byAuthor := make(map[uuid.UUID]UserSummary, len(authors))
	for _, a := range authors {
		byAuthor[a.ID] = a
	}
	for _, p := range posts {
		if p.Images == nil {
			p.Images = []*types.PostImage{}
		}
		out = append(out, PostView{
			Post:          p,
			Author:        byAuthor[p.AuthorID],
			CommentsCount: comments[p.ID],
			LikesCount:    likes[p.ID],
			LikedByMe:     liked[p.ID],
			SavedByMe:     saved[p.ID],
		})
	}
	return out, nil
}

// visiblePost resolves postID for the caller or returns ErrNotFound.
func visiblePost(dbc dbctx.Context, postRepo repos.PostRepo, postID uuid.UUID) (*types.Post, uuid.UUID, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	post, err := postRepo.GetVisible(dbc, postID, viewerID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, viewerID, apierr.NotFound("post_not_found", "Post not found")
		}
		return nil, viewerID, err
	}
	return post, viewerID, nil
}
