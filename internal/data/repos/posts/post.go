package posts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/db"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	domainposts "github.com/yungbote/eduverse-backend/internal/domain/posts"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

// PostQuery filters posts visible to ViewerID.
type PostQuery struct {
	ViewerID uuid.UUID
	AuthorID *uuid.UUID
	// AuthorUsername matches the author's username exactly, ignoring case.
	AuthorUsername string
	// AuthorContains is a case-insensitive substring match on the author's username.
	AuthorContains string
	PostType       string
	// Text is a case-insensitive substring match on title and content.
	Text   string
	Offset int
	Limit  int
}

type PostRepo interface {
	Create(dbc dbctx.Context, post *types.Post) error
	GetByID(dbc dbctx.Context, postID uuid.UUID) (*types.Post, error)
	GetVisible(dbc dbctx.Context, postID, viewerID uuid.UUID) (*types.Post, error)
	List(dbc dbctx.Context, q PostQuery) ([]*types.Post, int64, error)
	Update(dbc dbctx.Context, postID uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, postID uuid.UUID) error
	CountByAuthor(dbc dbctx.Context, authorID uuid.UUID) (int64, error)
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return &postRepo{db: db, log: baseLog.With("repo", "PostRepo")}
}

// VisibleTo limits a post query to rows viewerID may read: public posts,
// their own posts, and connections-only posts of authors they follow.
func VisibleTo(viewerID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"(post.visibility = ? OR post.author_id = ? OR (post.visibility = ? AND post.author_id IN (SELECT following_id FROM follow WHERE follower_id = ?)))",
			domainposts.VisibilityPublic, viewerID, domainposts.VisibilityConnections, viewerID,
		)
	}
}

func withOrderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

func (pr *postRepo) Create(dbc dbctx.Context, post *types.Post) error {
	return dbc.Conn(pr.db).Create(post).Error
}

func (pr *postRepo) GetByID(dbc dbctx.Context, postID uuid.UUID) (*types.Post, error) {
	var p types.Post
	err := dbc.Conn(pr.db).
		Preload("Images", withOrderedImages).
		Where("id = ?", postID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %s: %w", postID, pkgerrors.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (pr *postRepo) GetVisible(dbc dbctx.Context, postID, viewerID uuid.UUID) (*types.Post, error) {
	var p types.Post
	err := dbc.Conn(pr.db).
		Model(&types.Post{}).
		Scopes(VisibleTo(viewerID)).
		Preload("Images", withOrderedImages).
		Where("post.id = ?", postID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %s: %w", postID, pkgerrors.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (pr *postRepo) filtered(dbc dbctx.Context, q PostQuery) *gorm.DB {
	query := dbc.Conn(pr.db).Model(&types.Post{}).Scopes(VisibleTo(q.ViewerID))
	if q.AuthorID != nil {
		query = query.Where("post.author_id = ?", *q.AuthorID)
	}
	if name := strings.ToLower(strings.TrimSpace(q.AuthorUsername)); name != "" {
		query = query.Where(
			`post.author_id IN (SELECT id FROM "user" WHERE LOWER(username) = ? AND deleted_at IS NULL)`,
			name,
		)
	}
	if like := db.ContainsPattern(q.AuthorContains); like != "" {
		query = query.Where(
			`post.author_id IN (SELECT id FROM "user" WHERE LOWER(username) LIKE ?`+db.LikeEscape+` AND deleted_at IS NULL)`,
			like,
		)
	}
	if pt := strings.TrimSpace(q.PostType); pt != "" {
		query = query.Where("post.post_type = ?", pt)
	}
	if like := db.ContainsPattern(q.Text); like != "" {
		query = query.Where("(LOWER(post.title) LIKE ?"+db.LikeEscape+" OR LOWER(post.content) LIKE ?"+db.LikeEscape+")", like, like)
	}
	return query
}

// List returns one page of matching posts, pinned first then newest, and the total count.
func (pr *postRepo) List(dbc dbctx.Context, q PostQuery) ([]*types.Post, int64, error) {
	var total int64
	if err := pr.filtered(dbc, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	var results []*types.Post
	if err := pr.filtered(dbc, q).
		Preload("Images", withOrderedImages).
		Order("post.is_pinned DESC").
		Order("post.created_at DESC").
		Offset(q.Offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (pr *postRepo) Update(dbc dbctx.Context, postID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.Conn(pr.db).
		Model(&types.Post{}).
		Where("id = ?", postID).
		Updates(updates).Error
}

func (pr *postRepo) Delete(dbc dbctx.Context, postID uuid.UUID) error {
	conn := dbc.Conn(pr.db)
	if err := conn.Where("post_id = ?", postID).Delete(&types.PostImage{}).Error; err != nil {
		return err
	}
	return conn.Where("id = ?", postID).Delete(&types.Post{}).Error
}

func (pr *postRepo) CountByAuthor(dbc dbctx.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Conn(pr.db).Model(&types.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}
