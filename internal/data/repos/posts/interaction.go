package posts

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

// Interaction is any row that ties one user to one post.
type Interaction interface {
	types.Comment | types.Like | types.Save | types.Favorite | types.Share | types.Report
}

type InteractionRepo[T Interaction] interface {
	Create(dbc dbctx.Context, row *T) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*T, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, postID *uuid.UUID) ([]*T, error)
	ListByPost(dbc dbctx.Context, postID uuid.UUID) ([]*T, error)
	Exists(dbc dbctx.Context, postID, userID uuid.UUID) (bool, error)
	Update(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteByPost(dbc dbctx.Context, postID uuid.UUID) error
	CountByPosts(dbc dbctx.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	PostIDsForUser(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type interactionRepo[T Interaction] struct {
	db      *gorm.DB
	log     *logger.Logger
	name    string
	orderBy string
}

func newInteractionRepo[T Interaction](db *gorm.DB, baseLog *logger.Logger, name, orderBy string) InteractionRepo[T] {
	return &interactionRepo[T]{
		db:      db,
		log:     baseLog.With("repo", name),
		name:    name,
		orderBy: orderBy,
	}
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo[types.Comment] {
	return newInteractionRepo[types.Comment](db, baseLog, "CommentRepo", "created_at DESC")
}

func NewLikeRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo[types.Like] {
	return newInteractionRepo[types.Like](db, baseLog, "LikeRepo", "created_at DESC")
}

func NewSaveRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo[types.Save] {
	return newInteractionRepo[types.Save](db, baseLog, "SaveRepo", "created_at DESC")
}

func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo[types.Favorite] {
	return newInteractionRepo[types.Favorite](db, baseLog, "FavoriteRepo", "created_at DESC")
}

func NewShareRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo[types.Share] {
	return newInteractionRepo[types.Share](db, baseLog, "ShareRepo", "created_at DESC")
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo[types.Report] {
	return newInteractionRepo[types.Report](db, baseLog, "ReportRepo", "reported_at DESC")
}

func (r *interactionRepo[T]) Create(dbc dbctx.Context, row *T) error {
	if err := dbc.Conn(r.db).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%s create: %w", r.name, pkgerrors.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *interactionRepo[T]) GetByID(dbc dbctx.Context, id uuid.UUID) (*T, error) {
	var row T
	if err := dbc.Conn(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %s: %w", r.name, id, pkgerrors.ErrNotFound)
		}
		return nil, err
	}
	return &row, nil
}

func (r *interactionRepo[T]) ListByUser(dbc dbctx.Context, userID uuid.UUID, postID *uuid.UUID) ([]*T, error) {
	query := dbc.Conn(r.db).Where("user_id = ?", userID)
	if postID != nil {
		query = query.Where("post_id = ?", *postID)
	}
	var results []*T
	if err := query.Order(r.orderBy).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *interactionRepo[T]) ListByPost(dbc dbctx.Context, postID uuid.UUID) ([]*T, error) {
	var results []*T
	if err := dbc.Conn(r.db).
		Where("post_id = ?", postID).
		Order(r.orderBy).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *interactionRepo[T]) Exists(dbc dbctx.Context, postID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.Conn(r.db).
		Model(new(T)).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *interactionRepo[T]) Update(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Model(new(T)).Where("id = ?", id).Updates(updates).Error
}

func (r *interactionRepo[T]) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.Conn(r.db).Where("id = ?", id).Delete(new(T)).Error
}

func (r *interactionRepo[T]) DeleteByPost(dbc dbctx.Context, postID uuid.UUID) error {
	return dbc.Conn(r.db).Where("post_id = ?", postID).Delete(new(T)).Error
}

type postCount struct {
	PostID uuid.UUID
	N      int64
}

func (r *interactionRepo[T]) CountByPosts(dbc dbctx.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []postCount
	if err := dbc.Conn(r.db).
		Model(new(T)).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = row.N
	}
	return out, nil
}

func (r *interactionRepo[T]) PostIDsForUser(dbc dbctx.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	if err := dbc.Conn(r.db).
		Model(new(T)).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Distinct().
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
