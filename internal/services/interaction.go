package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/repos"
	reposts "github.com/yungbote/eduverse-backend/internal/data/repos/posts"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	domainposts "github.com/yungbote/eduverse-backend/internal/domain/posts"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
)

// InteractionService covers comments, likes, saves, favorites, shares and reports.
type InteractionService interface {
	ListComments(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Comment, error)
	CreateComment(dbc dbctx.Context, postID uuid.UUID, content string) (*types.Comment, error)
	GetComment(dbc dbctx.Context, id uuid.UUID) (*types.Comment, error)
	UpdateComment(dbc dbctx.Context, id uuid.UUID, content string) (*types.Comment, error)
	DeleteComment(dbc dbctx.Context, id uuid.UUID) error

	ListLikes(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Like, error)
	CreateLike(dbc dbctx.Context, postID uuid.UUID) (*types.Like, error)
	DeleteLike(dbc dbctx.Context, id uuid.UUID) error

	ListSaves(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Save, error)
	CreateSave(dbc dbctx.Context, postID uuid.UUID) (*types.Save, error)
	DeleteSave(dbc dbctx.Context, id uuid.UUID) error

	ListFavorites(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Favorite, error)
	CreateFavorite(dbc dbctx.Context, postID uuid.UUID) (*types.Favorite, error)
	DeleteFavorite(dbc dbctx.Context, id uuid.UUID) error

	ListShares(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Share, error)
	CreateShare(dbc dbctx.Context, postID uuid.UUID, sharedWith *uuid.UUID) (*types.Share, error)
	GetShare(dbc dbctx.Context, id uuid.UUID) (*types.Share, error)
	DeleteShare(dbc dbctx.Context, id uuid.UUID) error

	ListReports(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Report, error)
	CreateReport(dbc dbctx.Context, postID uuid.UUID, reason string) (*types.Report, error)
	GetReport(dbc dbctx.Context, id uuid.UUID) (*types.Report, error)
	DeleteReport(dbc dbctx.Context, id uuid.UUID) error
}

type interactionService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	r        PostRepos
	notifier SocialNotifier
}

func NewInteractionService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, postRepos PostRepos, notifier SocialNotifier) InteractionService {
	return &interactionService{
		db:       db,
		log:      log.With("service", "InteractionService"),
		userRepo: userRepo,
		r:        postRepos,
		notifier: notifier,
	}
}

type ownedRow interface {
	Owner() uuid.UUID
	Target() uuid.UUID
}

type ownedPtr[T any] interface {
	*T
	ownedRow
}

// getOwned loads a row and requires the caller to own it.
func getOwned[T reposts.Interaction, PT ownedPtr[T]](dbc dbctx.Context, repo reposts.InteractionRepo[T], id uuid.UUID, what string) (*T, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	row, err := repo.GetByID(dbc, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, apierr.NotFound(what+"_not_found", strings.ToUpper(what[:1])+what[1:]+" not found")
		}
		return nil, err
	}
	if PT(row).Owner() != viewerID {
		return nil, fmt.Errorf("%w: you do not own this %s", pkgerrors.ErrForbidden, what)
	}
	return row, nil
}

// listMine lists the caller's rows, optionally for one post.
func listMine[T reposts.Interaction](dbc dbctx.Context, repo reposts.InteractionRepo[T], postID *uuid.UUID) ([]*T, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	rows, err := repo.ListByUser(dbc, viewerID, postID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*T{}
	}
	return rows, nil
}

// createUnique inserts a per (post, user) row, reporting duplicates with dupMsg.
func createUnique[T reposts.Interaction](dbc dbctx.Context, repo reposts.InteractionRepo[T], postID, userID uuid.UUID, row *T, dupMsg string) error {
	exists, err := repo.Exists(dbc, postID, userID)
	if err != nil {
		return err
	}
	if exists {
		return apierr.BadRequest("duplicate", dupMsg)
	}
	if err := repo.Create(dbc, row); err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return apierr.BadRequest("duplicate", dupMsg)
		}
		return err
	}
	return nil
}

func validateComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apierr.BadRequest("validation_error", "content is required")
	}
	if utf8.RuneCountInString(content) > domainposts.MaxCommentLength {
		return "", apierr.BadRequest("validation_error", fmt.Sprintf("content must be at most %d characters", domainposts.MaxCommentLength))
	}
	return content, nil
}

func (is *interactionService) ListComments(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Comment, error) {
	if postID == nil {
		return listMine(dbc, is.r.Comment, nil)
	}
	post, _, err := visiblePost(dbc, is.r.Post, *postID)
	if err != nil {
		return nil, err
	}
	rows, err := is.r.Comment.ListByPost(dbc, post.ID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*types.Comment{}
	}
	return rows, nil
}

func (is *interactionService) CreateComment(dbc dbctx.Context, postID uuid.UUID, content string) (*types.Comment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	post, viewerID, err := visiblePost(dbc, is.r.Post, postID)
	if err != nil {
		return nil, err
	}
	c := &types.Comment{PostID: post.ID, UserID: viewerID, Content: content}
	if err := is.r.Comment.Create(dbc, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if commenter, err := is.userRepo.GetByID(dbc, viewerID); err == nil {
		is.notifier.PostCommented(dbc.Ctx, post, c, commenter)
	}
	return c, nil
}

func (is *interactionService) GetComment(dbc dbctx.Context, id uuid.UUID) (*types.Comment, error) {
	c, err := is.r.Comment.GetByID(dbc, id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, apierr.NotFound("comment_not_found", "Comment not found")
		}
		return nil, err
	}
	// Comments are readable by anyone who can see the post.
	if _, _, err := visiblePost(dbc, is.r.Post, c.PostID); err != nil {
		if ae, ok := apierr.As(err); ok && ae.Status == 404 {
			return nil, apierr.NotFound("comment_not_found", "Comment not found")
		}
		return nil, err
	}
	return c, nil
}

func (is *interactionService) UpdateComment(dbc dbctx.Context, id uuid.UUID, content string) (*types.Comment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}
	c, err := getOwned(dbc, is.r.Comment, id, "comment")
	if err != nil {
		return nil, err
	}
	if err := is.r.Comment.Update(dbc, c.ID, map[string]any{"content": content}); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return is.r.Comment.GetByID(dbc, c.ID)
}

func (is *interactionService) DeleteComment(dbc dbctx.Context, id uuid.UUID) error {
	c, err := getOwned(dbc, is.r.Comment, id, "comment")
	if err != nil {
		return err
	}
	return is.r.Comment.Delete(dbc, c.ID)
}

func (is *interactionService) ListLikes(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Like, error) {
	return listMine(dbc, is.r.Like, postID)
}

func (is *interactionService) CreateLike(dbc dbctx.Context, postID uuid.UUID) (*types.Like, error) {
	post, viewerID, err := visiblePost(dbc, is.r.Post, postID)
	if err != nil {
		return nil, err
	}
	like := &types.Like{PostID: post.ID, UserID: viewerID}
	if err := createUnique(dbc, is.r.Like, post.ID, viewerID, like, "Already liked"); err != nil {
		return nil, err
	}
	if liker, err := is.userRepo.GetByID(dbc, viewerID); err == nil {
		is.notifier.PostLiked(dbc.Ctx, post, like, liker)
	}
	return like, nil
}

func (is *interactionService) DeleteLike(dbc dbctx.Context, id uuid.UUID) error {
	row, err := getOwned(dbc, is.r.Like, id, "like")
	if err != nil {
		return err
	}
	return is.r.Like.Delete(dbc, row.ID)
}

func (is *interactionService) ListSaves(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Save, error) {
	return listMine(dbc, is.r.Save, postID)
}

func (is *interactionService) CreateSave(dbc dbctx.Context, postID uuid.UUID) (*types.Save, error) {
	post, viewerID, err := visiblePost(dbc, is.r.Post, postID)
	if err != nil {
		return nil, err
	}
	row := &types.Save{PostID: post.ID, UserID: viewerID}
	if err := createUnique(dbc, is.r.Save, post.ID, viewerID, row, "Already saved"); err != nil {
		return nil, err
	}
	return row, nil
}

func (is *interactionService) DeleteSave(dbc dbctx.Context, id uuid.UUID) error {
	row, err := getOwned(dbc, is.r.Save, id, "save")
	if err != nil {
		return err
	}
	return is.r.Save.Delete(dbc, row.ID)
}

func (is *interactionService) ListFavorites(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Favorite, error) {
	return listMine(dbc, is.r.Favorite, postID)
}

func (is *interactionService) CreateFavorite(dbc dbctx.Context, postID uuid.UUID) (*types.Favorite, error) {
	post, viewerID, err := visiblePost(dbc, is.r.Post, postID)
	if err != nil {
		return nil, err
	}
	row := &types.Favorite{PostID: post.ID, UserID: viewerID}
	if err := createUnique(dbc, is.r.Favorite, post.ID, viewerID, row, "Already favorited"); err != nil {
		return nil, err
	}
	return row, nil
}

func (is *interactionService) DeleteFavorite(dbc dbctx.Context, id uuid.UUID) error {
	row, err := getOwned(dbc, is.r.Favorite, id, "favorite")
	if err != nil {
		return err
	}
	return is.r.Favorite.Delete(dbc, row.ID)
}

func (is *interactionService) ListShares(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Share, error) {
	return listMine(dbc, is.r.Share, postID)
}

func (is *interactionService) CreateShare(dbc dbctx.Context, postID uuid.UUID, sharedWith *uuid.UUID) (*types.Share, error) {
	post, viewerID, err := visiblePost(dbc, is.r.Post, postID)
	if err != nil {
		return nil, err
	}
	if sharedWith != nil {
		if *sharedWith == uuid.Nil {
			sharedWith = nil
		} else if _, err := is.userRepo.GetByID(dbc, *sharedWith); err != nil {
			if errors.Is(err, pkgerrors.ErrNotFound) {
				return nil, apierr.NotFound("user_not_found", "shared_with user not found")
			}
			return nil, err
		}
	}
	row := &types.Share{PostID: post.ID, UserID: viewerID, SharedWith: sharedWith}
	if err := is.r.Share.Create(dbc, row); err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}
	return row, nil
}

func (is *interactionService) GetShare(dbc dbctx.Context, id uuid.UUID) (*types.Share, error) {
	return getOwned(dbc, is.r.Share, id, "share")
}

func (is *interactionService) DeleteShare(dbc dbctx.Context, id uuid.UUID) error {
	row, err := getOwned(dbc, is.r.Share, id, "share")
	if err != nil {
		return err
	}
	return is.r.Share.Delete(dbc, row.ID)
}

func (is *interactionService) ListReports(dbc dbctx.Context, postID *uuid.UUID) ([]*types.Report, error) {
	return listMine(dbc, is.r.Report, postID)
}

func (is *interactionService) CreateReport(dbc dbctx.Context, postID uuid.UUID, reason string) (*types.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apierr.BadRequest("validation_error", "reason is required")
	}
	if utf8.RuneCountInString(reason) > domainposts.MaxReportLength {
		return nil, apierr.BadRequest("validation_error", fmt.Sprintf("reason must be at most %d characters", domainposts.MaxReportLength))
	}
	post, viewerID, err := visiblePost(dbc, is.r.Post, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID == viewerID {
		return nil, apierr.BadRequest("own_post", "You cannot report your own post")
	}
	row := &types.Report{PostID: post.ID, UserID: viewerID, Reason: reason}
	if err := is.r.Report.Create(dbc, row); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return row, nil
}

func (is *interactionService) GetReport(dbc dbctx.Context, id uuid.UUID) (*types.Report, error) {
	return getOwned(dbc, is.r.Report, id, "report")
}

func (is *interactionService) DeleteReport(dbc dbctx.Context, id uuid.UUID) error {
	row, err := getOwned(dbc, is.r.Report, id, "report")
	if err != nil {
		return err
	}
	return is.r.Report.Delete(dbc, row.ID)
}
