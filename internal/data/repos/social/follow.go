package social

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

type FollowRepo interface {
	Create(dbc dbctx.Context, follow *types.Follow) error
	Delete(dbc dbctx.Context, followerID, followingID uuid.UUID) (bool, error)
	Exists(dbc dbctx.Context, followerID, followingID uuid.UUID) (bool, error)
	CountFollowers(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountFollowing(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	ListFollowers(dbc dbctx.Context, userID uuid.UUID) ([]*types.User, error)
	ListFollowing(dbc dbctx.Context, userID uuid.UUID) ([]*types.User, error)
}

type followRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFollowRepo(db *gorm.DB, baseLog *logger.Logger) FollowRepo {
	return &followRepo{db: db, log: baseLog.With("repo", "FollowRepo")}
}

func (fr *followRepo) Create(dbc dbctx.Context, follow *types.Follow) error {
	return dbc.Conn(fr.db).Create(follow).Error
}

func (fr *followRepo) Delete(dbc dbctx.Context, followerID, followingID uuid.UUID) (bool, error) {
	res := dbc.Conn(fr.db).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&types.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (fr *followRepo) Exists(dbc dbctx.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.Conn(fr.db).
		Model(&types.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (fr *followRepo) CountFollowers(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Conn(fr.db).Model(&types.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (fr *followRepo) CountFollowing(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Conn(fr.db).Model(&types.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// ListFollowers returns the users following userID, newest follow first.
func (fr *followRepo) ListFollowers(dbc dbctx.Context, userID uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	err := dbc.Conn(fr.db).
		Model(&types.User{}).
		Joins(`JOIN follow ON follow.follower_id = "user".id`).
		Where("follow.following_id = ?", userID).
		Order("follow.created_at DESC").
		Find(&results).Error
	return results, err
}

// ListFollowing returns the users userID follows, newest follow first.
func (fr *followRepo) ListFollowing(dbc dbctx.Context, userID uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	err := dbc.Conn(fr.db).
		Model(&types.User{}).
		Joins(`JOIN follow ON follow.following_id = "user".id`).
		Where("follow.follower_id = ?", userID).
		Order("follow.created_at DESC").
		Find(&results).Error
	return results, err
}
