package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/repos/auth"
	"github.com/yungbote/eduverse-backend/internal/data/repos/posts"
	"github.com/yungbote/eduverse-backend/internal/data/repos/social"
	"github.com/yungbote/eduverse-backend/internal/data/repos/user"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo
type UserSearch = user.UserSearch
type UserTokenRepo = auth.UserTokenRepo

type ProfileRepo = social.ProfileRepo
type FollowRepo = social.FollowRepo
type ExperienceRepo = social.RecordRepo[types.Experience]
type EducationRepo = social.RecordRepo[types.Education]
type CertificationRepo = social.RecordRepo[types.Certification]
type ProfileProjectRepo = social.RecordRepo[types.ProfileProject]
type ProfileSkillRepo = social.RecordRepo[types.ProfileSkill]

type PostRepo = posts.PostRepo
type PostQuery = posts.PostQuery
type CommentRepo = posts.InteractionRepo[types.Comment]
type LikeRepo = posts.InteractionRepo[types.Like]
type SaveRepo = posts.InteractionRepo[types.Save]
type FavoriteRepo = posts.InteractionRepo[types.Favorite]
type ShareRepo = posts.InteractionRepo[types.Share]
type ReportRepo = posts.InteractionRepo[types.Report]

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return social.NewProfileRepo(db, baseLog)
}
func NewFollowRepo(db *gorm.DB, baseLog *logger.Logger) FollowRepo {
	return social.NewFollowRepo(db, baseLog)
}
func NewExperienceRepo(db *gorm.DB, baseLog *logger.Logger) ExperienceRepo {
	return social.NewRecordRepo[types.Experience](db, baseLog)
}
func NewEducationRepo(db *gorm.DB, baseLog *logger.Logger) EducationRepo {
	return social.NewRecordRepo[types.Education](db, baseLog)
}
func NewCertificationRepo(db *gorm.DB, baseLog *logger.Logger) CertificationRepo {
	return social.NewRecordRepo[types.Certification](db, baseLog)
}
func NewProfileProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProfileProjectRepo {
	return social.NewRecordRepo[types.ProfileProject](db, baseLog)
}
func NewProfileSkillRepo(db *gorm.DB, baseLog *logger.Logger) ProfileSkillRepo {
	return social.NewRecordRepo[types.ProfileSkill](db, baseLog)
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo { return posts.NewPostRepo(db, baseLog) }
func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return posts.NewCommentRepo(db, baseLog)
}
func NewLikeRepo(db *gorm.DB, baseLog *logger.Logger) LikeRepo { return posts.NewLikeRepo(db, baseLog) }
func NewSaveRepo(db *gorm.DB, baseLog *logger.Logger) SaveRepo { return posts.NewSaveRepo(db, baseLog) }
func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) FavoriteRepo {
	return posts.NewFavoriteRepo(db, baseLog)
}
func NewShareRepo(db *gorm.DB, baseLog *logger.Logger) ShareRepo { return posts.NewShareRepo(db, baseLog) }
func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return posts.NewReportRepo(db, baseLog)
}
