package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/repos"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo

	Profile        repos.ProfileRepo
	Follow         repos.FollowRepo
	Experience     repos.ExperienceRepo
	Education      repos.EducationRepo
	Certification  repos.CertificationRepo
	ProfileProject repos.ProfileProjectRepo
	ProfileSkill   repos.ProfileSkillRepo

	Post     repos.PostRepo
	Comment  repos.CommentRepo
	Like     repos.LikeRepo
	Save     repos.SaveRepo
	Favorite repos.FavoriteRepo
	Share    repos.ShareRepo
	Report   repos.ReportRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),

		Profile:        repos.NewProfileRepo(db, log),
		Follow:         repos.NewFollowRepo(db, log),
		Experience:     repos.NewExperienceRepo(db, log),
		Education:      repos.NewEducationRepo(db, log),
		Certification:  repos.NewCertificationRepo(db, log),
		ProfileProject: repos.NewProfileProjectRepo(db, log),
		ProfileSkill:   repos.NewProfileSkillRepo(db, log),

		Post:     repos.NewPostRepo(db, log),
		Comment:  repos.NewCommentRepo(db, log),
		Like:     repos.NewLikeRepo(db, log),
		Save:     repos.NewSaveRepo(db, log),
		Favorite: repos.NewFavoriteRepo(db, log),
		Share:    repos.NewShareRepo(db, log),
		Report:   repos.NewReportRepo(db, log),
	}
}
