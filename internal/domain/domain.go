package domain

import (
	"github.com/yungbote/eduverse-backend/internal/domain/auth"
	"github.com/yungbote/eduverse-backend/internal/domain/posts"
	"github.com/yungbote/eduverse-backend/internal/domain/social"
	"github.com/yungbote/eduverse-backend/internal/domain/user"
)

type (
	User      = user.User
	UserToken = auth.UserToken

	Profile              = social.Profile
	NotificationSettings = social.NotificationSettings
	PrivacySettings      = social.PrivacySettings
	Follow               = social.Follow
	Experience           = social.Experience
	Education            = social.Education
	Certification        = social.Certification
	ProfileProject       = social.ProfileProject
	ProfileSkill         = social.ProfileSkill

	Post      = posts.Post
	PostImage = posts.PostImage
	Comment   = posts.Comment
	Like      = posts.Like
	Save      = posts.Save
	Favorite  = posts.Favorite
	Share     = posts.Share
	Report    = posts.Report
)

// Models lists every table AutoMigrate manages, in dependency order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Profile{},
		&Follow{},
		&Experience{},
		&Education{},
		&Certification{},
		&ProfileProject{},
		&ProfileSkill{},
		&Post{},
		&PostImage{},
		&Comment{},
		&Like{},
		&Save{},
		&Favorite{},
		&Share{},
		&Report{},
	}
}
