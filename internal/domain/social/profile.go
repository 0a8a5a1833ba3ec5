package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/domain/ids"
)

const (
	AccountStatusActive      = "active"
	AccountStatusDeactivated = "deactivated"
	AccountStatusSuspended   = "suspended"
)

const (
	VisibilityPublic      = "public"
	VisibilityConnections = "connections"
	VisibilityPrivate     = "private"
)

type NotificationSettings struct {
	Email     bool `json:"email"`
	Push      bool `json:"push"`
	SMS       bool `json:"sms"`
	PostLikes bool `json:"post_likes"`
	Comments  bool `json:"comments"`
	Follows   bool `json:"follows"`
	Messages  bool `json:"messages"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		Email:     true,
		Push:      true,
		SMS:       false,
		PostLikes: true,
		Comments:  true,
		Follows:   true,
		Messages:  true,
	}
}

type PrivacySettings struct {
	ProfileVisibility   string `json:"profile_visibility"`
	PostsVisibility     string `json:"posts_visibility"`
	FollowersVisibility string `json:"followers_visibility"`
	FollowingVisibility string `json:"following_visibility"`
}

func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		ProfileVisibility:   VisibilityPublic,
		PostsVisibility:     VisibilityPublic,
		FollowersVisibility: VisibilityPublic,
		FollowingVisibility: VisibilityPublic,
	}
}

func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityConnections, VisibilityPrivate:
		return true
	}
	return false
}

// Profile holds the social side of an account. Username mirrors User.Username.
type Profile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Username    string    `gorm:"not null;index;column:username" json:"username"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	Bio         string    `gorm:"column:bio" json:"bio"`
	Website     string    `gorm:"column:website" json:"website"`
	Location    string    `gorm:"column:location" json:"location"`

	// Skills is derived from ProfileSkill rows and is not editable directly.
	Skills     datatypes.JSONSlice[string] `gorm:"column:skills" json:"skills"`
	Highlights datatypes.JSONSlice[string] `gorm:"column:highlights" json:"highlights"`

	NotificationSettings datatypes.JSONType[NotificationSettings] `gorm:"column:notification_settings" json:"notification_settings"`
	PrivacySettings      datatypes.JSONType[PrivacySettings]      `gorm:"column:privacy_settings" json:"privacy_settings"`

	AccountStatus string `gorm:"not null;default:'active';column:account_status" json:"account_status"`
	IsVerified    bool   `gorm:"not null;default:false;column:is_verified" json:"is_verified"`
	IsPrivate     bool   `gorm:"not null;default:false;column:is_private" json:"is_private"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }

func (p *Profile) BeforeCreate(*gorm.DB) error {
	ids.Assign(&p.ID)
	if p.Skills == nil {
		p.Skills = datatypes.JSONSlice[string]{}
	}
	if p.Highlights == nil {
		p.Highlights = datatypes.JSONSlice[string]{}
	}
	if p.NotificationSettings.Data() == (NotificationSettings{}) {
		p.NotificationSettings = datatypes.NewJSONType(DefaultNotificationSettings())
	}
	if p.PrivacySettings.Data() == (PrivacySettings{}) {
		p.PrivacySettings = datatypes.NewJSONType(DefaultPrivacySettings())
	}
	if p.AccountStatus == "" {
		p.AccountStatus = AccountStatusActive
	}
	return nil
}

// NewProfile returns a profile with default settings for userID.
func NewProfile(userID uuid.UUID, username, displayName string) *Profile {
	return &Profile{
		UserID:               userID,
		Username:             username,
		DisplayName:          displayName,
		Skills:               datatypes.JSONSlice[string]{},
		Highlights:           datatypes.JSONSlice[string]{},
		NotificationSettings: datatypes.NewJSONType(DefaultNotificationSettings()),
		PrivacySettings:      datatypes.NewJSONType(DefaultPrivacySettings()),
		AccountStatus:        AccountStatusActive,
	}
}
