package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/domain/ids"
)

type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username        string     `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email           string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password        string     `gorm:"not null;column:password" json:"-"`
	FirstName       string     `gorm:"not null;default:'';column:first_name" json:"first_name"`
	LastName        string     `gorm:"not null;default:'';column:last_name" json:"last_name"`
	AvatarBucketKey string     `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key"`
	AvatarURL       string     `gorm:"column:avatar_url" json:"avatar_url"`
	AvatarColor     string     `gorm:"column:avatar_color" json:"avatar_color"`
	IsActive        bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`
	LastLoginAt     *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(*gorm.DB) error {
	ids.Assign(&u.ID)
	return nil
}

// FullName joins first and last name, skipping blanks.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}
