package posts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/domain/ids"
)

const (
	MaxCommentLength = 255
	MaxReportLength  = 500
)

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user"`
	Content   string    `gorm:"type:varchar(255);not null;column:content" json:"content"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Comment) TableName() string { return "post_comment" }

func (r *Comment) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_post_user" json:"post"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_like_post_user;index" json:"user"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Like) TableName() string { return "post_like" }

func (r *Like) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

type Save struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_save_post_user" json:"post"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_save_post_user;index" json:"user"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Save) TableName() string { return "post_save" }

func (r *Save) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_post_user" json:"post"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_post_user;index" json:"user"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Favorite) TableName() string { return "post_favorite" }

func (r *Favorite) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

type Share struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"post"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"user"`
	SharedWith *uuid.UUID `gorm:"type:uuid;column:shared_with" json:"shared_with,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Share) TableName() string { return "post_share" }

func (r *Share) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

type Report struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID     uuid.UUID `gorm:"type:uuid;not null;index" json:"post"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user"`
	Reason     string    `gorm:"type:varchar(500);not null;column:reason" json:"reason"`
	ReportedAt time.Time `gorm:"not null;autoCreateTime;column:reported_at" json:"reported_at"`
}

func (Report) TableName() string { return "post_report" }

func (r *Report) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

// Owner is the user who created the row. Target is the post it refers to.
func (r *Comment) Owner() uuid.UUID  { return r.UserID }
func (r *Like) Owner() uuid.UUID     { return r.UserID }
func (r *Save) Owner() uuid.UUID     { return r.UserID }
func (r *Favorite) Owner() uuid.UUID { return r.UserID }
func (r *Share) Owner() uuid.UUID    { return r.UserID }
func (r *Report) Owner() uuid.UUID   { return r.UserID }

func (r *Comment) Target() uuid.UUID  { return r.PostID }
func (r *Like) Target() uuid.UUID     { return r.PostID }
func (r *Save) Target() uuid.UUID     { return r.PostID }
func (r *Favorite) Target() uuid.UUID { return r.PostID }
func (r *Share) Target() uuid.UUID    { return r.PostID }
func (r *Report) Target() uuid.UUID   { return r.PostID }
