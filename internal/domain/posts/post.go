package posts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/domain/ids"
)

const (
	PostTypeBlog   = "blog"
	PostTypeNews   = "news"
	PostTypeReview = "review"
	PostTypeText   = "text"
	PostTypeImage  = "image"
	PostTypeVideo  = "video"
)

const (
	VisibilityPublic      = "Public"
	VisibilityConnections = "Connections"
	VisibilityPrivate     = "Private"
)

func ValidPostType(t string) bool {
	switch t {
	case PostTypeBlog, PostTypeNews, PostTypeReview, PostTypeText, PostTypeImage, PostTypeVideo:
		return true
	}
	return false
}

func ValidVisibility(v string) bool {
	switch v {
	case VisibilityPublic, VisibilityConnections, VisibilityPrivate:
		return true
	}
	return false
}

type Post struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID       uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Title          string    `gorm:"column:title" json:"title"`
	Content        string    `gorm:"column:content" json:"content"`
	PostType       string    `gorm:"not null;default:'text';column:post_type;index" json:"post_type"`
	ImageBucketKey string    `gorm:"column:image_bucket_key" json:"-"`
	ImageURL       string    `gorm:"column:image_url" json:"image,omitempty"`
	Visibility     string    `gorm:"not null;default:'Public';column:visibility;index" json:"visibility"`
	IsEdited       bool      `gorm:"not null;default:false;column:is_edited" json:"is_edited"`
	IsPinned       bool      `gorm:"not null;default:false;column:is_pinned" json:"is_pinned"`

	Images []*PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Post) TableName() string { return "post" }

func (p *Post) BeforeCreate(*gorm.DB) error {
	ids.Assign(&p.ID)
	if p.PostType == "" {
		p.PostType = PostTypeText
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	return nil
}

type PostImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	URL       string    `gorm:"not null;column:url" json:"url"`
	BucketKey string    `gorm:"not null;column:bucket_key" json:"-"`
	Order     int       `gorm:"not null;default:0;column:sort_order" json:"order"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (PostImage) TableName() string { return "post_image" }

func (i *PostImage) BeforeCreate(*gorm.DB) error {
	ids.Assign(&i.ID)
	return nil
}
