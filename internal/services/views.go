package services

import (
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/eduverse-backend/internal/domain"
)

// UserSummary is the public card shown for a user in lists and search results.
type UserSummary struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	ProfileImage string    `json:"profile_image"`
}

// PublicProfile is what other users see at /api/othersprofile/:username.
type PublicProfile struct {
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	ProfileImage   string `json:"profile_image"`
	Bio            string `json:"bio"`
	IsPrivate      bool   `json:"is_private"`
	IsFollowing    bool   `json:"is_following"`
	CanViewPosts   bool   `json:"can_view_posts"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	PostsCount     int64  `json:"posts_count"`
}

// PostView is a post enriched for one viewer.
type PostView struct {
	*types.Post
	Author        UserSummary `json:"author"`
	CommentsCount int64       `json:"comments_count"`
	LikesCount    int64       `json:"likes_count"`
	LikedByMe     bool        `json:"liked_by_me"`
	SavedByMe     bool        `json:"saved_by_me"`
}

// displayName prefers the profile display name, then "First Last", then "@username".
func displayName(u *types.User, p *types.Profile) string {
	if p != nil {
		if dn := strings.TrimSpace(p.DisplayName); dn != "" {
			return dn
		}
	}
	if u == nil {
		return ""
	}
	if full := strings.TrimSpace(u.FullName()); full != "" {
		return full
	}
	return "@" + u.Username
}

func userSummary(u *types.User) UserSummary {
	return userSummaryWithProfile(u, nil)
}

func userSummaryWithProfile(u *types.User, p *types.Profile) UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		DisplayName:  displayName(u, p),
		ProfileImage: u.AvatarURL,
	}
}
