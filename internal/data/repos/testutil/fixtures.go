package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/domain/social"
)

// SeedUser inserts a user and an empty profile. The username is the email local part.
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	username := strings.SplitN(email, "@", 2)[0]
	u := &types.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	p := social.NewProfile(u.ID, u.Username, "")
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return u
}

func SeedPost(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID uuid.UUID, content, visibility string) *types.Post {
	tb.Helper()
	p := &types.Post{
		AuthorID:   authorID,
		Title:      "title",
		Content:    content,
		PostType:   "text",
		Visibility: visibility,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed post: %v", err)
	}
	return p
}

func SeedFollow(tb testing.TB, ctx context.Context, tx *gorm.DB, followerID, followingID uuid.UUID) *types.Follow {
	tb.Helper()
	f := &types.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed follow: %v", err)
	}
	return f
}

func PtrString(v string) *string { return &v }
