package handlers

import (
	"strings"

	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/platform/gcp"
	"github.com/yungbote/eduverse-backend/internal/services"
)

// resolveBucketBackedURL rebuilds a public URL from its storage key so rows
// written under an older CDN or emulator host still resolve.
func resolveBucketBackedURL(
	bucket gcp.BucketService,
	category gcp.BucketCategory,
	storageKey string,
	currentURL string,
) string {
	key := strings.TrimSpace(storageKey)
	if bucket == nil || key == "" {
		return strings.TrimSpace(currentURL)
	}
	resolved := strings.TrimSpace(bucket.GetPublicURL(category, key))
	if resolved == "" {
		return strings.TrimSpace(currentURL)
	}
	return resolved
}

func normalizeUserAvatarURL(bucket gcp.BucketService, u *types.User) {
	if u == nil {
		return
	}
	u.AvatarURL = resolveBucketBackedURL(bucket, gcp.BucketCategoryAvatar, u.AvatarBucketKey, u.AvatarURL)
}

func normalizePostImageURLs(bucket gcp.BucketService, p *types.Post) {
	if p == nil {
		return
	}
	p.ImageURL = resolveBucketBackedURL(bucket, gcp.BucketCategoryPostImage, p.ImageBucketKey, p.ImageURL)
	for _, img := range p.Images {
		if img == nil {
			continue
		}
		img.URL = resolveBucketBackedURL(bucket, gcp.BucketCategoryPostImage, img.BucketKey, img.URL)
	}
}

func normalizePostViews(bucket gcp.BucketService, views []services.PostView) {
	for i := range views {
		normalizePostImageURLs(bucket, views[i].Post)
	}
}
