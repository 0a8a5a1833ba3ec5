package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/repos"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/domain/social"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
)

const (
	FollowActionFollow   = "follow"
	FollowActionUnfollow = "unfollow"
)

type FollowService interface {
	// Follow follows or unfollows targetUsername and returns a message plus the target's public profile.
	Follow(dbc dbctx.Context, targetUsername, action string) (string, *PublicProfile, error)
	PublicProfile(dbc dbctx.Context, username string) (*PublicProfile, error)
	Followers(dbc dbctx.Context, username string) ([]UserSummary, error)
	Following(dbc dbctx.Context, username string) ([]UserSummary, error)
}

type followService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	profileRepo repos.ProfileRepo
	followRepo  repos.FollowRepo
	postRepo    repos.PostRepo
	notifier    SocialNotifier
}

func NewFollowService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.ProfileRepo,
	followRepo repos.FollowRepo,
	postRepo repos.PostRepo,
	notifier SocialNotifier,
) FollowService {
	return &followService{
		db:          db,
		log:         log.With("service", "FollowService"),
		userRepo:    userRepo,
		profileRepo: profileRepo,
		followRepo:  followRepo,
		postRepo:    postRepo,
		notifier:    notifier,
	}
}

func (fs *followService) target(dbc dbctx.Context, username string) (*types.User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, apierr.BadRequest("validation_error", "target_username is required")
	}
	u, err := fs.userRepo.GetByUsername(dbc, username)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, apierr.NotFound("user_not_found", "User not found")
		}
		return nil, err
	}
	return u, nil
}

func (fs *followService) Follow(dbc dbctx.Context, targetUsername, action string) (string, *PublicProfile, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return "", nil, err
	}
	action = strings.ToLower(strings.TrimSpace(action))
	if action != FollowActionFollow && action != FollowActionUnfollow {
		return "", nil, apierr.BadRequest("validation_error", "action must be follow or unfollow")
	}
	target, err := fs.target(dbc, targetUsername)
	if err != nil {
		return "", nil, err
	}
	if target.ID == viewerID {
		return "", nil, apierr.BadRequest("self_follow", "You cannot follow yourself")
	}

	var msg string
	switch action {
	case FollowActionFollow:
		exists, err := fs.followRepo.Exists(dbc, viewerID, target.ID)
		if err != nil {
			return "", nil, err
		}
		if exists {
			return "", nil, apierr.BadRequest("already_following", "Already following this user")
		}
		if err := fs.followRepo.Create(dbc, &types.Follow{FollowerID: viewerID, FollowingID: target.ID}); err != nil {
			if errors.Is(err, pkgerrors.ErrConflict) {
				return "", nil, apierr.BadRequest("already_following", "Already following this user")
			}
			return "", nil, fmt.Errorf("create follow: %w", err)
		}
		if follower, err := fs.userRepo.GetByID(dbc, viewerID); err == nil {
			fs.notifier.FollowCreated(dbc.Ctx, target.ID, follower)
		}
		msg = fmt.Sprintf("You are now following %s", target.Username)
	case FollowActionUnfollow:
		removed, err := fs.followRepo.Delete(dbc, viewerID, target.ID)
		if err != nil {
			return "", nil, fmt.Errorf("delete follow: %w", err)
		}
		if !removed {
			return "", nil, apierr.BadRequest("not_following", "You are not following this user")
		}
		msg = fmt.Sprintf("You have unfollowed %s", target.Username)
	}

	profile, err := fs.publicProfile(dbc, viewerID, target)
	if err != nil {
		return "", nil, err
	}
	return msg, profile, nil
}

func (fs *followService) PublicProfile(dbc dbctx.Context, username string) (*PublicProfile, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	target, err := fs.target(dbc, username)
	if err != nil {
		return nil, err
	}
	return fs.publicProfile(dbc, viewerID, target)
}

func (fs *followService) publicProfile(dbc dbctx.Context, viewerID uuid.UUID, target *types.User) (*PublicProfile, error) {
	profile, err := fs.profileRepo.GetByUserID(dbc, target.ID)
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, err
	}
	isFollowing := false
	if viewerID != target.ID {
		if isFollowing, err = fs.followRepo.Exists(dbc, viewerID, target.ID); err != nil {
			return nil, err
		}
	}
	followers, err := fs.followRepo.CountFollowers(dbc, target.ID)
	if err != nil {
		return nil, err
	}
	following, err := fs.followRepo.CountFollowing(dbc, target.ID)
	if err != nil {
		return nil, err
	}
	posts, err := fs.postRepo.CountByAuthor(dbc, target.ID)
	if err != nil {
		return nil, err
	}

	out := &PublicProfile{
		Username:       target.Username,
		DisplayName:    displayName(target, profile),
		ProfileImage:   target.AvatarURL,
		IsFollowing:    isFollowing,
		FollowersCount: followers,
		FollowingCount: following,
		PostsCount:     posts,
	}
	if profile != nil {
		out.Bio = profile.Bio
		out.IsPrivate = profile.IsPrivate
	}
	out.CanViewPosts = viewerID == target.ID || !out.IsPrivate || isFollowing
	return out, nil
}

func (fs *followService) Followers(dbc dbctx.Context, username string) ([]UserSummary, error) {
	return fs.listConnections(dbc, username, true)
}

func (fs *followService) Following(dbc dbctx.Context, username string) ([]UserSummary, error) {
	return fs.listConnections(dbc, username, false)
}

func (fs *followService) listConnections(dbc dbctx.Context, username string, followers bool) ([]UserSummary, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	target, err := fs.target(dbc, username)
	if err != nil {
		return nil, err
	}
	if err := fs.checkListVisible(dbc, viewerID, target, followers); err != nil {
		return nil, err
	}

	var users []*types.User
	if followers {
		users, err = fs.followRepo.ListFollowers(dbc, target.ID)
	} else {
		users, err = fs.followRepo.ListFollowing(dbc, target.ID)
	}
	if err != nil {
		return nil, err
	}
	return summarizeUsers(dbc, fs.profileRepo, users)
}

// checkListVisible applies is_private and the per-list privacy setting.
func (fs *followService) checkListVisible(dbc dbctx.Context, viewerID uuid.UUID, target *types.User, followers bool) error {
	if viewerID == target.ID {
		return nil
	}
	profile, err := fs.profileRepo.GetByUserID(dbc, target.ID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	visibility := profile.PrivacySettings.Data().FollowingVisibility
	if followers {
		visibility = profile.PrivacySettings.Data().FollowersVisibility
	}
	if visibility == social.VisibilityPrivate {
		return apierr.Forbidden("list_hidden", "This list is private")
	}
	if !profile.IsPrivate && visibility != social.VisibilityConnections {
		return nil
	}
	isFollowing, err := fs.followRepo.Exists(dbc, viewerID, target.ID)
	if err != nil {
		return err
	}
	if !isFollowing {
		return apierr.Forbidden("private_profile", "This profile is private")
	}
	return nil
}

// summarizeUsers builds summary cards, loading profiles in one query.
func summarizeUsers(dbc dbctx.Context, profileRepo repos.ProfileRepo, users []*types.User) ([]UserSummary, error) {
	out := make([]UserSummary, 0, len(users))
	if len(users) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	profiles, err := profileRepo.GetByUserIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byUser := make(map[uuid.UUID]*types.Profile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}
	for _, u := range users {
		out = append(out, userSummaryWithProfile(u, byUser[u.ID]))
	}
	return out, nil
}
