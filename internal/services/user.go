package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/repos"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

type MeView struct {
	User    *types.User    `json:"user"`
	Profile *types.Profile `json:"profile"`
}

type UserService interface {
	GetMe(dbc dbctx.Context) (*MeView, error)
	UploadAvatarImage(dbc dbctx.Context, raw []byte) (*types.User, error)
	Welcome(dbc dbctx.Context) (string, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	profileRepo   repos.ProfileRepo
	avatarService AvatarService
	notifier      SocialNotifier
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, profileRepo repos.ProfileRepo, avatarService AvatarService, notifier SocialNotifier) UserService {
	return &userService{
		db:            db,
		log:           log.With("service", "UserService"),
		userRepo:      userRepo,
		profileRepo:   profileRepo,
		avatarService: avatarService,
		notifier:      notifier,
	}
}

// requireUser returns the authenticated caller from ctx.
func requireUser(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: request data not set in context", pkgerrors.ErrUnauthorized)
	}
	return id, nil
}

func (us *userService) GetMe(dbc dbctx.Context) (*MeView, error) {
	userID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	user, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, err
	}
	profile, err := us.profileRepo.GetByUserID(dbc, userID)
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, err
	}
	return &MeView{User: user, Profile: profile}, nil
}

func (us *userService) UploadAvatarImage(dbc dbctx.Context, raw []byte) (*types.User, error) {
	userID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: avatar file is empty", pkgerrors.ErrInvalidArgument)
	}
	user, err := us.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if err := us.avatarService.CreateAndUploadUserAvatarFromImage(dbc, user, raw); err != nil {
		return nil, err
	}
	if err := us.userRepo.UpdateAvatarFields(dbc, user.ID, user.AvatarBucketKey, user.AvatarURL); err != nil {
		return nil, fmt.Errorf("save avatar fields: %w", err)
	}
	us.notifier.AvatarChanged(dbc.Ctx, user)
	return user, nil
}

func (us *userService) Welcome(dbc dbctx.Context) (string, error) {
	me, err := us.GetMe(dbc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Welcome to EduVerse, %s!", displayName(me.User, me.Profile)), nil
}
