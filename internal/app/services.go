package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/chat/conversation"
	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/services"
)

type Services struct {
	Emitter  services.SSEEmitter
	Notifier services.SocialNotifier

	Avatar      services.AvatarService
	Auth        services.AuthService
	User        services.UserService
	Profile     services.ProfileService
	Follow      services.FollowService
	Post        services.PostService
	Interaction services.InteractionService
	Search      services.SearchService
	Resources   services.ResourceService
	Edura       services.EduraService

	Curriculum    *curriculum.Store
	Conversations *conversation.Store
	TokenCleanup  *services.TokenCleanupWorker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	emitter := &services.BusEmitter{Bus: clients.Bus, Log: log.With("component", "SSEEmitter")}
	notifier := services.NewSocialNotifier(emitter)

	avatarService, err := services.NewAvatarService(log, clients.Bucket, services.AvatarConfig{
		FontPath: cfg.AvatarFont,
		Colors:   cfg.AvatarColors,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	authService := services.NewAuthService(
		db,
		log,
		reposet.User,
		reposet.Profile,
		avatarService,
		reposet.UserToken,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	userService := services.NewUserService(db, log, reposet.User, reposet.Profile, avatarService, notifier)
	profileService := services.NewProfileService(db, log, reposet.User, reposet.Profile, reposet.Follow, reposet.Post, services.ProfileRecordRepos{
		Experience:    reposet.Experience,
		Education:     reposet.Education,
		Certification: reposet.Certification,
		Project:       reposet.ProfileProject,
		Skill:         reposet.ProfileSkill,
	})
	followService := services.NewFollowService(db, log, reposet.User, reposet.Profile, reposet.Follow, reposet.Post, notifier)

	postRepos := services.PostRepos{
		Post:     reposet.Post,
		Comment:  reposet.Comment,
		Like:     reposet.Like,
		Save:     reposet.Save,
		Favorite: reposet.Favorite,
		Share:    reposet.Share,
		Report:   reposet.Report,
	}
	postService := services.NewPostService(db, log, reposet.User, reposet.Profile, postRepos, clients.Bucket)
	interactionService := services.NewInteractionService(db, log, reposet.User, postRepos, notifier)
	searchService := services.NewSearchService(db, log, reposet.User, reposet.Profile, reposet.Post, postService)

	resourceService, err := services.NewResourceService(log)
	if err != nil {
		return Services{}, err
	}

	projects, err := curriculum.Open(cfg.CurriculumDir, log)
	if err != nil {
		return Services{}, fmt.Errorf("load curriculum: %w", err)
	}
	conversations, err := conversation.NewStore(cfg.ConversationsDir, log, projects)
	if err != nil {
		return Services{}, fmt.Errorf("open conversation store: %w", err)
	}
	eduraService := services.NewEduraService(log, services.EduraConfig{
		MaxConversations: cfg.EduraMaxConversations,
		MaxHistory:       cfg.EduraMaxHistory,
		RatePerMinute:    cfg.EduraRatePerMinute,
	}, projects, conversations, clients.LLM, reposet.Profile)

	return Services{
		Emitter:  emitter,
		Notifier: notifier,

		Avatar:      avatarService,
		Auth:        authService,
		User:        userService,
		Profile:     profileService,
		Follow:      followService,
		Post:        postService,
		Interaction: interactionService,
		Search:      searchService,
		Resources:   resourceService,
		Edura:       eduraService,

		Curriculum:    projects,
		Conversations: conversations,
		TokenCleanup:  services.NewTokenCleanupWorker(log, authService, cfg.TokenCleanupInterval),
	}, nil
}
