package services

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/repos"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

const searchLimit = 50

type SearchQuery struct {
	Query      string
	Name       string
	Skills     string
	PostAuthor string
	PostType   string
}

// SearchResult leaves out a section entirely when the query targets only the other one.
type SearchResult struct {
	Users *[]UserSummary `json:"users,omitempty"`
	Posts *[]PostView    `json:"posts,omitempty"`
}

type SearchService interface {
	Search(dbc dbctx.Context, q SearchQuery) (*SearchResult, error)
}

type searchService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	profileRepo repos.ProfileRepo
	postRepo    repos.PostRepo
	postService PostService
}

func NewSearchService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, profileRepo repos.ProfileRepo, postRepo repos.PostRepo, postService PostService) SearchService {
	return &searchService{
		db:          db,
		log:         log.With("service", "SearchService"),
		userRepo:    userRepo,
		profileRepo: profileRepo,
		postRepo:    postRepo,
		postService: postService,
	}
}

func (ss *searchService) Search(dbc dbctx.Context, q SearchQuery) (*SearchResult, error) {
	viewerID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	q.Query = strings.TrimSpace(q.Query)
	q.Name = strings.TrimSpace(q.Name)
	q.Skills = strings.TrimSpace(q.Skills)
	q.PostAuthor = strings.TrimSpace(q.PostAuthor)
	q.PostType = strings.TrimSpace(q.PostType)

	wantUsers := q.Name != "" || (q.PostAuthor == "" && q.PostType == "")
	wantPosts := q.Name == ""

	var (
		users []UserSummary
		posts []PostView
	)
	g, gctx := errgroup.WithContext(dbc.Ctx)
	read := dbctx.New(gctx)
	if wantUsers {
		g.Go(func() error {
			found, err := ss.userRepo.Search(read, repos.UserSearch{
				Query:  q.Query,
				Name:   q.Name,
				Skills: q.Skills,
				Limit:  searchLimit,
			})
			if err != nil {
				return fmt.Errorf("search users: %w", err)
			}
			users, err = summarizeUsers(read, ss.profileRepo, found)
			return err
		})
	}
	if wantPosts {
		g.Go(func() error {
			found, _, err := ss.postRepo.List(read, repos.PostQuery{
				ViewerID:       viewerID,
				AuthorContains: q.PostAuthor,
				PostType:       q.PostType,
				Text:           q.Query,
				Limit:          searchLimit,
			})
			if err != nil {
				return fmt.Errorf("search posts: %w", err)
			}
			posts, err = ss.postService.Views(read, viewerID, found)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &SearchResult{}
	if wantUsers {
		out.Users = &users
	}
	if wantPosts {
		out.Posts = &posts
	}
	return out, nil
}
