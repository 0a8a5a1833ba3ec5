package posts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/eduverse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	domainposts "github.com/yungbote/eduverse-backend/internal/domain/posts"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
)

func postIDs(ps []*types.Post) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestPostRepoVisibility(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPostRepo(db, testutil.Logger(t))

	author := testutil.SeedUser(t, ctx, tx, "author@example.com")
	follower := testutil.SeedUser(t, ctx, tx, "follower@example.com")
	stranger := testutil.SeedUser(t, ctx, tx, "stranger@example.com")
	testutil.SeedFollow(t, ctx, tx, follower.ID, author.ID)

	public := testutil.SeedPost(t, ctx, tx, author.ID, "public", domainposts.VisibilityPublic)
	conn := testutil.SeedPost(t, ctx, tx, author.ID, "connections", domainposts.VisibilityConnections)
	private := testutil.SeedPost(t, ctx, tx, author.ID, "private", domainposts.VisibilityPrivate)

	tests := []struct {
		name   string
		viewer uuid.UUID
		want   map[uuid.UUID]bool
	}{
		{name: "author sees all", viewer: author.ID, want: map[uuid.UUID]bool{public.ID: true, conn.ID: true, private.ID: true}},
		{name: "follower sees connections", viewer: follower.ID, want: map[uuid.UUID]bool{public.ID: true, conn.ID: true}},
		{name: "stranger sees public", viewer: stranger.ID, want: map[uuid.UUID]bool{public.ID: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, total, err := repo.List(dbc, PostQuery{ViewerID: tc.viewer})
			require.NoError(t, err)
			require.EqualValues(t, len(tc.want), total)
			require.Len(t, got, len(tc.want))
			for _, id := range postIDs(got) {
				require.True(t, tc.want[id], "unexpected post %s", id)
			}
			for id := range tc.want {
				_, err := repo.GetVisible(dbc, id, tc.viewer)
				require.NoError(t, err)
			}
		})
	}

	_, err := repo.GetVisible(dbc, private.ID, stranger.ID)
	require.True(t, errors.Is(err, pkgerrors.ErrNotFound), "got %v", err)
}

func TestPostRepoListOrderingAndFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewPostRepo(db, testutil.Logger(t))

	alice := testutil.SeedUser(t, ctx, tx, "alice@example.com")
	bob := testutil.SeedUser(t, ctx, tx, "bob@example.com")

	base := time.Now().Add(-time.Hour)
	mk := func(author uuid.UUID, content, postType string, offset time.Duration, pinned bool) *types.Post {
		p := &types.Post{
			AuthorID:   author,
			Title:      "t " + content,
			Content:    content,
			PostType:   postType,
			Visibility: domainposts.VisibilityPublic,
			IsPinned:   pinned,
			CreatedAt:  base.Add(offset),
			Images: []*types.PostImage{
				{URL: "u2", BucketKey: "k2", Order: 1},
				{URL: "u1", BucketKey: "k1", Order: 0},
			},
		}
		require.NoError(t, repo.Create(dbc, p))
		return p
	}
	old := mk(alice.ID, "Old golang notes", "blog", 0, false)
	pinned := mk(alice.ID, "pinned", "news", time.Minute, true)
	newest := mk(bob.ID, "fresh", "blog", 2*time.Minute, false)

	got, total, err := repo.List(dbc, PostQuery{ViewerID: alice.ID})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Equal(t, []uuid.UUID{pinned.ID, newest.ID, old.ID}, postIDs(got))
	require.Len(t, got[0].Images, 2)
	require.Equal(t, "u1", got[0].Images[0].URL)

	page, total, err := repo.List(dbc, PostQuery{ViewerID: alice.ID, Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Equal(t, []uuid.UUID{newest.ID}, postIDs(page))

	byType, _, err := repo.List(dbc, PostQuery{ViewerID: alice.ID, PostType: "blog"})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{newest.ID, old.ID}, postIDs(byType))

	byAuthor, _, err := repo.List(dbc, PostQuery{ViewerID: alice.ID, AuthorUsername: "BOB"})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{newest.ID}, postIDs(byAuthor))

	partial, _, err := repo.List(dbc, PostQuery{ViewerID: alice.ID, AuthorUsername: "BO"})
	require.NoError(t, err)
	require.Empty(t, partial, "author filter is an exact username match")

	byAuthorPart, _, err := repo.List(dbc, PostQuery{ViewerID: alice.ID, AuthorContains: "BO"})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{newest.ID}, postIDs(byAuthorPart))

	wildcard, _, err := repo.List(dbc, PostQuery{ViewerID: alice.ID, AuthorContains: "%"})
	require.NoError(t, err)
	require.Empty(t, wildcard)

	underscore, _, err := repo.List(dbc, PostQuery{ViewerID: alice.ID, Text: "fr_sh"})
	require.NoError(t, err)
	require.Empty(t, underscore)

	byText, _, err := repo.List(dbc, PostQuery{ViewerID: bob.ID, Text: "GOLANG"})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{old.ID}, postIDs(byText))

	n, err := repo.CountByAuthor(dbc, alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	require.NoError(t, repo.Update(dbc, old.ID, map[string]any{"content": "edited", "is_edited": true}))
	updated, err := repo.GetByID(dbc, old.ID)
	require.NoError(t, err)
	require.True(t, updated.IsEdited)
	require.Equal(t, "edited", updated.Content)

	require.NoError(t, repo.Delete(dbc, old.ID))
	_, err = repo.GetByID(dbc, old.ID)
	require.True(t, errors.Is(err, pkgerrors.ErrNotFound))
}

func TestInteractionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	likes := NewLikeRepo(db, testutil.Logger(t))
	comments := NewCommentRepo(db, testutil.Logger(t))

	author := testutil.SeedUser(t, ctx, tx, "author@example.com")
	fan := testutil.SeedUser(t, ctx, tx, "fan@example.com")
	p1 := testutil.SeedPost(t, ctx, tx, author.ID, "one", domainposts.VisibilityPublic)
	p2 := testutil.SeedPost(t, ctx, tx, author.ID, "two", domainposts.VisibilityPublic)

	like := &types.Like{PostID: p1.ID, UserID: fan.ID}
	require.NoError(t, likes.Create(dbc, like))
	require.NoError(t, likes.Create(dbc, &types.Like{PostID: p1.ID, UserID: author.ID}))

	exists, err := likes.Exists(dbc, p1.ID, fan.ID)
	require.NoError(t, err)
	require.True(t, exists)

	counts, err := likes.CountByPosts(dbc, []uuid.UUID{p1.ID, p2.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, counts[p1.ID])
	require.EqualValues(t, 0, counts[p2.ID])

	mine, err := likes.PostIDsForUser(dbc, fan.ID, []uuid.UUID{p1.ID, p2.ID})
	require.NoError(t, err)
	require.True(t, mine[p1.ID])
	require.False(t, mine[p2.ID])

	rows, err := likes.ListByUser(dbc, fan.ID, &p1.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got, err := likes.GetByID(dbc, like.ID)
	require.NoError(t, err)
	require.Equal(t, fan.ID, got.UserID)

	require.NoError(t, likes.Delete(dbc, like.ID))
	_, err = likes.GetByID(dbc, like.ID)
	require.True(t, errors.Is(err, pkgerrors.ErrNotFound))

	c := &types.Comment{PostID: p2.ID, UserID: fan.ID, Content: "nice"}
	require.NoError(t, comments.Create(dbc, c))
	require.NoError(t, comments.Update(dbc, c.ID, map[string]any{"content": "very nice"}))
	list, err := comments.ListByPost(dbc, p2.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "very nice", list[0].Content)

	require.NoError(t, comments.DeleteByPost(dbc, p2.ID))
	list, err = comments.ListByPost(dbc, p2.ID)
	require.NoError(t, err)
	require.Empty(t, list)

	// Last: on Postgres a failed insert aborts the surrounding transaction.
	require.NoError(t, likes.Create(dbc, &types.Like{PostID: p2.ID, UserID: fan.ID}))
	err = likes.Create(dbc, &types.Like{PostID: p2.ID, UserID: fan.ID})
	require.True(t, errors.Is(err, pkgerrors.ErrConflict), "duplicate like: %v", err)
}
