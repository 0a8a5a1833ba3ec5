package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/eduverse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/domain/social"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
)

func TestProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProfileRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "profile@example.com")

	p, err := repo.GetByUserID(dbc, u.ID)
	require.NoError(t, err)
	require.Equal(t, "profile", p.Username)
	require.Equal(t, social.DefaultNotificationSettings(), p.NotificationSettings.Data())
	require.Equal(t, social.DefaultPrivacySettings(), p.PrivacySettings.Data())
	require.Equal(t, social.AccountStatusActive, p.AccountStatus)

	_, err = repo.GetByUserID(dbc, uuid.New())
	require.True(t, errors.Is(err, pkgerrors.ErrNotFound), "expected ErrNotFound, got %v", err)

	require.NoError(t, repo.Update(dbc, p.ID, map[string]any{"bio": "hello", "is_private": true}))
	require.NoError(t, repo.UpdateSkills(dbc, p.ID, []string{"go", "sql"}))

	p, err = repo.GetByUserID(dbc, u.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", p.Bio)
	require.True(t, p.IsPrivate)
	require.Equal(t, []string{"go", "sql"}, []string(p.Skills))

	list, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestFollowRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewFollowRepo(db, testutil.Logger(t))

	a := testutil.SeedUser(t, ctx, tx, "a@example.com")
	b := testutil.SeedUser(t, ctx, tx, "b@example.com")
	c := testutil.SeedUser(t, ctx, tx, "c@example.com")

	require.NoError(t, repo.Create(dbc, &types.Follow{FollowerID: b.ID, FollowingID: a.ID, CreatedAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, repo.Create(dbc, &types.Follow{FollowerID: c.ID, FollowingID: a.ID}))
	require.NoError(t, repo.Create(dbc, &types.Follow{FollowerID: a.ID, FollowingID: c.ID}))

	exists, err := repo.Exists(dbc, b.ID, a.ID)
	require.NoError(t, err)
	require.True(t, exists)

	followers, err := repo.CountFollowers(dbc, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, followers)
	following, err := repo.CountFollowing(dbc, a.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, following)

	list, err := repo.ListFollowers(dbc, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, c.ID, list[0].ID, "newest follow first")
	require.Equal(t, b.ID, list[1].ID)

	list, err = repo.ListFollowing(dbc, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, c.ID, list[0].ID)

	removed, err := repo.Delete(dbc, b.ID, a.ID)
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = repo.Delete(dbc, b.ID, a.ID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestRecordRepoReplace(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewRecordRepo[types.ProfileSkill](db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "records@example.com")
	p, err := NewProfileRepo(db, testutil.Logger(t)).GetByUserID(dbc, u.ID)
	require.NoError(t, err)

	_, err = repo.Replace(dbc, p.ID, []*types.ProfileSkill{
		{ProfileID: p.ID, Position: 1, SkillName: "second"},
		{ProfileID: p.ID, Position: 0, SkillName: "first"},
	})
	require.NoError(t, err)

	got, err := repo.List(dbc, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].SkillName)
	require.Equal(t, "second", got[1].SkillName)

	_, err = repo.Replace(dbc, p.ID, []*types.ProfileSkill{{ProfileID: p.ID, SkillName: "only"}})
	require.NoError(t, err)
	got, err = repo.List(dbc, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "only", got[0].SkillName)

	empty, err := repo.Replace(dbc, p.ID, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}
