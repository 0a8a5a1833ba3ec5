package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/eduverse-backend/internal/data/repos/testutil"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{
		{
			Username:  "userrepo",
			Email:     "userrepo@example.com",
			Password:  "pw",
			FirstName: "Ada",
			LastName:  "Lovelace",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: expected 1 user with id, got %+v", created)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByEmails, err := repo.GetByEmails(dbc, []string{created[0].Email})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].Email != created[0].Email {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	byName, err := repo.GetByUsername(dbc, "  UserRepo ")
	if err != nil || byName.ID != created[0].ID {
		t.Fatalf("GetByUsername: err=%v user=%+v", err, byName)
	}
	if _, err := repo.GetByUsername(dbc, "missing"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetByUsername(missing): expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(dbc, uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetByID(missing): expected ErrNotFound, got %v", err)
	}

	exists, err := repo.EmailExists(dbc, created[0].Email)
	if err != nil || !exists {
		t.Fatalf("EmailExists: err=%v exists=%v", err, exists)
	}
	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil || exists {
		t.Fatalf("EmailExists(missing): err=%v exists=%v", err, exists)
	}
	exists, err = repo.UsernameExists(dbc, "userrepo")
	if err != nil || !exists {
		t.Fatalf("UsernameExists: err=%v exists=%v", err, exists)
	}

	if err := repo.UpdateName(dbc, created[0].ID, "Grace", "Hopper"); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if err := repo.UpdateAvatarColor(dbc, created[0].ID, "#123456"); err != nil {
		t.Fatalf("UpdateAvatarColor: %v", err)
	}
	if err := repo.UpdateAvatarFields(dbc, created[0].ID, "user_avatar/x.png", "https://cdn/x.png"); err != nil {
		t.Fatalf("UpdateAvatarFields: %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	if err := repo.UpdateLastLogin(dbc, created[0].ID, now); err != nil {
		t.Fatalf("UpdateLastLogin: %v", err)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FirstName != "Grace" || got.LastName != "Hopper" {
		t.Fatalf("UpdateName: unexpected user: %+v", got)
	}
	if got.AvatarColor != "#123456" || got.AvatarBucketKey != "user_avatar/x.png" || got.AvatarURL != "https://cdn/x.png" {
		t.Fatalf("avatar fields: unexpected user: %+v", got)
	}
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(now) {
		t.Fatalf("UpdateLastLogin: got %v want %v", got.LastLoginAt, now)
	}
	if !got.IsActive {
		t.Fatalf("expected new users to be active")
	}
}

func TestUserRepoSearch(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	alice := testutil.SeedUser(t, ctx, tx, "alice@example.com")
	bob := testutil.SeedUser(t, ctx, tx, "bob@example.com")
	if err := tx.Model(&types.User{}).Where("id = ?", bob.ID).Update("first_name", "Roberto").Error; err != nil {
		t.Fatalf("rename bob: %v", err)
	}
	if err := tx.Model(&types.Profile{}).Where("user_id = ?", alice.ID).
		Update("skills", datatypes.NewJSONSlice([]string{"Go", "Postgres"})).Error; err != nil {
		t.Fatalf("set skills: %v", err)
	}

	tests := []struct {
		name string
		q    UserSearch
		want []uuid.UUID
	}{
		{name: "query username", q: UserSearch{Query: "ALI"}, want: []uuid.UUID{alice.ID}},
		{name: "query first name", q: UserSearch{Query: "robert"}, want: []uuid.UUID{bob.ID}},
		{name: "query and name both apply", q: UserSearch{Query: "alice", Name: "bob"}, want: []uuid.UUID{}},
		{name: "name narrows query", q: UserSearch{Query: "o", Name: "bob"}, want: []uuid.UUID{bob.ID}},
		{name: "wildcards are literal", q: UserSearch{Query: "%"}, want: []uuid.UUID{}},
		{name: "underscore is literal", q: UserSearch{Name: "a_ice"}, want: []uuid.UUID{}},
		{name: "skills", q: UserSearch{Skills: "go"}, want: []uuid.UUID{alice.ID}},
		{name: "no filters", q: UserSearch{}, want: []uuid.UUID{alice.ID, bob.ID}},
		{name: "limit", q: UserSearch{Limit: 1}, want: []uuid.UUID{alice.ID}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.Search(dbc, tc.q)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("Search: got %d users, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i].ID != tc.want[i] {
					t.Fatalf("Search[%d]: got %s want %s", i, got[i].Username, tc.want[i])
				}
			}
		})
	}
}
