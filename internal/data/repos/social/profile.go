package social

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

type ProfileRepo interface {
	Create(dbc dbctx.Context, profiles []*types.Profile) ([]*types.Profile, error)
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.Profile, error)
	Update(dbc dbctx.Context, profileID uuid.UUID, updates map[string]any) error
	UpdateSkills(dbc dbctx.Context, profileID uuid.UUID, skills []string) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (pr *profileRepo) Create(dbc dbctx.Context, profiles []*types.Profile) ([]*types.Profile, error) {
	if len(profiles) == 0 {
		return []*types.Profile{}, nil
	}
	if err := dbc.Conn(pr.db).Create(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (pr *profileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	var p types.Profile
	if err := dbc.Conn(pr.db).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile for user %s: %w", userID, pkgerrors.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (pr *profileRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.Profile, error) {
	var results []*types.Profile
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Conn(pr.db).Where("user_id IN ?", userIDs).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) Update(dbc dbctx.Context, profileID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.Conn(pr.db).
		Model(&types.Profile{}).
		Where("id = ?", profileID).
		Updates(updates).Error
}

func (pr *profileRepo) UpdateSkills(dbc dbctx.Context, profileID uuid.UUID, skills []string) error {
	if skills == nil {
		skills = []string{}
	}
	return dbc.Conn(pr.db).
		Model(&types.Profile{}).
		Where("id = ?", profileID).
		Update("skills", datatypes.NewJSONSlice(skills)).Error
}
