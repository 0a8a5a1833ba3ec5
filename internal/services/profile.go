package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/data/repos"
	reposocial "github.com/yungbote/eduverse-backend/internal/data/repos/social"
	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/domain/social"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
	"github.com/yungbote/eduverse-backend/internal/platform/validation"
)

type RecordKind string

const (
	RecordExperience     RecordKind = "experience"
	RecordEducation      RecordKind = "education"
	RecordCertifications RecordKind = "certifications"
	RecordProjects       RecordKind = "projects"
	RecordSkills         RecordKind = "skills"
)

func ParseRecordKind(s string) (RecordKind, bool) {
	switch k := RecordKind(strings.ToLower(strings.TrimSpace(s))); k {
	case RecordExperience, RecordEducation, RecordCertifications, RecordProjects, RecordSkills:
		return k, true
	}
	return "", false
}

// ProfileView is the owner's profile plus follow and post counts.
type ProfileView struct {
	*types.Profile
	ProfileImage   string `json:"profile_image"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	PostsCount     int64  `json:"posts_count"`
}

type ProfileService interface {
	GetMyProfile(dbc dbctx.Context) (*ProfileView, error)
	// UpdateMyProfile applies a partial JSON object to the caller's profile.
	UpdateMyProfile(dbc dbctx.Context, patch []byte) (*ProfileView, error)
	ListRecords(dbc dbctx.Context, kind RecordKind) (any, error)
	// ReplaceRecords swaps the whole list for a JSON array of records.
	ReplaceRecords(dbc dbctx.Context, kind RecordKind, body []byte) (any, error)
}

type profileService struct {
	db                *gorm.DB
	log               *logger.Logger
	userRepo          repos.UserRepo
	profileRepo       repos.ProfileRepo
	followRepo        repos.FollowRepo
	postRepo          repos.PostRepo
	experienceRepo    repos.ExperienceRepo
	educationRepo     repos.EducationRepo
	certificationRepo repos.CertificationRepo
	projectRepo       repos.ProfileProjectRepo
	skillRepo         repos.ProfileSkillRepo
}

// ProfileRecordRepos groups the per-kind record list repos.
type ProfileRecordRepos struct {
	Experience    repos.ExperienceRepo
	Education     repos.EducationRepo
	Certification repos.CertificationRepo
	Project       repos.ProfileProjectRepo
	Skill         repos.ProfileSkillRepo
}

func NewProfileService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	profileRepo repos.ProfileRepo,
	followRepo repos.FollowRepo,
	postRepo repos.PostRepo,
	records ProfileRecordRepos,
) ProfileService {
	return &profileService{
		db:                db,
		log:               log.With("service", "ProfileService"),
		userRepo:          userRepo,
		profileRepo:       profileRepo,
		followRepo:        followRepo,
		postRepo:          postRepo,
		experienceRepo:    records.Experience,
		educationRepo:     records.Education,
		certificationRepo: records.Certification,
		projectRepo:       records.Project,
		skillRepo:         records.Skill,
	}
}

func (ps *profileService) myProfile(dbc dbctx.Context) (*types.User, *types.Profile, error) {
	userID, err := requireUser(dbc.Ctx)
	if err != nil {
		return nil, nil, err
	}
	user, err := ps.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, nil, err
	}
	profile, err := ps.profileRepo.GetByUserID(dbc, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

func (ps *profileService) GetMyProfile(dbc dbctx.Context) (*ProfileView, error) {
	user, profile, err := ps.myProfile(dbc)
	if err != nil {
		return nil, err
	}
	return ps.view(dbc, user, profile)
}

func (ps *profileService) view(dbc dbctx.Context, user *types.User, profile *types.Profile) (*ProfileView, error) {
	followers, err := ps.followRepo.CountFollowers(dbc, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := ps.followRepo.CountFollowing(dbc, user.ID)
	if err != nil {
		return nil, err
	}
	posts, err := ps.postRepo.CountByAuthor(dbc, user.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		Profile:        profile,
		ProfileImage:   user.AvatarURL,
		FollowersCount: followers,
		FollowingCount: following,
		PostsCount:     posts,
	}, nil
}

var readOnlyProfileFields = []string{"skills", "is_verified", "account_status"}

func (ps *profileService) UpdateMyProfile(dbc dbctx.Context, patch []byte) (*ProfileView, error) {
	user, profile, err := ps.myProfile(dbc)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(patch))
	if err := dec.Decode(&fields); err != nil {
		return nil, apierr.BadRequest("invalid_json", "Request body must be a JSON object")
	}
	for _, key := range readOnlyProfileFields {
		if _, ok := fields[key]; ok {
			return nil, apierr.BadRequest("read_only_field", fmt.Sprintf("%s cannot be edited", key))
		}
	}

	updates := map[string]any{}
	for _, key := range []string{"display_name", "bio", "website", "location"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, apierr.BadRequest("validation_error", fmt.Sprintf("%s must be a string", key))
		}
		v = strings.TrimSpace(v)
		switch key {
		case "website":
			if err := validation.Var("website", v, "omitempty,url,max=200"); err != nil {
				return nil, err
			}
		case "display_name", "location":
			if err := validation.Var(key, v, "max=100"); err != nil {
				return nil, err
			}
		case "bio":
			if err := validation.Var(key, v, "max=500"); err != nil {
				return nil, err
			}
		}
		updates[key] = v
	}
	if raw, ok := fields["highlights"]; ok {
		var hl []string
		if err := json.Unmarshal(raw, &hl); err != nil {
			return nil, apierr.BadRequest("validation_error", "highlights must be a list of strings")
		}
		clean := make([]string, 0, len(hl))
		for _, h := range hl {
			if h = strings.TrimSpace(h); h != "" {
				clean = append(clean, h)
			}
		}
		updates["highlights"] = datatypes.NewJSONSlice(clean)
	}
	if raw, ok := fields["is_private"]; ok {
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, apierr.BadRequest("validation_error", "is_private must be a boolean")
		}
		updates["is_private"] = v
	}
	if raw, ok := fields["notification_settings"]; ok {
		// Partial objects merge into the stored settings.
		ns := profile.NotificationSettings.Data()
		if err := json.Unmarshal(raw, &ns); err != nil {
			return nil, apierr.BadRequest("validation_error", "notification_settings must be an object of booleans")
		}
		updates["notification_settings"] = datatypes.NewJSONType(ns)
	}
	if raw, ok := fields["privacy_settings"]; ok {
		pv := profile.PrivacySettings.Data()
		if err := json.Unmarshal(raw, &pv); err != nil {
			return nil, apierr.BadRequest("validation_error", "privacy_settings must be an object")
		}
		for name, v := range map[string]string{
			"profile_visibility":   pv.ProfileVisibility,
			"posts_visibility":     pv.PostsVisibility,
			"followers_visibility": pv.FollowersVisibility,
			"following_visibility": pv.FollowingVisibility,
		} {
			if !social.ValidVisibility(v) {
				return nil, apierr.BadRequest("validation_error", fmt.Sprintf("%s must be one of public, connections, private", name))
			}
		}
		updates["privacy_settings"] = datatypes.NewJSONType(pv)
	}

	if err := ps.profileRepo.Update(dbc, profile.ID, updates); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	profile, err = ps.profileRepo.GetByUserID(dbc, user.ID)
	if err != nil {
		return nil, err
	}
	return ps.view(dbc, user, profile)
}

func (ps *profileService) ListRecords(dbc dbctx.Context, kind RecordKind) (any, error) {
	_, profile, err := ps.myProfile(dbc)
	if err != nil {
		return nil, err
	}
	switch kind {
	case RecordExperience:
		return ps.experienceRepo.List(dbc, profile.ID)
	case RecordEducation:
		return ps.educationRepo.List(dbc, profile.ID)
	case RecordCertifications:
		return ps.certificationRepo.List(dbc, profile.ID)
	case RecordProjects:
		return ps.projectRepo.List(dbc, profile.ID)
	case RecordSkills:
		return ps.skillRepo.List(dbc, profile.ID)
	}
	return nil, fmt.Errorf("%w: unknown record kind %q", pkgerrors.ErrNotFound, kind)
}

func (ps *profileService) ReplaceRecords(dbc dbctx.Context, kind RecordKind, body []byte) (any, error) {
	_, profile, err := ps.myProfile(dbc)
	if err != nil {
		return nil, err
	}
	switch kind {
	case RecordExperience:
		return replaceRecords(ps.db, dbc, ps.experienceRepo, profile.ID, body, nil)
	case RecordEducation:
		return replaceRecords(ps.db, dbc, ps.educationRepo, profile.ID, body, nil)
	case RecordCertifications:
		return replaceRecords(ps.db, dbc, ps.certificationRepo, profile.ID, body, nil)
	case RecordProjects:
		return replaceRecords(ps.db, dbc, ps.projectRepo, profile.ID, body, nil)
	case RecordSkills:
		return replaceRecords(ps.db, dbc, ps.skillRepo, profile.ID, body, func(txc dbctx.Context, rows []*types.ProfileSkill) error {
			names := make([]string, 0, len(rows))
			for _, r := range rows {
				names = append(names, r.SkillName)
			}
			return ps.profileRepo.UpdateSkills(txc, profile.ID, names)
		})
	}
	return nil, fmt.Errorf("%w: unknown record kind %q", pkgerrors.ErrNotFound, kind)
}

type profileRecord interface {
	Place(profileID uuid.UUID, pos int)
	Span() (*string, *string)
	Tidy()
}

type recordRow[T any] interface {
	*T
	profileRecord
}

func replaceRecords[T reposocial.Record, PT recordRow[T]](
	db *gorm.DB,
	dbc dbctx.Context,
	repo reposocial.RecordRepo[T],
	profileID uuid.UUID,
	body []byte,
	after func(txc dbctx.Context, rows []*T) error,
) ([]*T, error) {
	var rows []*T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, apierr.BadRequest("invalid_json", "Request body must be a JSON array")
	}
	for i, row := range rows {
		if row == nil {
			return nil, apierr.BadRequest("validation_error", fmt.Sprintf("item %d is empty", i))
		}
		pt := PT(row)
		pt.Tidy()
		if err := validation.Struct(row); err != nil {
			return nil, err
		}
		if err := checkSpan(pt.Span()); err != nil {
			return nil, err
		}
		pt.Place(profileID, i)
	}

	var out []*T
	err := db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: dbc.Ctx, Tx: tx}
		stored, err := repo.Replace(txc, profileID, rows)
		if err != nil {
			return err
		}
		if after != nil {
			if err := after(txc, stored); err != nil {
				return err
			}
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replace records: %w", err)
	}
	return out, nil
}

// checkSpan rejects an end date earlier than the start date. Dates are
// already validated as YYYY-MM-DD, which sorts lexically.
func checkSpan(start, end *string) error {
	if start == nil || end == nil || *start == "" || *end == "" {
		return nil
	}
	if *end >= *start {
		return nil
	}
	return apierr.BadRequest("validation_error", "End date cannot be before start date")
}
