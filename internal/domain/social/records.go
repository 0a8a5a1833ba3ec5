package social

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/domain/ids"
)

// Dates on records are calendar dates stored as YYYY-MM-DD strings.
const DateLayout = "2006-01-02"

type Experience struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	Position    int       `gorm:"not null;default:0;column:position" json:"-"`
	Company     string    `gorm:"not null;column:company" json:"company" validate:"required,max=255"`
	Role        string    `gorm:"not null;column:role" json:"position" validate:"required,max=255"`
	StartDate   string    `gorm:"not null;column:start_date" json:"start_date" validate:"required,date"`
	EndDate     *string   `gorm:"column:end_date" json:"end_date,omitempty" validate:"omitempty,date"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Experience) TableName() string { return "profile_experience" }

func (r *Experience) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

type Education struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID    uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	Position     int       `gorm:"not null;default:0;column:position" json:"-"`
	Institution  string    `gorm:"not null;column:institution" json:"institution" validate:"required,max=255"`
	Degree       string    `gorm:"not null;column:degree" json:"degree" validate:"required,max=255"`
	FieldOfStudy string    `gorm:"column:field_of_study" json:"field_of_study" validate:"max=255"`
	StartDate    string    `gorm:"not null;column:start_date" json:"start_date" validate:"required,date"`
	EndDate      *string   `gorm:"column:end_date" json:"end_date,omitempty" validate:"omitempty,date"`
	Grade        string    `gorm:"column:grade" json:"grade" validate:"max=50"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Education) TableName() string { return "profile_education" }

func (r *Education) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

type Certification struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID      uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	Position       int       `gorm:"not null;default:0;column:position" json:"-"`
	Name           string    `gorm:"not null;column:name" json:"name" validate:"required,max=255"`
	Organization   string    `gorm:"not null;column:organization" json:"organization" validate:"required,max=255"`
	IssueDate      string    `gorm:"not null;column:issue_date" json:"issue_date" validate:"required,date"`
	ExpirationDate *string   `gorm:"column:expiration_date" json:"expiration_date,omitempty" validate:"omitempty,date"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Certification) TableName() string { return "profile_certification" }

func (r *Certification) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

type ProfileProject struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	Position    int       `gorm:"not null;default:0;column:position" json:"-"`
	Title       string    `gorm:"not null;column:title" json:"title" validate:"required,max=255"`
	Description string    `gorm:"column:description" json:"description"`
	StartDate   *string   `gorm:"column:start_date" json:"start_date,omitempty" validate:"omitempty,date"`
	EndDate     *string   `gorm:"column:end_date" json:"end_date,omitempty" validate:"omitempty,date"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ProfileProject) TableName() string { return "profile_project" }

func (r *ProfileProject) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

type ProfileSkill struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;index" json:"profile_id"`
	Position  int       `gorm:"not null;default:0;column:position" json:"-"`
	SkillName string    `gorm:"not null;column:skill_name" json:"skill_name" validate:"required,max=100"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ProfileSkill) TableName() string { return "profile_skill" }

func (r *ProfileSkill) BeforeCreate(*gorm.DB) error {
	ids.Assign(&r.ID)
	return nil
}

// Place sets the owner and list position before a list is stored.
func (r *Experience) Place(profileID uuid.UUID, pos int)     { r.ProfileID, r.Position = profileID, pos }
func (r *Education) Place(profileID uuid.UUID, pos int)      { r.ProfileID, r.Position = profileID, pos }
func (r *Certification) Place(profileID uuid.UUID, pos int)  { r.ProfileID, r.Position = profileID, pos }
func (r *ProfileProject) Place(profileID uuid.UUID, pos int) { r.ProfileID, r.Position = profileID, pos }
func (r *ProfileSkill) Place(profileID uuid.UUID, pos int)   { r.ProfileID, r.Position = profileID, pos }

// Span returns the record's date range. Either end may be nil.
func (r *Experience) Span() (*string, *string)     { return &r.StartDate, r.EndDate }
func (r *Education) Span() (*string, *string)      { return &r.StartDate, r.EndDate }
func (r *Certification) Span() (*string, *string)  { return &r.IssueDate, r.ExpirationDate }
func (r *ProfileProject) Span() (*string, *string) { return r.StartDate, r.EndDate }
func (r *ProfileSkill) Span() (*string, *string)   { return nil, nil }

// Tidy trims text fields and turns blank optional dates into nil.
func (r *Experience) Tidy() {
	r.Company, r.Role, r.Description = strings.TrimSpace(r.Company), strings.TrimSpace(r.Role), strings.TrimSpace(r.Description)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = optionalDate(r.EndDate)
}

func (r *Education) Tidy() {
	r.Institution, r.Degree = strings.TrimSpace(r.Institution), strings.TrimSpace(r.Degree)
	r.FieldOfStudy, r.Grade = strings.TrimSpace(r.FieldOfStudy), strings.TrimSpace(r.Grade)
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = optionalDate(r.EndDate)
}

func (r *Certification) Tidy() {
	r.Name, r.Organization = strings.TrimSpace(r.Name), strings.TrimSpace(r.Organization)
	r.IssueDate = strings.TrimSpace(r.IssueDate)
	r.ExpirationDate = optionalDate(r.ExpirationDate)
}

func (r *ProfileProject) Tidy() {
	r.Title, r.Description = strings.TrimSpace(r.Title), strings.TrimSpace(r.Description)
	r.StartDate = optionalDate(r.StartDate)
	r.EndDate = optionalDate(r.EndDate)
}

func (r *ProfileSkill) Tidy() { r.SkillName = strings.TrimSpace(r.SkillName) }

func optionalDate(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
