package social

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/eduverse-backend/internal/domain"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

// Record is any ordered list row owned by a profile.
type Record interface {
	types.Experience | types.Education | types.Certification | types.ProfileProject | types.ProfileSkill
}

// RecordRepo stores one kind of profile record list. Lists are replaced wholesale.
type RecordRepo[T Record] interface {
	List(dbc dbctx.Context, profileID uuid.UUID) ([]*T, error)
	Replace(dbc dbctx.Context, profileID uuid.UUID, rows []*T) ([]*T, error)
}

type recordRepo[T Record] struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo[T Record](db *gorm.DB, baseLog *logger.Logger) RecordRepo[T] {
	var zero T
	return &recordRepo[T]{db: db, log: baseLog.With("repo", fmt.Sprintf("RecordRepo[%T]", zero))}
}

func (rr *recordRepo[T]) List(dbc dbctx.Context, profileID uuid.UUID) ([]*T, error) {
	var results []*T
	if err := dbc.Conn(rr.db).
		Where("profile_id = ?", profileID).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Replace deletes the existing list and inserts rows. Callers set ProfileID and
// Position on each row and should pass a transaction.
func (rr *recordRepo[T]) Replace(dbc dbctx.Context, profileID uuid.UUID, rows []*T) ([]*T, error) {
	conn := dbc.Conn(rr.db)
	if err := conn.Where("profile_id = ?", profileID).Delete(new(T)).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*T{}, nil
	}
	if err := conn.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
