package ids

import "github.com/google/uuid"

// Assign sets *id to a fresh UUID when it is still zero.
// Models call it from BeforeCreate so inserts work on both Postgres and SQLite.
func Assign(id *uuid.UUID) {
	if id != nil && *id == uuid.Nil {
		*id = uuid.New()
	}
}
