package database

import (
	"database/sql"
	"time"
)

// Friend represents one entry in the friends directory. The photo URL is a
// relative path under the media directory, produced by the image processor
// when the record is created. Records are read-only after creation except
// for full deletion.
type Friend struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Name                  string         `db:"name"`
	Profession            string         `db:"profession"`
	ProfessionDescription sql.NullString `db:"profession_description"`
	PhotoURL              string         `db:"photo_url"`
}
