package models

import (
	"database/sql"
	"time"
)

// User represents a user.
type User struct {
	ID        int64         `db:"id"`
	Email     string        `db:"email"`
	Name      string        `db:"name"`
	Role      string        `db:"role"`
	SchoolID  sql.NullInt64 `db:"school_id"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// School represents a school.
type School struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
