package models

import (
	"database/sql"
	"time"
)

// Organization represents an organization offering opportunities.
type Organization struct {
	ID          int64         `db:"id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	Website     string        `db:"website"`
	Status      string        `db:"status"`
	RequestedBy sql.NullInt64 `db:"requested_by"`
	ReviewedBy  sql.NullInt64 `db:"reviewed_by"`
	ReviewedAt  sql.NullTime  `db:"reviewed_at"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}
