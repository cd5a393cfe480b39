package models

import (
	"database/sql"
	"time"
)

// Activity represents an extracurricular activity logged by a student.
type Activity struct {
	ID          int64         `db:"id"`
	UserID      int64         `db:"user_id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Category    string        `db:"category"`
	Hours       float64       `db:"hours"`
	Status      string        `db:"status"`
	VerifiedBy  sql.NullInt64 `db:"verified_by"`
	VerifiedAt  sql.NullTime  `db:"verified_at"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

// Participation represents volunteer hours logged by a student.
type Participation struct {
	ID             int64         `db:"id"`
	UserID         int64         `db:"user_id"`
	OrganizationID sql.NullInt64 `db:"organization_id"`
	Description    string        `db:"description"`
	Hours          float64       `db:"hours"`
	OccurredAt     time.Time     `db:"occurred_at"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// Goal represents a volunteer hours goal.
type Goal struct {
	ID          int64        `db:"id"`
	UserID      int64        `db:"user_id"`
	TargetHours float64      `db:"target_hours"`
	Deadline    sql.NullTime `db:"deadline"`
	CompletedAt sql.NullTime `db:"completed_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}
