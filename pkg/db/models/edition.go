package models

import (
	"database/sql"
	"time"
)

// Opportunity represents an opportunity such as a competition or a program.
type Opportunity struct {
	ID             int64         `db:"id"`
	OrganizationID sql.NullInt64 `db:"organization_id"`
	Title          string        `db:"title"`
	Description    string        `db:"description"`
	Category       string        `db:"category"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// Edition represents a time-bound run of an opportunity.
type Edition struct {
	ID              int64        `db:"id"`
	OpportunityID   int64        `db:"opportunity_id"`
	Name            string       `db:"name"`
	StartsAt        sql.NullTime `db:"starts_at"`
	EndsAt          sql.NullTime `db:"ends_at"`
	SavesCount      int64        `db:"saves_count"`
	FollowsCount    int64        `db:"follows_count"`
	Clicks30d       int64        `db:"clicks_30d"`
	PopularityScore int64        `db:"popularity_score"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       time.Time    `db:"updated_at"`
}
