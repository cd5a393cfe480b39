package proto

import "time"

// Opportunity is an opportunity such as a competition or a program.
type Opportunity struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationId,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Edition is a time-bound run of an opportunity and its engagement
// counters.
type Edition struct {
	ID              int64      `json:"id"`
	OpportunityID   int64      `json:"opportunityId"`
	Name            string     `json:"name"`
	StartsAt        *time.Time `json:"startsAt,omitempty"`
	EndsAt          *time.Time `json:"endsAt,omitempty"`
	SavesCount      int64      `json:"savesCount"`
	FollowsCount    int64      `json:"followsCount"`
	Clicks30d       int64      `json:"clicks30d"`
	PopularityScore int64      `json:"popularityScore"`
	CreatedAt       time.Time  `json:"createdAt"`

	// Saved and Following describe the caller's engagement.
	Saved     bool `json:"saved"`
	Following bool `json:"following"`
}

// SaveResult is the outcome of toggling a save.
type SaveResult struct {
	Saved      bool  `json:"saved"`
	SavesCount int64 `json:"savesCount"`
}

// FollowResult is the outcome of toggling a follow.
type FollowResult struct {
	Following    bool  `json:"following"`
	FollowsCount int64 `json:"followsCount"`
}

// RecomputeResult summarizes a popularity recompute.
type RecomputeResult struct {
	Success bool `json:"success"`
	Updated int  `json:"updated"`
}
