package proto

import "time"

// Activity statuses.
const (
	ActivityPending  = "pending"
	ActivityVerified = "verified"
	ActivityRejected = "rejected"
)

// Activity is an extracurricular activity logged by a student.
type Activity struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Hours       float64    `json:"hours"`
	Status      string     `json:"status"`
	VerifiedBy  int64      `json:"verifiedBy,omitempty"`
	VerifiedAt  *time.Time `json:"verifiedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Participation is a block of logged volunteer hours.
type Participation struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	OrganizationID int64     `json:"organizationId,omitempty"`
	Description    string    `json:"description"`
	Hours          float64   `json:"hours"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Goal is a volunteer hours goal and its progress.
type Goal struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	TargetHours float64    `json:"targetHours"`
	LoggedHours float64    `json:"loggedHours"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Organization statuses.
const (
	OrganizationPending  = "pending"
	OrganizationApproved = "approved"
	OrganizationRejected = "rejected"
)

// Organization is an organization offering opportunities.
type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Website     string    `json:"website"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
