// Package access defines user roles and the capabilities they grant.
package access

import (
	"encoding"
	"errors"
	"strings"
)

// Role is the role of an account.
type Role int

const (
	// Anonymous is an unauthenticated caller.
	Anonymous Role = iota

	// Student logs activities and volunteer hours.
	Student

	// Advisor is a counselor who verifies activities and follows a group of
	// students.
	Advisor

	// Organization is an account managing an organization's opportunities.
	Organization

	// Admin can do everything.
	Admin
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case Anonymous:
		return "anonymous"
	case Student:
		return "student"
	case Advisor:
		return "advisor"
	case Organization:
		return "organization"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseRole parses a role string. "counselor" is accepted as an alias of
// advisor.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anonymous":
		return Anonymous
	case "student":
		return Student
	case "advisor", "counselor":
		return Advisor
	case "organization":
		return Organization
	case "admin":
		return Admin
	default:
		return Role(-1)
	}
}

// Capability is an action guarded by role.
type Capability int

const (
	// LogActivities allows managing one's own activities, volunteer hours
	// and goals.
	LogActivities Capability = iota
	// VerifyActivities allows approving or rejecting activities.
	VerifyActivities
	// ManageAdvisoryGroups allows editing one's advisory groups.
	ManageAdvisoryGroups
	// ViewAnalytics allows reading engagement statistics.
	ViewAnalytics
	// ManageOpportunities allows creating opportunities and editions.
	ManageOpportunities
	// ManageOrganizations allows approving organizations.
	ManageOrganizations
	// ManageSettings allows raw settings access.
	ManageSettings
)

var capabilityNames = map[Capability]string{
	LogActivities:        "log-activities",
	VerifyActivities:     "verify-activities",
	ManageAdvisoryGroups: "manage-advisory-groups",
	ViewAnalytics:        "view-analytics",
	ManageOpportunities:  "manage-opportunities",
	ManageOrganizations:  "manage-organizations",
	ManageSettings:       "manage-settings",
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	if s, ok := capabilityNames[c]; ok {
		return s
	}
	return "unknown"
}

var grants = map[Role][]Capability{
	Student:      {LogActivities},
	Advisor:      {VerifyActivities, ManageAdvisoryGroups, ViewAnalytics},
	Organization: {ManageOpportunities},
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	if r == Admin {
		return true
	}
	for _, g := range grants[r] {
		if g == c {
			return true
		}
	}
	return false
}

var (
	_ encoding.TextMarshaler   = Role(0)
	_ encoding.TextUnmarshaler = (*Role)(nil)
)

// ErrInvalidRole is returned when an invalid role is provided.
var ErrInvalidRole = errors.New("invalid role")

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	l := ParseRole(string(text))
	if l < 0 {
		return ErrInvalidRole
	}

	*r = l

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() (text []byte, err error) {
	return []byte(r.String()), nil
}
