// Package advisory stores an advisor's groups of students as JSON inside
// the settings table.
package advisory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	groupsPrefix = "advisory_groups_"
	legacyPrefix = "advisory_students_"

	// DefaultGroupName names the group synthesized from a legacy student list.
	DefaultGroupName = "My Students"
	// UntitledGroupName replaces a missing or blank group name.
	UntitledGroupName = "Untitled group"
)

// GroupsKey returns the settings key of the advisor's group list.
func GroupsKey(advisorID int64) string {
	return fmt.Sprintf("%s%d", groupsPrefix, advisorID)
}

// LegacyKey returns the settings key of the advisor's flattened student
// list.
func LegacyKey(advisorID int64) string {
	return fmt.Sprintf("%s%d", legacyPrefix, advisorID)
}

// Group is a named set of students.
type Group struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StudentIDs []string  `json:"studentIds"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// HasStudent reports whether id is in the group.
func (g Group) HasStudent(id string) bool {
	for _, s := range g.StudentIDs {
		if s == id {
			return true
		}
	}
	return false
}

// decoder backfills the fields a stored group may be missing.
type decoder struct {
	now   time.Time
	newID func() string
}

// decodeGroups parses a stored group list. Entries that are not objects
// are skipped; every other entry is coerced into a valid Group.
func (d decoder) decodeGroups(raw string) ([]Group, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode advisory groups: %w", err)
	}

	groups := make([]Group, 0, len(items))
	for _, item := range items {
		var fields map[string]interface{}
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		groups = append(groups, d.coerce(fields))
	}
	return groups, nil
}

func (d decoder) coerce(fields map[string]interface{}) Group {
	g := Group{
		ID:        stringField(fields, "id"),
		Name:      stringField(fields, "name"),
		CreatedAt: timeField(fields, "createdAt"),
		UpdatedAt: timeField(fields, "updatedAt"),
	}
	if g.ID == "" {
		g.ID = d.newID()
	}
	if g.Name == "" {
		g.Name = UntitledGroupName
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = d.now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = g.CreatedAt
	}
	if ids, ok := fields["studentIds"].([]interface{}); ok {
		g.StudentIDs = uniqueStrings(ids)
	} else {
		g.StudentIDs = []string{}
	}
	return g
}

// decodeLegacy parses a flattened student list, dropping non-string
// entries.
func decodeLegacy(raw string) ([]string, error) {
	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode legacy advisory students: %w", err)
	}
	return uniqueStrings(items), nil
}

// Flatten returns the unique student ids of groups in first-seen order.
func Flatten(groups []Group) []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, g := range groups {
		for _, id := range g.StudentIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

func stringField(fields map[string]interface{}, name string) string {
	s, _ := fields[name].(string)
	return strings.TrimSpace(s)
}

func timeField(fields map[string]interface{}, name string) time.Time {
	s, ok := fields[name].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func uniqueStrings(items []interface{}) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
