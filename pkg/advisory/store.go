package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pathwayhq/pathway/pkg/proto"
)

// Settings is the key/value storage the groups live in. Get reports
// whether the key exists.
type Settings interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// Store loads and saves advisory groups.
type Store struct {
	settings Settings
	now      func() time.Time
	newID    func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used to backfill timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator sets the group id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// NewStore returns a Store over settings.
func NewStore(settings Settings, opts ...Option) *Store {
	s := &Store{
		settings: settings,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) decoder() decoder {
	return decoder{now: s.now().UTC(), newID: s.newID}
}

// Load returns the advisor's groups. When no group list is stored, a
// legacy student list is wrapped into a single group and persisted.
func (s *Store) Load(ctx context.Context, advisorID int64) ([]Group, error) {
	logger := log.FromContext(ctx).WithPrefix("advisory")

	raw, ok, err := s.settings.Get(ctx, GroupsKey(advisorID))
	if err != nil {
		return nil, err
	}
	if ok {
		groups, err := s.decoder().decodeGroups(raw)
		if err != nil {
			logger.Warn("ignoring malformed groups", "advisor", advisorID, "err", err)
		} else if len(groups) > 0 {
			return groups, nil
		}
	}

	raw, ok, err = s.settings.Get(ctx, LegacyKey(advisorID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []Group{}, nil
	}

	ids, err := decodeLegacy(raw)
	if err != nil {
		logger.Warn("ignoring malformed legacy students", "advisor", advisorID, "err", err)
		return []Group{}, nil
	}
	if len(ids) == 0 {
		return []Group{}, nil
	}

	now := s.now().UTC()
	groups := []Group{{
		ID:         s.newID(),
		Name:       DefaultGroupName,
		StudentIDs: ids,
		CreatedAt:  now,
		UpdatedAt:  now,
	}}
	if err := s.Save(ctx, advisorID, groups); err != nil {
		return nil, fmt.Errorf("upgrade legacy students: %w", err)
	}

	logger.Info("upgraded legacy advisory students", "advisor", advisorID, "students", len(ids))
	return groups, nil
}

// Save stores the advisor's groups and keeps the flattened student list
// under the legacy key. The legacy key is removed when no student is left.
func (s *Store) Save(ctx context.Context, advisorID int64, groups []Group) error {
	if groups == nil {
		groups = []Group{}
	}
	data, err := json.Marshal(groups)
	if err != nil {
		return err //nolint:wrapcheck
	}
	if err := s.settings.Set(ctx, GroupsKey(advisorID), string(data)); err != nil {
		return err
	}

	ids := Flatten(groups)
	if len(ids) == 0 {
		return s.settings.Delete(ctx, LegacyKey(advisorID))
	}

	data, err = json.Marshal(ids)
	if err != nil {
		return err //nolint:wrapcheck
	}
	return s.settings.Set(ctx, LegacyKey(advisorID), string(data))
}

// Students returns the unique student ids across the advisor's groups.
func (s *Store) Students(ctx context.Context, advisorID int64) ([]string, error) {
	groups, err := s.Load(ctx, advisorID)
	if err != nil {
		return nil, err
	}
	return Flatten(groups), nil
}

// CreateGroup appends a new group.
func (s *Store) CreateGroup(ctx context.Context, advisorID int64, name string, studentIDs []string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, proto.NewValidationError("name", "group name is required")
	}

	groups, err := s.Load(ctx, advisorID)
	if err != nil {
		return Group{}, err
	}

	now := s.now().UTC()
	g := Group{
		ID:         s.newID(),
		Name:       name,
		StudentIDs: uniqueStrings(toInterfaces(studentIDs)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Save(ctx, advisorID, append(groups, g)); err != nil {
		return Group{}, err
	}
	return g, nil
}

// AddStudents adds students to a group. Students already present are
// ignored.
func (s *Store) AddStudents(ctx context.Context, advisorID int64, groupID string, studentIDs []string) (Group, error) {
	return s.update(ctx, advisorID, groupID, func(g *Group) {
		g.StudentIDs = uniqueStrings(toInterfaces(append(g.StudentIDs, studentIDs...)))
	})
}

// RemoveStudents removes students from a group.
func (s *Store) RemoveStudents(ctx context.Context, advisorID int64, groupID string, studentIDs []string) (Group, error) {
	remove := make(map[string]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		remove[strings.TrimSpace(id)] = struct{}{}
	}
	return s.update(ctx, advisorID, groupID, func(g *Group) {
		kept := []string{}
		for _, id := range g.StudentIDs {
			if _, ok := remove[id]; !ok {
				kept = append(kept, id)
			}
		}
		g.StudentIDs = kept
	})
}

// RenameGroup changes a group's name.
func (s *Store) RenameGroup(ctx context.Context, advisorID int64, groupID string, name string) (Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Group{}, proto.NewValidationError("name", "group name is required")
	}
	return s.update(ctx, advisorID, groupID, func(g *Group) {
		g.Name = name
	})
}

// DeleteGroup removes a group.
func (s *Store) DeleteGroup(ctx context.Context, advisorID int64, groupID string) error {
	groups, err := s.Load(ctx, advisorID)
	if err != nil {
		return err
	}

	kept := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.ID != groupID {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(groups) {
		return proto.ErrGroupNotFound
	}
	return s.Save(ctx, advisorID, kept)
}

func (s *Store) update(ctx context.Context, advisorID int64, groupID string, fn func(*Group)) (Group, error) {
	groups, err := s.Load(ctx, advisorID)
	if err != nil {
		return Group{}, err
	}

	for i := range groups {
		if groups[i].ID != groupID {
			continue
		}
		fn(&groups[i])
		groups[i].UpdatedAt = s.now().UTC()
		if err := s.Save(ctx, advisorID, groups); err != nil {
			return Group{}, err
		}
		return groups[i], nil
	}
	return Group{}, proto.ErrGroupNotFound
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
