package backend

import (
	"context"

	"github.com/pathwayhq/pathway/pkg/advisory"
	"github.com/pathwayhq/pathway/pkg/db"
)

// withAdvisory runs fn against an advisory group store bound to one
// transaction, so a legacy upgrade and the caller's write commit together.
func (d *Backend) withAdvisory(ctx context.Context, fn func(s *advisory.Store) error) error {
	return db.WrapError(
		d.db.TransactionContext(ctx, func(tx *db.Tx) error {
			s := advisory.NewStore(txSettings{store: d.store, tx: tx}, advisory.WithClock(d.now))
			return fn(s)
		}),
	)
}

// AdvisorGroups returns the advisor's groups.
func (d *Backend) AdvisorGroups(ctx context.Context, advisorID int64) ([]advisory.Group, error) {
	var groups []advisory.Group
	err := d.withAdvisory(ctx, func(s *advisory.Store) error {
		var err error
		groups, err = s.Load(ctx, advisorID)
		return err
	})
	return groups, err
}

// SaveAdvisorGroups replaces the advisor's groups. The submitted groups go
// through the same coercion as stored ones.
func (d *Backend) SaveAdvisorGroups(ctx context.Context, advisorID int64, groups []advisory.Group) ([]advisory.Group, error) {
	var saved []advisory.Group
	err := d.withAdvisory(ctx, func(s *advisory.Store) error {
		if err := s.Save(ctx, advisorID, groups); err != nil {
			return err
		}
		var err error
		saved, err = s.Load(ctx, advisorID)
		return err
	})
	return saved, err
}

// CreateAdvisorGroup adds a named group.
func (d *Backend) CreateAdvisorGroup(ctx context.Context, advisorID int64, name string, studentIDs []string) (advisory.Group, error) {
	var g advisory.Group
	err := d.withAdvisory(ctx, func(s *advisory.Store) error {
		var err error
		g, err = s.CreateGroup(ctx, advisorID, name, studentIDs)
		return err
	})
	return g, err
}

// RenameAdvisorGroup renames a group.
func (d *Backend) RenameAdvisorGroup(ctx context.Context, advisorID int64, groupID string, name string) (advisory.Group, error) {
	var g advisory.Group
	err := d.withAdvisory(ctx, func(s *advisory.Store) error {
		var err error
		g, err = s.RenameGroup(ctx, advisorID, groupID, name)
		return err
	})
	return g, err
}

// DeleteAdvisorGroup removes a group.
func (d *Backend) DeleteAdvisorGroup(ctx context.Context, advisorID int64, groupID string) error {
	return d.withAdvisory(ctx, func(s *advisory.Store) error {
		return s.DeleteGroup(ctx, advisorID, groupID)
	})
}

// AddAdvisorStudents adds students to a group.
func (d *Backend) AddAdvisorStudents(ctx context.Context, advisorID int64, groupID string, studentIDs []string) (advisory.Group, error) {
	var g advisory.Group
	err := d.withAdvisory(ctx, func(s *advisory.Store) error {
		var err error
		g, err = s.AddStudents(ctx, advisorID, groupID, studentIDs)
		return err
	})
	return g, err
}

// RemoveAdvisorStudents removes students from a group.
func (d *Backend) RemoveAdvisorStudents(ctx context.Context, advisorID int64, groupID string, studentIDs []string) (advisory.Group, error) {
	var g advisory.Group
	err := d.withAdvisory(ctx, func(s *advisory.Store) error {
		var err error
		g, err = s.RemoveStudents(ctx, advisorID, groupID, studentIDs)
		return err
	})
	return g, err
}

// AdvisorStudents returns the unique student ids across the advisor's
// groups.
func (d *Backend) AdvisorStudents(ctx context.Context, advisorID int64) ([]string, error) {
	var students []string
	err := d.withAdvisory(ctx, func(s *advisory.Store) error {
		var err error
		students, err = s.Students(ctx, advisorID)
		return err
	})
	return students, err
}
