package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/store"
	"github.com/pathwayhq/pathway/pkg/test"
)

func setup(t *testing.T) (context.Context, *db.DB, store.Store) {
	t.Helper()
	ctx := context.TODO()
	dbx := test.OpenDB(ctx, t)
	return ctx, dbx, New(ctx, dbx)
}

func TestSettings(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)

	_, err := s.GetSetting(ctx, dbx, "missing")
	is.True(errors.Is(err, db.ErrRecordNotFound))

	is.NoErr(s.SetSetting(ctx, dbx, "advisory_groups_1", "[]"))
	is.NoErr(s.SetSetting(ctx, dbx, "advisory_groups_1", `[{"id":"a"}]`))
	is.NoErr(s.SetSetting(ctx, dbx, "advisoryXgroups_2", "x"))

	m, err := s.GetSetting(ctx, dbx, "advisory_groups_1")
	is.NoErr(err)
	is.Equal(m.Value, `[{"id":"a"}]`)

	list, err := s.ListSettings(ctx, dbx, "advisory_groups_")
	is.NoErr(err)
	is.Equal(len(list), 1) // "_" is not a wildcard

	is.NoErr(s.DeleteSetting(ctx, dbx, "advisory_groups_1"))
	_, err = s.GetSetting(ctx, dbx, "advisory_groups_1")
	is.True(errors.Is(err, db.ErrRecordNotFound))
}

func TestUsers(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)

	school, err := s.CreateSchool(ctx, dbx, "Lincoln High")
	is.NoErr(err)

	id, err := s.CreateUser(ctx, dbx, " Ada@Example.com ", "Ada", "student", &school)
	is.NoErr(err)

	_, err = s.CreateUser(ctx, dbx, "ada@example.com", "Ada again", "student", nil)
	is.True(errors.Is(err, db.ErrDuplicateKey))

	u, err := s.FindUserByEmail(ctx, dbx, "ADA@example.com")
	is.NoErr(err)
	is.Equal(u.ID, id)
	is.Equal(u.SchoolID.Int64, school)

	_, err = s.CreateUser(ctx, dbx, "bob@example.com", "Bob", "advisor", &school)
	is.NoErr(err)

	students, err := s.GetUsersBySchool(ctx, dbx, school, "student")
	is.NoErr(err)
	is.Equal(len(students), 1)

	everyone, err := s.GetUsersBySchool(ctx, dbx, school, "")
	is.NoErr(err)
	is.Equal(len(everyone), 2)

	is.NoErr(s.SetUserRole(ctx, dbx, id, "advisor"))
	u, err = s.GetUserByID(ctx, dbx, id)
	is.NoErr(err)
	is.Equal(u.Role, "advisor")

	none, err := s.GetUsersByIDs(ctx, dbx, nil)
	is.NoErr(err)
	is.Equal(len(none), 0)
}

func TestEngagement(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)

	uid, err := s.CreateUser(ctx, dbx, "s@example.com", "S", "student", nil)
	is.NoErr(err)
	opp, err := s.CreateOpportunity(ctx, dbx, nil, "Science Fair", "", "stem")
	is.NoErr(err)
	ed, err := s.CreateEdition(ctx, dbx, opp, "2024", nil, nil)
	is.NoErr(err)

	has, err := s.HasEngagement(ctx, dbx, store.EngagementSave, ed, uid)
	is.NoErr(err)
	is.True(!has)

	is.NoErr(s.AddEngagement(ctx, dbx, store.EngagementSave, ed, uid))
	err = s.AddEngagement(ctx, dbx, store.EngagementSave, ed, uid)
	is.True(errors.Is(err, db.ErrDuplicateKey))

	n, err := s.AdjustEngagementCount(ctx, dbx, store.EngagementSave, ed, 1)
	is.NoErr(err)
	is.Equal(n, int64(1))

	removed, err := s.RemoveEngagement(ctx, dbx, store.EngagementSave, ed, uid)
	is.NoErr(err)
	is.True(removed)
	removed, err = s.RemoveEngagement(ctx, dbx, store.EngagementSave, ed, uid)
	is.NoErr(err)
	is.True(!removed)

	n, err = s.AdjustEngagementCount(ctx, dbx, store.EngagementSave, ed, -5)
	is.NoErr(err)
	is.Equal(n, int64(0)) // clamped

	_, err = s.AdjustEngagementCount(ctx, dbx, store.Engagement("like"), ed, 1)
	is.True(err != nil)
}

func TestClicks(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)

	opp, err := s.CreateOpportunity(ctx, dbx, nil, "Hackathon", "", "stem")
	is.NoErr(err)
	a, err := s.CreateEdition(ctx, dbx, opp, "spring", nil, nil)
	is.NoErr(err)
	b, err := s.CreateEdition(ctx, dbx, opp, "fall", nil, nil)
	is.NoErr(err)

	is.NoErr(s.RecordClick(ctx, dbx, a, nil))
	is.NoErr(s.RecordClick(ctx, dbx, a, nil))

	e, err := s.GetEditionByID(ctx, dbx, a)
	is.NoErr(err)
	is.Equal(e.Clicks30d, int64(2))

	counts, err := s.CountClicksSince(ctx, dbx, []int64{a, b}, time.Now().Add(-time.Hour))
	is.NoErr(err)
	is.Equal(counts[a], int64(2))
	_, ok := counts[b]
	is.True(!ok)

	counts, err = s.CountClicksSince(ctx, dbx, []int64{a}, time.Now().Add(time.Hour))
	is.NoErr(err)
	is.Equal(len(counts), 0)

	is.NoErr(s.SetEditionPopularity(ctx, dbx, b, 42, 0))
	list, err := s.ListEditionsByPopularity(ctx, dbx, 10, 0)
	is.NoErr(err)
	is.Equal(list[0].ID, b)

	page, err := s.ListEditionsAfter(ctx, dbx, a, 10)
	is.NoErr(err)
	is.Equal(len(page), 1)
	is.Equal(page[0].ID, b)
}

func TestGoals(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)

	uid, err := s.CreateUser(ctx, dbx, "g@example.com", "G", "student", nil)
	is.NoErr(err)
	gid, err := s.CreateGoal(ctx, dbx, uid, 10, nil, time.Now())
	is.NoErr(err)

	first := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	is.NoErr(s.CompleteGoal(ctx, dbx, gid, first))
	is.NoErr(s.CompleteGoal(ctx, dbx, gid, first.Add(time.Hour)))

	goals, err := s.ListGoalsByUser(ctx, dbx, uid)
	is.NoErr(err)
	is.Equal(len(goals), 1)
	is.True(goals[0].CompletedAt.Valid)
	is.True(goals[0].CompletedAt.Time.Equal(first))
}

func TestOrganizations(t *testing.T) {
	is := is.New(t)
	ctx, dbx, s := setup(t)

	uid, err := s.CreateUser(ctx, dbx, "o@example.com", "O", "organization", nil)
	is.NoErr(err)
	oid, err := s.CreateOrganization(ctx, dbx, "Food Bank", "", "https://food.example.org", uid)
	is.NoErr(err)

	pending, err := s.ListOrganizations(ctx, dbx, "pending")
	is.NoErr(err)
	is.Equal(len(pending), 1)

	is.NoErr(s.SetOrganizationStatus(ctx, dbx, oid, "approved", uid))
	approved, err := s.ListOrganizations(ctx, dbx, "approved")
	is.NoErr(err)
	is.Equal(len(approved), 1)

	is.NoErr(s.AddOrganizationMember(ctx, dbx, oid, uid))
	member, err := s.IsOrganizationMember(ctx, dbx, oid, uid)
	is.NoErr(err)
	is.True(member)

	err = s.AddOrganizationMember(ctx, dbx, oid, 999)
	is.True(errors.Is(err, db.ErrForeignKey))
}
