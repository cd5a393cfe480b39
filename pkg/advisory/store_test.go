package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/pathwayhq/pathway/pkg/proto"
)

type memSettings map[string]string

func (m memSettings) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memSettings) Set(_ context.Context, key string, value string) error {
	m[key] = value
	return nil
}

func (m memSettings) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

var now = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

func newTestStore(m memSettings) *Store {
	var n int
	return NewStore(m,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("g%d", n)
		}),
	)
}

func TestKeys(t *testing.T) {
	is := is.New(t)
	is.Equal(GroupsKey(42), "advisory_groups_42")
	is.Equal(LegacyKey(42), "advisory_students_42")
}

func TestLoadEmpty(t *testing.T) {
	is := is.New(t)
	m := memSettings{}
	groups, err := newTestStore(m).Load(context.TODO(), 1)
	is.NoErr(err)
	is.Equal(len(groups), 0)
	is.Equal(len(m), 0) // nothing persisted
}

func TestLoadLegacyUpgrades(t *testing.T) {
	is := is.New(t)
	m := memSettings{LegacyKey(7): `["s1","s2"]`}
	s := newTestStore(m)

	groups, err := s.Load(context.TODO(), 7)
	is.NoErr(err)
	is.Equal(len(groups), 1)
	is.Equal(groups[0].Name, DefaultGroupName)
	is.Equal(groups[0].StudentIDs, []string{"s1", "s2"})

	raw, ok := m[GroupsKey(7)]
	is.True(ok) // upgraded list persisted

	var stored []Group
	is.NoErr(json.Unmarshal([]byte(raw), &stored))
	is.Equal(len(stored), 1)
	is.Equal(stored[0].ID, groups[0].ID)

	again, err := s.Load(context.TODO(), 7)
	is.NoErr(err)
	is.Equal(again, groups)
}

func TestLoadLegacyDropsNonStrings(t *testing.T) {
	is := is.New(t)
	m := memSettings{LegacyKey(7): `["s1", 2, null, "s1", "s3"]`}
	groups, err := newTestStore(m).Load(context.TODO(), 7)
	is.NoErr(err)
	is.Equal(groups[0].StudentIDs, []string{"s1", "s3"})
}

func TestLoadEmptyGroupsFallsBackToLegacy(t *testing.T) {
	is := is.New(t)
	m := memSettings{
		GroupsKey(3): `[]`,
		LegacyKey(3): `["a"]`,
	}
	groups, err := newTestStore(m).Load(context.TODO(), 3)
	is.NoErr(err)
	is.Equal(len(groups), 1)
	is.Equal(groups[0].StudentIDs, []string{"a"})
}

func TestLoadMalformedGroupsFallsBackToLegacy(t *testing.T) {
	is := is.New(t)
	m := memSettings{
		GroupsKey(3): `{not json`,
		LegacyKey(3): `["a"]`,
	}
	groups, err := newTestStore(m).Load(context.TODO(), 3)
	is.NoErr(err)
	is.Equal(len(groups), 1)
}

func TestLoadCoercesFields(t *testing.T) {
	is := is.New(t)
	m := memSettings{GroupsKey(1): `[
		{"studentIds": ["x", 1, "y", "x", {"id": "z"}]},
		"garbage",
		{"id": "keep", "name": "  Seniors ", "studentIds": "nope",
		 "createdAt": "2023-01-02T03:04:05Z"}
	]`}
	groups, err := newTestStore(m).Load(context.TODO(), 1)
	is.NoErr(err)
	is.Equal(len(groups), 2)

	is.Equal(groups[0].ID, "g1")
	is.Equal(groups[0].Name, UntitledGroupName)
	is.Equal(groups[0].StudentIDs, []string{"x", "y"})
	is.Equal(groups[0].CreatedAt, now)
	is.Equal(groups[0].UpdatedAt, now)

	is.Equal(groups[1].ID, "keep")
	is.Equal(groups[1].Name, "Seniors")
	is.Equal(groups[1].StudentIDs, []string{})
	created := time.Date(2023, time.January, 2, 3, 4, 5, 0, time.UTC)
	is.True(groups[1].CreatedAt.Equal(created))
	is.True(groups[1].UpdatedAt.Equal(created))
}

func TestSaveMaintainsLegacyKey(t *testing.T) {
	is := is.New(t)
	m := memSettings{}
	s := newTestStore(m)

	err := s.Save(context.TODO(), 5, []Group{
		{ID: "a", Name: "A", StudentIDs: []string{"s1", "s2"}},
		{ID: "b", Name: "B", StudentIDs: []string{"s2", "s3"}},
	})
	is.NoErr(err)
	is.Equal(m[LegacyKey(5)], `["s1","s2","s3"]`)
}

func TestSaveEmptyDeletesLegacyKey(t *testing.T) {
	is := is.New(t)
	m := memSettings{LegacyKey(5): `["s1"]`}
	s := newTestStore(m)

	err := s.Save(context.TODO(), 5, []Group{{ID: "a", Name: "A", StudentIDs: []string{}}})
	is.NoErr(err)
	_, ok := m[LegacyKey(5)]
	is.True(!ok) // legacy key removed, not "[]"
	_, ok = m[GroupsKey(5)]
	is.True(ok)
}

func TestGroupOperations(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()
	m := memSettings{}
	s := newTestStore(m)

	g, err := s.CreateGroup(ctx, 9, "Juniors", []string{"s1", "s1", "s2"})
	is.NoErr(err)
	is.Equal(g.StudentIDs, []string{"s1", "s2"})

	g, err = s.AddStudents(ctx, 9, g.ID, []string{"s2", "s3"})
	is.NoErr(err)
	is.Equal(g.StudentIDs, []string{"s1", "s2", "s3"})

	g, err = s.RemoveStudents(ctx, 9, g.ID, []string{"s1"})
	is.NoErr(err)
	is.Equal(g.StudentIDs, []string{"s2", "s3"})

	g, err = s.RenameGroup(ctx, 9, g.ID, "Class of 2026")
	is.NoErr(err)
	is.Equal(g.Name, "Class of 2026")

	students, err := s.Students(ctx, 9)
	is.NoErr(err)
	is.Equal(students, []string{"s2", "s3"})

	is.NoErr(s.DeleteGroup(ctx, 9, g.ID))
	_, ok := m[LegacyKey(9)]
	is.True(!ok)

	err = s.DeleteGroup(ctx, 9, g.ID)
	is.True(errors.Is(err, proto.ErrNotFound))

	_, err = s.AddStudents(ctx, 9, "missing", []string{"x"})
	is.True(errors.Is(err, proto.ErrGroupNotFound))

	_, err = s.CreateGroup(ctx, 9, "  ", nil)
	is.True(proto.IsValidationError(err))
}

func TestFlatten(t *testing.T) {
	is := is.New(t)
	is.Equal(Flatten(nil), []string{})
	is.Equal(Flatten([]Group{
		{StudentIDs: []string{"b", "a"}},
		{StudentIDs: []string{"a", "c"}},
	}), []string{"b", "a", "c"})
}
