package backend

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/email"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/store/database"
	"github.com/pathwayhq/pathway/pkg/test"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type mailbox struct {
	ch chan email.Message
}

func (m *mailbox) Send(_ context.Context, msg email.Message) error {
	m.ch <- msg
	return nil
}

// keywordEmbedder embeds text as keyword counts.
type keywordEmbedder []string

func (k keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	text = strings.ToLower(text)
	v := make([]float32, len(k))
	for i, w := range k {
		v[i] = float32(strings.Count(text, w))
	}
	return v, nil
}

type fixture struct {
	ctx   context.Context
	be    *Backend
	clock *clock
	mail  *mailbox
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.TODO()
	dbx := test.OpenDB(ctx, t)

	cfg := config.DefaultConfig()
	cfg.Auth.Secret = "test-secret"
	cfg.Task.RetryInterval = time.Millisecond

	f := &fixture{
		ctx:   ctx,
		clock: &clock{t: time.Now().UTC()},
		mail:  &mailbox{ch: make(chan email.Message, 10)},
	}
	be, err := New(ctx, cfg, dbx, database.New(ctx, dbx),
		WithClock(f.clock.Now),
		WithMailer(f.mail),
		WithEmbedder(keywordEmbedder{"robot", "garden", "music"}),
	)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	t.Cleanup(func() {
		if err := be.Close(); err != nil {
			t.Errorf("close backend: %v", err)
		}
	})
	f.be = be
	return f
}

func (f *fixture) user(t *testing.T, email string, role access.Role, schoolID int64) proto.User {
	t.Helper()
	u, err := f.be.CreateUser(f.ctx, email, proto.UserOptions{Name: strings.Split(email, "@")[0], Role: role, SchoolID: schoolID})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func (f *fixture) edition(t *testing.T, admin proto.User, title string) proto.Edition {
	t.Helper()
	_, ed, err := f.be.CreateOpportunity(f.ctx, admin, OpportunityOptions{Title: title, Category: "stem"})
	if err != nil {
		t.Fatalf("create opportunity: %v", err)
	}
	return ed
}

func TestCloseWithoutRun(t *testing.T) {
	f := setup(t)
	start := time.Now()
	if err := f.be.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if took := time.Since(start); took > 2*time.Second {
		t.Errorf("close of an idle backend took %s", took)
	}
}

func TestUsers(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	school, err := f.be.CreateSchool(f.ctx, "Northside High")
	is.NoErr(err)

	u := f.user(t, "Ada@Example.com", access.Student, school.ID)
	is.Equal(u.Email(), "ada@example.com")
	is.Equal(u.Role(), access.Student)
	is.Equal(u.SchoolID(), school.ID)

	_, err = f.be.CreateUser(f.ctx, "ada@example.com", proto.UserOptions{Role: access.Student})
	is.Equal(err, proto.ErrUserExists)

	_, err = f.be.CreateUser(f.ctx, "bob@example.com", proto.UserOptions{Role: access.Student, SchoolID: 999})
	is.Equal(err, proto.ErrSchoolNotFound)

	_, err = f.be.CreateUser(f.ctx, "not an email", proto.UserOptions{Role: access.Student})
	is.True(proto.IsValidationError(err))

	is.NoErr(f.be.SetUserRole(f.ctx, u.ID(), access.Advisor))
	u, err = f.be.UserByEmail(f.ctx, "ADA@example.com")
	is.NoErr(err)
	is.Equal(u.Role(), access.Advisor)

	// The cache is invalidated on writes.
	u, err = f.be.UserByID(f.ctx, u.ID())
	is.NoErr(err)
	is.Equal(u.Role(), access.Advisor)

	is.NoErr(f.be.DeleteUser(f.ctx, u.ID()))
	_, err = f.be.UserByID(f.ctx, u.ID())
	is.Equal(err, proto.ErrUserNotFound)
	is.Equal(f.be.DeleteUser(f.ctx, u.ID()), proto.ErrUserNotFound)
}

func TestTokens(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	u := f.user(t, "ada@example.com", access.Student, 0)

	token, err := f.be.GenerateToken(f.ctx, u, time.Hour)
	is.NoErr(err)

	got, err := f.be.UserByToken(f.ctx, token)
	is.NoErr(err)
	is.Equal(got.ID(), u.ID())

	_, err = f.be.UserByToken(f.ctx, token+"x")
	is.Equal(err, ErrInvalidToken)

	f.clock.Advance(2 * time.Hour)
	_, err = f.be.UserByToken(f.ctx, token)
	is.Equal(err, proto.ErrTokenExpired)
}

func TestToggleSave(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	admin := f.user(t, "admin@example.com", access.Admin, 0)
	ada := f.user(t, "ada@example.com", access.Student, 0)
	bob := f.user(t, "bob@example.com", access.Student, 0)
	ed := f.edition(t, admin, "Robotics league")

	first, err := f.be.ToggleSave(f.ctx, ed.ID, ada.ID())
	is.NoErr(err)
	is.True(first.Saved)
	is.Equal(first.SavesCount, int64(1))

	other, err := f.be.ToggleSave(f.ctx, ed.ID, bob.ID())
	is.NoErr(err)
	is.True(other.Saved)
	is.Equal(other.SavesCount, int64(2))

	second, err := f.be.ToggleSave(f.ctx, ed.ID, ada.ID())
	is.NoErr(err)
	is.True(!second.Saved)
	is.Equal(second.SavesCount, other.SavesCount-1)

	got, err := f.be.Edition(f.ctx, ed.ID, bob.ID())
	is.NoErr(err)
	is.True(got.Saved)
	is.True(!got.Following)
	is.Equal(got.SavesCount, int64(1))

	_, err = f.be.ToggleSave(f.ctx, 999, ada.ID())
	is.Equal(err, proto.ErrEditionNotFound)
}

func TestToggleFollow(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	admin := f.user(t, "admin@example.com", access.Admin, 0)
	ada := f.user(t, "ada@example.com", access.Student, 0)
	ed := f.edition(t, admin, "Community garden")

	res, err := f.be.ToggleFollow(f.ctx, ed.ID, ada.ID())
	is.NoErr(err)
	is.Equal(res, proto.FollowResult{Following: true, FollowsCount: 1})

	res, err = f.be.ToggleFollow(f.ctx, ed.ID, ada.ID())
	is.NoErr(err)
	is.Equal(res, proto.FollowResult{Following: false, FollowsCount: 0})
}

func TestRecomputePopularity(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	admin := f.user(t, "admin@example.com", access.Admin, 0)
	ada := f.user(t, "ada@example.com", access.Student, 0)

	popular := f.edition(t, admin, "Robotics league")
	quiet := f.edition(t, admin, "Chess club")

	_, err := f.be.ToggleSave(f.ctx, popular.ID, ada.ID())
	is.NoErr(err)
	_, err = f.be.ToggleFollow(f.ctx, popular.ID, ada.ID())
	is.NoErr(err)
	is.NoErr(f.be.RecordClick(f.ctx, popular.ID, ada.ID()))
	is.NoErr(f.be.RecordClick(f.ctx, popular.ID, 0))
	is.Equal(f.be.RecordClick(f.ctx, 999, 0), proto.ErrEditionNotFound)

	// Fill a few more batches.
	opp, _, err := f.be.CreateOpportunity(f.ctx, admin, OpportunityOptions{Title: "Debate"})
	is.NoErr(err)
	for i := 0; i < 150; i++ {
		_, err := f.be.CreateEdition(f.ctx, admin, opp.ID, "Round", nil, nil)
		is.NoErr(err)
	}

	res, err := f.be.RecomputePopularity(f.ctx)
	is.NoErr(err)
	is.True(res.Success)
	is.Equal(res.Updated, 153)

	// (1*3 + 1*2 + 2*0.1) * 1.2 = 6.24
	got, err := f.be.Edition(f.ctx, popular.ID, 0)
	is.NoErr(err)
	is.Equal(got.PopularityScore, int64(6))
	is.Equal(got.Clicks30d, int64(2))

	other, err := f.be.Edition(f.ctx, quiet.ID, 0)
	is.NoErr(err)
	is.Equal(other.PopularityScore, int64(0))

	again, err := f.be.RecomputePopularity(f.ctx)
	is.NoErr(err)
	is.Equal(again, res)
	got2, err := f.be.Edition(f.ctx, popular.ID, 0)
	is.NoErr(err)
	is.Equal(got2.PopularityScore, got.PopularityScore)

	editions, err := f.be.Editions(f.ctx, 1, 0)
	is.NoErr(err)
	is.Equal(len(editions), 1)
	is.Equal(editions[0].ID, popular.ID)
}

func TestCreateOpportunityRequiresMembership(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	admin := f.user(t, "admin@example.com", access.Admin, 0)
	owner := f.user(t, "owner@example.com", access.Organization, 0)
	stranger := f.user(t, "stranger@example.com", access.Organization, 0)

	org, err := f.be.RequestOrganization(f.ctx, owner, "Green Thumbs", "", "https://green.example.com")
	is.NoErr(err)
	is.Equal(org.Status, proto.OrganizationPending)

	opts := OpportunityOptions{OrganizationID: org.ID, Title: "Garden day"}
	_, _, err = f.be.CreateOpportunity(f.ctx, owner, opts)
	is.Equal(err, proto.ErrForbidden) // not approved yet

	_, err = f.be.ReviewOrganization(f.ctx, admin, org.ID, true)
	is.NoErr(err)

	_, ed, err := f.be.CreateOpportunity(f.ctx, owner, opts)
	is.NoErr(err)
	is.Equal(ed.Name, "Garden day")

	_, _, err = f.be.CreateOpportunity(f.ctx, stranger, opts)
	is.Equal(err, proto.ErrForbidden)
}

func TestOrganizations(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	admin := f.user(t, "admin@example.com", access.Admin, 0)
	owner := f.user(t, "owner@example.com", access.Student, 0)
	other := f.user(t, "other@example.com", access.Student, 0)

	org, err := f.be.RequestOrganization(f.ctx, owner, "Food Bank", "Feeding the city", "")
	is.NoErr(err)
	_, err = f.be.RequestOrganization(f.ctx, other, "Food Bank", "", "")
	is.Equal(err, proto.ErrOrganizationExists)

	approved, err := f.be.Organizations(f.ctx, proto.OrganizationApproved)
	is.NoErr(err)
	is.Equal(len(approved), 0)

	org, err = f.be.ReviewOrganization(f.ctx, admin, org.ID, true)
	is.NoErr(err)
	is.Equal(org.Status, proto.OrganizationApproved)
	_, err = f.be.ReviewOrganization(f.ctx, admin, org.ID, false)
	is.True(proto.IsValidationError(err))

	events, err := f.be.OrganizationEvents(f.ctx, org.ID)
	is.NoErr(err)
	is.Equal(string(events), "[]")

	is.NoErr(f.be.SetOrganizationEvents(f.ctx, owner, org.ID, []byte(`[{"title":"Drive"}]`)))
	is.Equal(f.be.SetOrganizationEvents(f.ctx, other, org.ID, []byte(`[]`)), proto.ErrForbidden)
	is.True(proto.IsValidationError(f.be.SetOrganizationEvents(f.ctx, owner, org.ID, []byte(`{}`))))
	is.NoErr(f.be.SetOrganizationEvents(f.ctx, admin, org.ID, []byte(`[{"title":"Drive"},{"title":"Sort"}]`)))

	events, err = f.be.OrganizationEvents(f.ctx, org.ID)
	is.NoErr(err)
	is.Equal(string(events), `[{"title":"Drive"},{"title":"Sort"}]`)

	_, err = f.be.OrganizationEvents(f.ctx, 999)
	is.Equal(err, proto.ErrOrganizationNotFound)
}

func TestActivities(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	ada := f.user(t, "ada@example.com", access.Student, 0)
	bob := f.user(t, "bob@example.com", access.Student, 0)
	advisor := f.user(t, "advisor@example.com", access.Advisor, 0)

	_, err := f.be.CreateActivity(f.ctx, ada.ID(), ActivityOptions{Title: " "})
	is.True(proto.IsValidationError(err))
	_, err = f.be.CreateActivity(f.ctx, ada.ID(), ActivityOptions{Title: "Robotics", Hours: -1})
	is.True(proto.IsValidationError(err))

	a, err := f.be.CreateActivity(f.ctx, ada.ID(), ActivityOptions{Title: "Robotics", Category: "stem", Hours: 3})
	is.NoErr(err)
	is.Equal(a.Status, proto.ActivityPending)

	pending, err := f.be.PendingActivities(f.ctx)
	is.NoErr(err)
	is.Equal(len(pending), 1)

	is.Equal(f.be.DeleteActivity(f.ctx, bob.ID(), a.ID), proto.ErrActivityNotFound)

	_, err = f.be.VerifyActivity(f.ctx, advisor, a.ID, "maybe")
	is.True(proto.IsValidationError(err))

	verified, err := f.be.VerifyActivity(f.ctx, advisor, a.ID, proto.ActivityVerified)
	is.NoErr(err)
	is.Equal(verified.Status, proto.ActivityVerified)
	is.Equal(verified.VerifiedBy, advisor.ID())
	is.True(verified.VerifiedAt != nil)

	_, err = f.be.VerifyActivity(f.ctx, advisor, a.ID, proto.ActivityRejected)
	is.True(proto.IsValidationError(err))
	is.True(proto.IsValidationError(f.be.DeleteActivity(f.ctx, ada.ID(), a.ID)))

	mine, err := f.be.Activities(f.ctx, ada.ID())
	is.NoErr(err)
	is.Equal(len(mine), 1)
}

func TestVerifyActivityQueuesEmail(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	ada := f.user(t, "ada@example.com", access.Student, 0)
	advisor := f.user(t, "advisor@example.com", access.Advisor, 0)

	ctx, cancel := context.WithCancel(f.ctx)
	defer cancel()
	go f.be.Run(ctx) // nolint: errcheck
	<-f.be.Running()

	a, err := f.be.CreateActivity(f.ctx, ada.ID(), ActivityOptions{Title: "Choir", Hours: 2})
	is.NoErr(err)
	_, err = f.be.VerifyActivity(f.ctx, advisor, a.ID, proto.ActivityRejected)
	is.NoErr(err)

	select {
	case msg := <-f.mail.ch:
		is.Equal(msg.To, "ada@example.com")
		is.True(strings.Contains(msg.Subject, "rejected"))
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestLogHoursCompletesGoals(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	ada := f.user(t, "ada@example.com", access.Student, 0)

	_, err := f.be.CreateGoal(f.ctx, ada.ID(), 0, nil)
	is.True(proto.IsValidationError(err))

	goal, err := f.be.CreateGoal(f.ctx, ada.ID(), 10, nil)
	is.NoErr(err)
	is.Equal(goal.TargetHours, 10.0)

	_, completed, err := f.be.LogHours(f.ctx, ada.ID(), ParticipationOptions{Description: "Food bank", Hours: 4})
	is.NoErr(err)
	is.Equal(len(completed), 0)

	p, completed, err := f.be.LogHours(f.ctx, ada.ID(), ParticipationOptions{Description: "Park cleanup", Hours: 6})
	is.NoErr(err)
	is.Equal(p.Hours, 6.0)
	is.Equal(len(completed), 1)
	is.Equal(completed[0].ID, goal.ID)

	goals, err := f.be.Goals(f.ctx, ada.ID())
	is.NoErr(err)
	is.Equal(len(goals), 1)
	is.Equal(goals[0].LoggedHours, 10.0)
	is.True(goals[0].CompletedAt != nil)

	// A completed goal is not completed twice.
	_, completed, err = f.be.LogHours(f.ctx, ada.ID(), ParticipationOptions{Hours: 1})
	is.NoErr(err)
	is.Equal(len(completed), 0)

	_, _, err = f.be.LogHours(f.ctx, ada.ID(), ParticipationOptions{Hours: 1, OccurredAt: f.clock.Now().Add(time.Hour)})
	is.True(proto.IsValidationError(err))

	ps, err := f.be.Participations(f.ctx, ada.ID())
	is.NoErr(err)
	is.Equal(len(ps), 3)
}

func TestGoalIgnoresEarlierHoursInSameSecond(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	ada := f.user(t, "ada@example.com", access.Student, 0)

	_, _, err := f.be.LogHours(f.ctx, ada.ID(), ParticipationOptions{Description: "Library", Hours: 5})
	is.NoErr(err)

	f.clock.Advance(200 * time.Millisecond)
	goal, err := f.be.CreateGoal(f.ctx, ada.ID(), 6, nil)
	is.NoErr(err)

	f.clock.Advance(200 * time.Millisecond)
	_, completed, err := f.be.LogHours(f.ctx, ada.ID(), ParticipationOptions{Description: "Shelter", Hours: 5})
	is.NoErr(err)
	is.Equal(len(completed), 0)

	goals, err := f.be.Goals(f.ctx, ada.ID())
	is.NoErr(err)
	is.Equal(len(goals), 1)
	is.Equal(goals[0].ID, goal.ID)
	is.Equal(goals[0].LoggedHours, 5.0)
	is.True(goals[0].CompletedAt == nil)
}

func TestAdvisoryGroups(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	advisor := f.user(t, "advisor@example.com", access.Advisor, 0)

	is.NoErr(f.be.SetSetting(f.ctx, "advisory_students_"+itoa(advisor.ID()), `["s1","s2"]`))

	groups, err := f.be.AdvisorGroups(f.ctx, advisor.ID())
	is.NoErr(err)
	is.Equal(len(groups), 1)
	is.Equal(groups[0].StudentIDs, []string{"s1", "s2"})

	_, err = f.be.Setting(f.ctx, "advisory_groups_"+itoa(advisor.ID()))
	is.NoErr(err)

	g, err := f.be.CreateAdvisorGroup(f.ctx, advisor.ID(), "Seniors", []string{"s3"})
	is.NoErr(err)
	g, err = f.be.AddAdvisorStudents(f.ctx, advisor.ID(), g.ID, []string{"s3", "s4"})
	is.NoErr(err)
	is.Equal(g.StudentIDs, []string{"s3", "s4"})

	students, err := f.be.AdvisorStudents(f.ctx, advisor.ID())
	is.NoErr(err)
	is.Equal(students, []string{"s1", "s2", "s3", "s4"})

	_, err = f.be.RemoveAdvisorStudents(f.ctx, advisor.ID(), "missing", []string{"s1"})
	is.Equal(err, proto.ErrGroupNotFound)

	saved, err := f.be.SaveAdvisorGroups(f.ctx, advisor.ID(), nil)
	is.NoErr(err)
	is.Equal(len(saved), 0)
	_, err = f.be.Setting(f.ctx, "advisory_students_"+itoa(advisor.ID()))
	is.Equal(err, proto.ErrSettingNotFound)
}

func TestAdvisorStats(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	school, err := f.be.CreateSchool(f.ctx, "Northside High")
	is.NoErr(err)
	advisor := f.user(t, "advisor@example.com", access.Advisor, school.ID)
	ada := f.user(t, "ada@example.com", access.Student, school.ID)
	bob := f.user(t, "bob@example.com", access.Student, school.ID)

	a, err := f.be.CreateActivity(f.ctx, ada.ID(), ActivityOptions{Title: "Robotics", Hours: 2})
	is.NoErr(err)
	_, err = f.be.VerifyActivity(f.ctx, advisor, a.ID, proto.ActivityVerified)
	is.NoErr(err)
	_, _, err = f.be.LogHours(f.ctx, ada.ID(), ParticipationOptions{Hours: 5})
	is.NoErr(err)

	_, err = f.be.CreateAdvisorGroup(f.ctx, advisor.ID(), "Mine", []string{itoa(ada.ID()), itoa(bob.ID()), "legacy-name"})
	is.NoErr(err)

	stats, err := f.be.AdvisorStats(f.ctx, advisor.ID())
	is.NoErr(err)
	is.Equal(stats.TotalStudents, 2)
	is.Equal(stats.TotalActivities, 1)
	is.Equal(stats.VerifiedActivities, 1)
	is.Equal(stats.VolunteerHours30d, 5.0)

	schoolStats, err := f.be.SchoolStats(f.ctx, school.ID)
	is.NoErr(err)
	is.Equal(schoolStats.TotalStudents, 2)
	is.Equal(schoolStats, stats)

	_, err = f.be.SchoolStats(f.ctx, 999)
	is.Equal(err, proto.ErrSchoolNotFound)
}

func TestSettings(t *testing.T) {
	is := is.New(t)
	f := setup(t)

	is.NoErr(f.be.SetSetting(f.ctx, "color_primary", "#0044ff"))
	s, err := f.be.Setting(f.ctx, "color_primary")
	is.NoErr(err)
	is.Equal(s.Value, "#0044ff")

	list, err := f.be.Settings(f.ctx, "color_")
	is.NoErr(err)
	is.Equal(len(list), 1)

	is.NoErr(f.be.DeleteSetting(f.ctx, "color_primary"))
	_, err = f.be.Setting(f.ctx, "color_primary")
	is.Equal(err, proto.ErrSettingNotFound)

	is.True(proto.IsValidationError(f.be.SetSetting(f.ctx, "bad key", "x")))
}

func TestSearch(t *testing.T) {
	is := is.New(t)
	f := setup(t)
	ada := f.user(t, "ada@example.com", access.Student, 0)
	bob := f.user(t, "bob@example.com", access.Student, 0)

	is.NoErr(f.be.IndexDocument(f.ctx, searchKindOpportunity, 1, "Robot building league"))
	is.NoErr(f.be.IndexDocument(f.ctx, searchKindOpportunity, 2, "Community garden"))
	a, err := f.be.CreateActivity(f.ctx, bob.ID(), ActivityOptions{Title: "robot club", Hours: 1})
	is.NoErr(err)
	is.NoErr(f.be.IndexDocument(f.ctx, searchKindActivity, a.ID, "robot club"))

	matches, err := f.be.Search(f.ctx, ada, "robot", 0)
	is.NoErr(err)
	is.Equal(len(matches), 1) // bob's activity is not visible
	is.Equal(matches[0].RefID, int64(1))

	matches, err = f.be.Search(f.ctx, bob, "robot", 0)
	is.NoErr(err)
	is.Equal(len(matches), 2)

	is.NoErr(f.be.UnindexDocument(f.ctx, searchKindOpportunity, 1))
	matches, err = f.be.Search(f.ctx, ada, "robot", 0)
	is.NoErr(err)
	is.Equal(len(matches), 0)

	_, err = f.be.Search(f.ctx, ada, "  ", 0)
	is.True(proto.IsValidationError(err))
}

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}
