// Package analytics computes engagement statistics over a set of students.
//
// Everything is computed at read time from raw rows; nothing is stored.
package analytics

import (
	"math"
	"time"
)

// Window is the lookback of the "recent" figures.
const Window = 30 * 24 * time.Hour

// Activity is the subset of an activity row used by Compute.
type Activity struct {
	UserID    int64
	Status    string
	CreatedAt time.Time
}

// Participation is the subset of a volunteering row used by Compute.
type Participation struct {
	UserID     int64
	Hours      float64
	OccurredAt time.Time
}

// Goal is the subset of a goal row used by Compute.
type Goal struct {
	UserID    int64
	Completed bool
}

// Input is the raw data of a student set.
type Input struct {
	Students       []int64
	Activities     []Activity
	Participations []Participation
	Goals          []Goal
}

// Stats are the engagement statistics of a student set. Rates are
// percentages in [0, 100].
type Stats struct {
	TotalStudents      int     `json:"totalStudents"`
	ActiveStudents     int     `json:"activeStudents"`
	ParticipationRate  float64 `json:"participationRate"`
	TotalActivities    int     `json:"totalActivities"`
	VerifiedActivities int     `json:"verifiedActivities"`
	PendingActivities  int     `json:"pendingActivities"`
	RecentActivities   int     `json:"recentActivities"`
	VerificationRate   float64 `json:"verificationRate"`
	VolunteerHours30d  float64 `json:"volunteerHours30d"`
	VolunteerRate      float64 `json:"volunteerRate"`
	TotalGoals         int     `json:"totalGoals"`
	CompletedGoals     int     `json:"completedGoals"`
	GoalCompletionRate float64 `json:"goalCompletionRate"`
	RecentActivityRate float64 `json:"recentActivityRate"`
	EngagementScore    int     `json:"engagementScore"`
}

// Compute returns the statistics of in at now. Rows of users outside
// in.Students are ignored.
func Compute(in Input, now time.Time) Stats {
	students := make(map[int64]struct{}, len(in.Students))
	for _, id := range in.Students {
		students[id] = struct{}{}
	}

	since := now.Add(-Window)
	active := map[int64]struct{}{}
	recentlyActive := map[int64]struct{}{}
	volunteers := map[int64]struct{}{}

	var s Stats
	s.TotalStudents = len(students)

	for _, a := range in.Activities {
		if _, ok := students[a.UserID]; !ok {
			continue
		}
		s.TotalActivities++
		active[a.UserID] = struct{}{}
		switch a.Status {
		case "verified":
			s.VerifiedActivities++
		case "pending":
			s.PendingActivities++
		}
		if !a.CreatedAt.Before(since) {
			s.RecentActivities++
			recentlyActive[a.UserID] = struct{}{}
		}
	}

	for _, p := range in.Participations {
		if _, ok := students[p.UserID]; !ok {
			continue
		}
		if p.OccurredAt.Before(since) || p.OccurredAt.After(now) {
			continue
		}
		s.VolunteerHours30d += p.Hours
		volunteers[p.UserID] = struct{}{}
	}
	s.VolunteerHours30d = round1(s.VolunteerHours30d)

	for _, g := range in.Goals {
		if _, ok := students[g.UserID]; !ok {
			continue
		}
		s.TotalGoals++
		if g.Completed {
			s.CompletedGoals++
		}
	}

	s.ActiveStudents = len(active)
	s.ParticipationRate = percent(len(active), s.TotalStudents)
	s.VerificationRate = percent(s.VerifiedActivities, s.TotalActivities)
	s.VolunteerRate = percent(len(volunteers), s.TotalStudents)
	s.GoalCompletionRate = percent(s.CompletedGoals, s.TotalGoals)
	s.RecentActivityRate = percent(len(recentlyActive), s.TotalStudents)
	s.EngagementScore = EngagementScore(
		s.ParticipationRate,
		s.VerificationRate,
		s.VolunteerRate,
		s.GoalCompletionRate,
		s.RecentActivityRate,
	)

	return s
}

// EngagementScore is the unweighted mean of the component percentages,
// rounded and clamped to [0, 100].
func EngagementScore(components ...float64) int {
	if len(components) == 0 {
		return 0
	}
	var sum float64
	for _, c := range components {
		sum += c
	}
	score := int(math.Round(sum / float64(len(components))))
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(n) / float64(total) * 100)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
