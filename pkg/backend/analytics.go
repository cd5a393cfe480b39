package backend

import (
	"context"
	"errors"
	"strconv"

	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/analytics"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/proto"
)

// AdvisorStats computes engagement statistics over the students of the
// advisor's groups. Student ids that are not user ids are skipped.
func (d *Backend) AdvisorStats(ctx context.Context, advisorID int64) (analytics.Stats, error) {
	students, err := d.AdvisorStudents(ctx, advisorID)
	if err != nil {
		return analytics.Stats{}, err
	}

	ids := make([]int64, 0, len(students))
	for _, s := range students {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			d.logger.Debug("skipping non-numeric student id", "advisor", advisorID, "student", s)
			continue
		}
		ids = append(ids, id)
	}

	return d.stats(ctx, ids)
}

// SchoolStats computes engagement statistics over the students of a
// school.
func (d *Backend) SchoolStats(ctx context.Context, schoolID int64) (analytics.Stats, error) {
	var ids []int64
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := d.store.GetSchoolByID(ctx, tx, schoolID); err != nil {
			return err
		}
		users, err := d.store.GetUsersBySchool(ctx, tx, schoolID, access.Student.String())
		if err != nil {
			return err
		}
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		return nil
	})
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return analytics.Stats{}, proto.ErrSchoolNotFound
	}
	if err != nil {
		return analytics.Stats{}, err
	}

	return d.stats(ctx, ids)
}

func (d *Backend) stats(ctx context.Context, ids []int64) (analytics.Stats, error) {
	in := analytics.Input{Students: ids}
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		activities, err := d.store.ListActivitiesByUsers(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, a := range activities {
			in.Activities = append(in.Activities, analytics.Activity{
				UserID:    a.UserID,
				Status:    a.Status,
				CreatedAt: a.CreatedAt,
			})
		}

		ps, err := d.store.ListParticipationsByUsers(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, p := range ps {
			in.Participations = append(in.Participations, analytics.Participation{
				UserID:     p.UserID,
				Hours:      p.Hours,
				OccurredAt: p.OccurredAt,
			})
		}

		goals, err := d.store.ListGoalsByUsers(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, g := range goals {
			in.Goals = append(in.Goals, analytics.Goal{
				UserID:    g.UserID,
				Completed: g.CompletedAt.Valid,
			})
		}
		return nil
	}); err != nil {
		return analytics.Stats{}, db.WrapError(err)
	}

	return analytics.Compute(in, d.now()), nil
}
