package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/utils"
)

// ParticipationOptions are options for logging volunteer hours.
type ParticipationOptions struct {
	OrganizationID int64
	Description    string
	Hours          float64
	// OccurredAt defaults to now.
	OccurredAt time.Time
}

// Participations returns the user's logged volunteer hours.
func (d *Backend) Participations(ctx context.Context, userID int64) ([]proto.Participation, error) {
	var ps []proto.Participation
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.ListParticipationsByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		ps = make([]proto.Participation, 0, len(ms))
		for _, m := range ms {
			ps = append(ps, participationFromModel(m))
		}
		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return ps, nil
}

// LogHours records volunteer hours and completes every open goal whose
// progress reaches its target. It returns the participation and the goals
// completed by it.
func (d *Backend) LogHours(ctx context.Context, userID int64, opts ParticipationOptions) (proto.Participation, []proto.Goal, error) {
	if err := utils.ValidateHours(opts.Hours); err != nil {
		return proto.Participation{}, nil, invalid("hours", err)
	}
	opts.Description = strings.TrimSpace(opts.Description)
	now := d.now()
	if opts.OccurredAt.IsZero() {
		opts.OccurredAt = now
	}
	if opts.OccurredAt.After(now) {
		return proto.Participation{}, nil, proto.NewValidationError("occurredAt", "must not be in the future")
	}

	var orgID *int64
	if opts.OrganizationID > 0 {
		orgID = &opts.OrganizationID
	}

	var p proto.Participation
	var completed []proto.Goal
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		id, err := d.store.CreateParticipation(ctx, tx, userID, orgID, opts.Description, opts.Hours, opts.OccurredAt, now)
		if err != nil {
			return err
		}

		ps, err := d.store.ListParticipationsByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		goals, err := d.store.ListGoalsByUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		for _, m := range ps {
			if m.ID == id {
				p = participationFromModel(m)
			}
		}

		for _, g := range goals {
			if g.CompletedAt.Valid {
				continue
			}
			logged := goalProgress(g, ps)
			if logged < g.TargetHours {
				continue
			}
			if err := d.store.CompleteGoal(ctx, tx, g.ID, now); err != nil {
				return err
			}
			g.CompletedAt.Time, g.CompletedAt.Valid = now.UTC(), true
			completed = append(completed, goalFromModel(g, logged))
		}
		return nil
	})
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrForeignKey) {
			return proto.Participation{}, nil, proto.ErrOrganizationNotFound
		}
		return proto.Participation{}, nil, err
	}

	for _, g := range completed {
		d.logger.Info("goal completed", "user", userID, "goal", g.ID, "hours", g.LoggedHours)
	}

	return p, completed, nil
}

// Goals returns the user's goals with their progress.
func (d *Backend) Goals(ctx context.Context, userID int64) ([]proto.Goal, error) {
	var goals []proto.Goal
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.ListGoalsByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		ps, err := d.store.ListParticipationsByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		goals = make([]proto.Goal, 0, len(ms))
		for _, m := range ms {
			goals = append(goals, goalFromModel(m, goalProgress(m, ps)))
		}
		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return goals, nil
}

// CreateGoal sets a volunteer hours goal. Only hours logged after the goal
// is created count towards it.
func (d *Backend) CreateGoal(ctx context.Context, userID int64, targetHours float64, deadline *time.Time) (proto.Goal, error) {
	if targetHours <= 0 {
		return proto.Goal{}, proto.NewValidationError("targetHours", "must be positive")
	}
	now := d.now()
	if deadline != nil && deadline.Before(now) {
		return proto.Goal{}, proto.NewValidationError("deadline", "must be in the future")
	}

	var goal proto.Goal
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		id, err := d.store.CreateGoal(ctx, tx, userID, targetHours, deadline, now)
		if err != nil {
			return err
		}
		ms, err := d.store.ListGoalsByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		for _, m := range ms {
			if m.ID == id {
				goal = goalFromModel(m, 0)
			}
		}
		return nil
	}); err != nil {
		return proto.Goal{}, db.WrapError(err)
	}

	return goal, nil
}

// goalProgress sums the hours recorded at or after the goal's creation.
func goalProgress(g models.Goal, ps []models.Participation) float64 {
	var total float64
	for _, p := range ps {
		if !p.CreatedAt.Before(g.CreatedAt) {
			total += p.Hours
		}
	}
	return total
}

func participationFromModel(m models.Participation) proto.Participation {
	return proto.Participation{
		ID:             m.ID,
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID.Int64,
		Description:    m.Description,
		Hours:          m.Hours,
		OccurredAt:     m.OccurredAt,
	}
}

func goalFromModel(m models.Goal, logged float64) proto.Goal {
	g := proto.Goal{
		ID:          m.ID,
		UserID:      m.UserID,
		TargetHours: m.TargetHours,
		LoggedHours: logged,
		CreatedAt:   m.CreatedAt,
	}
	if m.Deadline.Valid {
		g.Deadline = &m.Deadline.Time
	}
	if m.CompletedAt.Valid {
		g.CompletedAt = &m.CompletedAt.Time
	}
	return g
}
