package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/email"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/utils"
)

// ActivityOptions are options for logging an activity.
type ActivityOptions struct {
	Title       string
	Description string
	Category    string
	Hours       float64
}

// Activities returns the activities of a user.
func (d *Backend) Activities(ctx context.Context, userID int64) ([]proto.Activity, error) {
	var activities []proto.Activity
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.ListActivitiesByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		activities = activitiesFromModels(ms)
		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return activities, nil
}

// CreateActivity logs a pending activity for the user.
func (d *Backend) CreateActivity(ctx context.Context, userID int64, opts ActivityOptions) (proto.Activity, error) {
	opts.Title = strings.TrimSpace(opts.Title)
	if opts.Title == "" {
		return proto.Activity{}, proto.NewValidationError("title", "is required")
	}
	if err := utils.ValidateHours(opts.Hours); err != nil {
		return proto.Activity{}, invalid("hours", err)
	}

	var m models.Activity
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		id, err := d.store.CreateActivity(ctx, tx, userID, opts.Title, opts.Description, opts.Category, opts.Hours)
		if err != nil {
			return err
		}
		m, err = d.store.GetActivityByID(ctx, tx, id)
		return err
	}); err != nil {
		return proto.Activity{}, db.WrapError(err)
	}

	d.enqueueIndex(ctx, searchKindActivity, m.ID, m.Title+"\n"+m.Category+"\n"+m.Description)

	return activityFromModel(m), nil
}

// DeleteActivity deletes one of the user's pending activities.
func (d *Backend) DeleteActivity(ctx context.Context, userID int64, id int64) error {
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := d.store.GetActivityByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if m.UserID != userID {
			return proto.ErrActivityNotFound
		}
		if m.Status != proto.ActivityPending {
			return proto.NewValidationError("status", "only pending activities can be deleted")
		}
		return d.store.DeleteActivity(ctx, tx, id)
	})
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return proto.ErrActivityNotFound
	}
	if err != nil {
		return err
	}

	d.enqueueUnindex(ctx, searchKindActivity, id)
	return nil
}

// PendingActivities returns the activities waiting for verification,
// oldest first.
func (d *Backend) PendingActivities(ctx context.Context) ([]proto.Activity, error) {
	var activities []proto.Activity
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.ListActivitiesByStatus(ctx, tx, proto.ActivityPending)
		if err != nil {
			return err
		}
		activities = activitiesFromModels(ms)
		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return activities, nil
}

// VerifyActivity moves a pending activity to verified or rejected and
// queues a notification to its student.
func (d *Backend) VerifyActivity(ctx context.Context, verifier proto.User, id int64, status string) (proto.Activity, error) {
	if status != proto.ActivityVerified && status != proto.ActivityRejected {
		return proto.Activity{}, proto.NewValidationError("status", "must be %q or %q", proto.ActivityVerified, proto.ActivityRejected)
	}

	var m models.Activity
	var student models.User
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = d.store.GetActivityByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if m.Status != proto.ActivityPending {
			return proto.NewValidationError("status", "activity is already %s", m.Status)
		}
		if err := d.store.SetActivityStatus(ctx, tx, id, status, verifier.ID()); err != nil {
			return err
		}
		if m, err = d.store.GetActivityByID(ctx, tx, id); err != nil {
			return err
		}
		student, err = d.store.GetUserByID(ctx, tx, m.UserID)
		return err
	})
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return proto.Activity{}, proto.ErrActivityNotFound
	}
	if err != nil {
		return proto.Activity{}, err
	}

	d.enqueueEmail(ctx, email.Message{
		To:      student.Email,
		Subject: fmt.Sprintf("Your activity %q was %s", m.Title, status),
		Body: fmt.Sprintf("Hi %s,\n\n%s reviewed your activity %q and marked it as %s.\n",
			student.Name, verifier.Name(), m.Title, status),
	})

	return activityFromModel(m), nil
}

func activitiesFromModels(ms []models.Activity) []proto.Activity {
	activities := make([]proto.Activity, 0, len(ms))
	for _, m := range ms {
		activities = append(activities, activityFromModel(m))
	}
	return activities
}

func activityFromModel(m models.Activity) proto.Activity {
	a := proto.Activity{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		Hours:       m.Hours,
		Status:      m.Status,
		VerifiedBy:  m.VerifiedBy.Int64,
		CreatedAt:   m.CreatedAt,
	}
	if m.VerifiedAt.Valid {
		a.VerifiedAt = &m.VerifiedAt.Time
	}
	return a
}
