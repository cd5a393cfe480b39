package database

import (
	"context"
	"time"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/store"
)

type activityStore struct{}

var _ store.ActivityStore = (*activityStore)(nil)

// CreateActivity implements store.ActivityStore.
func (*activityStore) CreateActivity(ctx context.Context, tx db.Handler, userID int64, title string, description string, category string, hours float64) (int64, error) {
	query := tx.Rebind(`INSERT INTO activities (user_id, title, description, category, hours, status, updated_at)
			VALUES (?, ?, ?, ?, ?, 'pending', CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := tx.GetContext(ctx, &id, query, userID, title, description, category, hours); err != nil {
		return 0, db.WrapError(err)
	}
	return id, nil
}

// GetActivityByID implements store.ActivityStore.
func (*activityStore) GetActivityByID(ctx context.Context, tx db.Handler, id int64) (models.Activity, error) {
	var m models.Activity
	query := tx.Rebind(`SELECT * FROM activities WHERE id = ?;`)
	err := tx.GetContext(ctx, &m, query, id)
	return m, db.WrapError(err)
}

// ListActivitiesByUser implements store.ActivityStore.
func (*activityStore) ListActivitiesByUser(ctx context.Context, tx db.Handler, userID int64) ([]models.Activity, error) {
	var ms []models.Activity
	query := tx.Rebind(`SELECT * FROM activities WHERE user_id = ? ORDER BY created_at DESC, id DESC;`)
	err := tx.SelectContext(ctx, &ms, query, userID)
	return ms, db.WrapError(err)
}

// ListActivitiesByUsers implements store.ActivityStore.
func (*activityStore) ListActivitiesByUsers(ctx context.Context, tx db.Handler, userIDs []int64) ([]models.Activity, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := db.In(tx, `SELECT * FROM activities WHERE user_id IN (?) ORDER BY id;`, userIDs)
	if err != nil {
		return nil, err
	}
	var ms []models.Activity
	err = tx.SelectContext(ctx, &ms, query, args...)
	return ms, db.WrapError(err)
}

// ListActivitiesByStatus implements store.ActivityStore.
func (*activityStore) ListActivitiesByStatus(ctx context.Context, tx db.Handler, status string) ([]models.Activity, error) {
	var ms []models.Activity
	query := tx.Rebind(`SELECT * FROM activities WHERE status = ? ORDER BY created_at ASC, id ASC;`)
	err := tx.SelectContext(ctx, &ms, query, status)
	return ms, db.WrapError(err)
}

// SetActivityStatus implements store.ActivityStore.
func (*activityStore) SetActivityStatus(ctx context.Context, tx db.Handler, id int64, status string, verifierID int64) error {
	query := tx.Rebind(`UPDATE activities
			SET status = ?, verified_by = ?, verified_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, status, verifierID, id)
	return db.WrapError(err)
}

// DeleteActivity implements store.ActivityStore.
func (*activityStore) DeleteActivity(ctx context.Context, tx db.Handler, id int64) error {
	query := tx.Rebind(`DELETE FROM activities WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, id)
	return db.WrapError(err)
}

type volunteeringStore struct{}

var _ store.VolunteeringStore = (*volunteeringStore)(nil)

// CreateParticipation implements store.VolunteeringStore. createdAt is
// stored at full precision since goal progress compares it with the goal's
// creation time.
func (*volunteeringStore) CreateParticipation(ctx context.Context, tx db.Handler, userID int64, orgID *int64, description string, hours float64, occurredAt, createdAt time.Time) (int64, error) {
	query := tx.Rebind(`INSERT INTO volunteering_participations (user_id, organization_id, description, hours, occurred_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id;`)
	var id int64
	createdAt = createdAt.UTC()
	if err := tx.GetContext(ctx, &id, query, userID, orgID, description, hours, occurredAt.UTC(), createdAt, createdAt); err != nil {
		return 0, db.WrapError(err)
	}
	return id, nil
}

// ListParticipationsByUser implements store.VolunteeringStore.
func (*volunteeringStore) ListParticipationsByUser(ctx context.Context, tx db.Handler, userID int64) ([]models.Participation, error) {
	var ms []models.Participation
	query := tx.Rebind(`SELECT * FROM volunteering_participations WHERE user_id = ? ORDER BY occurred_at DESC, id DESC;`)
	err := tx.SelectContext(ctx, &ms, query, userID)
	return ms, db.WrapError(err)
}

// ListParticipationsByUsers implements store.VolunteeringStore.
func (*volunteeringStore) ListParticipationsByUsers(ctx context.Context, tx db.Handler, userIDs []int64) ([]models.Participation, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := db.In(tx, `SELECT * FROM volunteering_participations WHERE user_id IN (?) ORDER BY id;`, userIDs)
	if err != nil {
		return nil, err
	}
	var ms []models.Participation
	err = tx.SelectContext(ctx, &ms, query, args...)
	return ms, db.WrapError(err)
}

// CreateGoal implements store.VolunteeringStore.
func (*volunteeringStore) CreateGoal(ctx context.Context, tx db.Handler, userID int64, targetHours float64, deadline *time.Time, createdAt time.Time) (int64, error) {
	query := tx.Rebind(`INSERT INTO volunteering_goals (user_id, target_hours, deadline, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?) RETURNING id;`)
	var id int64
	createdAt = createdAt.UTC()
	if err := tx.GetContext(ctx, &id, query, userID, targetHours, deadline, createdAt, createdAt); err != nil {
		return 0, db.WrapError(err)
	}
	return id, nil
}

// ListGoalsByUser implements store.VolunteeringStore.
func (*volunteeringStore) ListGoalsByUser(ctx context.Context, tx db.Handler, userID int64) ([]models.Goal, error) {
	var ms []models.Goal
	query := tx.Rebind(`SELECT * FROM volunteering_goals WHERE user_id = ? ORDER BY id;`)
	err := tx.SelectContext(ctx, &ms, query, userID)
	return ms, db.WrapError(err)
}

// ListGoalsByUsers implements store.VolunteeringStore.
func (*volunteeringStore) ListGoalsByUsers(ctx context.Context, tx db.Handler, userIDs []int64) ([]models.Goal, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := db.In(tx, `SELECT * FROM volunteering_goals WHERE user_id IN (?) ORDER BY id;`, userIDs)
	if err != nil {
		return nil, err
	}
	var ms []models.Goal
	err = tx.SelectContext(ctx, &ms, query, args...)
	return ms, db.WrapError(err)
}

// CompleteGoal implements store.VolunteeringStore. Completed goals keep
// their original completion time.
func (*volunteeringStore) CompleteGoal(ctx context.Context, tx db.Handler, id int64, at time.Time) error {
	query := tx.Rebind(`UPDATE volunteering_goals SET completed_at = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND completed_at IS NULL;`)
	_, err := tx.ExecContext(ctx, query, at.UTC(), id)
	return db.WrapError(err)
}
