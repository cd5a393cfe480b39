package store

import (
	"context"
	"time"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
)

// ActivityStore is an interface for managing student activities.
type ActivityStore interface {
	CreateActivity(ctx context.Context, h db.Handler, userID int64, title string, description string, category string, hours float64) (int64, error)
	GetActivityByID(ctx context.Context, h db.Handler, id int64) (models.Activity, error)
	ListActivitiesByUser(ctx context.Context, h db.Handler, userID int64) ([]models.Activity, error)
	ListActivitiesByUsers(ctx context.Context, h db.Handler, userIDs []int64) ([]models.Activity, error)
	ListActivitiesByStatus(ctx context.Context, h db.Handler, status string) ([]models.Activity, error)
	SetActivityStatus(ctx context.Context, h db.Handler, id int64, status string, verifierID int64) error
	DeleteActivity(ctx context.Context, h db.Handler, id int64) error
}

// VolunteeringStore is an interface for managing volunteer hours and goals.
type VolunteeringStore interface {
	CreateParticipation(ctx context.Context, h db.Handler, userID int64, orgID *int64, description string, hours float64, occurredAt, createdAt time.Time) (int64, error)
	ListParticipationsByUser(ctx context.Context, h db.Handler, userID int64) ([]models.Participation, error)
	ListParticipationsByUsers(ctx context.Context, h db.Handler, userIDs []int64) ([]models.Participation, error)

	CreateGoal(ctx context.Context, h db.Handler, userID int64, targetHours float64, deadline *time.Time, createdAt time.Time) (int64, error)
	ListGoalsByUser(ctx context.Context, h db.Handler, userID int64) ([]models.Goal, error)
	ListGoalsByUsers(ctx context.Context, h db.Handler, userIDs []int64) ([]models.Goal, error)
	CompleteGoal(ctx context.Context, h db.Handler, id int64, at time.Time) error
}
