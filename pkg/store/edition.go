package store

import (
	"context"
	"time"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
)

// Engagement is a per-user toggle on an edition.
type Engagement string

const (
	// EngagementSave is a bookmark.
	EngagementSave Engagement = "save"
	// EngagementFollow subscribes to updates.
	EngagementFollow Engagement = "follow"
)

// EditionStore is an interface for managing opportunities, their editions
// and engagement counters.
type EditionStore interface {
	CreateOpportunity(ctx context.Context, h db.Handler, orgID *int64, title string, description string, category string) (int64, error)
	GetOpportunityByID(ctx context.Context, h db.Handler, id int64) (models.Opportunity, error)

	CreateEdition(ctx context.Context, h db.Handler, opportunityID int64, name string, startsAt *time.Time, endsAt *time.Time) (int64, error)
	GetEditionByID(ctx context.Context, h db.Handler, id int64) (models.Edition, error)
	ListEditionsByPopularity(ctx context.Context, h db.Handler, limit int, offset int) ([]models.Edition, error)
	ListEditionsAfter(ctx context.Context, h db.Handler, afterID int64, limit int) ([]models.Edition, error)
	SetEditionPopularity(ctx context.Context, h db.Handler, id int64, score int64, clicks30d int64) error

	HasEngagement(ctx context.Context, h db.Handler, kind Engagement, editionID int64, userID int64) (bool, error)
	AddEngagement(ctx context.Context, h db.Handler, kind Engagement, editionID int64, userID int64) error
	RemoveEngagement(ctx context.Context, h db.Handler, kind Engagement, editionID int64, userID int64) (bool, error)
	AdjustEngagementCount(ctx context.Context, h db.Handler, kind Engagement, editionID int64, delta int64) (int64, error)

	RecordClick(ctx context.Context, h db.Handler, editionID int64, userID *int64) error
	CountClicksSince(ctx context.Context, h db.Handler, editionIDs []int64, since time.Time) (map[int64]int64, error)
}
