package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/store"
)

type editionStore struct{}

var _ store.EditionStore = (*editionStore)(nil)

// engagementTables maps an engagement to its join table and counter column.
var engagementTables = map[store.Engagement]struct {
	table   string
	counter string
}{
	store.EngagementSave:   {"edition_saves", "saves_count"},
	store.EngagementFollow: {"edition_follows", "follows_count"},
}

func engagementTable(kind store.Engagement) (string, string, error) {
	t, ok := engagementTables[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown engagement %q", kind)
	}
	return t.table, t.counter, nil
}

// CreateOpportunity implements store.EditionStore.
func (*editionStore) CreateOpportunity(ctx context.Context, tx db.Handler, orgID *int64, title string, description string, category string) (int64, error) {
	query := tx.Rebind(`INSERT INTO opportunities (organization_id, title, description, category, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := tx.GetContext(ctx, &id, query, orgID, title, description, category); err != nil {
		return 0, db.WrapError(err)
	}
	return id, nil
}

// GetOpportunityByID implements store.EditionStore.
func (*editionStore) GetOpportunityByID(ctx context.Context, tx db.Handler, id int64) (models.Opportunity, error) {
	var m models.Opportunity
	query := tx.Rebind(`SELECT * FROM opportunities WHERE id = ?;`)
	err := tx.GetContext(ctx, &m, query, id)
	return m, db.WrapError(err)
}

// CreateEdition implements store.EditionStore.
func (*editionStore) CreateEdition(ctx context.Context, tx db.Handler, opportunityID int64, name string, startsAt *time.Time, endsAt *time.Time) (int64, error) {
	query := tx.Rebind(`INSERT INTO editions (opportunity_id, name, starts_at, ends_at, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := tx.GetContext(ctx, &id, query, opportunityID, name, startsAt, endsAt); err != nil {
		return 0, db.WrapError(err)
	}
	return id, nil
}

// GetEditionByID implements store.EditionStore.
func (*editionStore) GetEditionByID(ctx context.Context, tx db.Handler, id int64) (models.Edition, error) {
	var m models.Edition
	query := tx.Rebind(`SELECT * FROM editions WHERE id = ?;`)
	err := tx.GetContext(ctx, &m, query, id)
	return m, db.WrapError(err)
}

// ListEditionsByPopularity implements store.EditionStore.
func (*editionStore) ListEditionsByPopularity(ctx context.Context, tx db.Handler, limit int, offset int) ([]models.Edition, error) {
	var ms []models.Edition
	query := tx.Rebind(`SELECT * FROM editions ORDER BY popularity_score DESC, id ASC LIMIT ? OFFSET ?;`)
	err := tx.SelectContext(ctx, &ms, query, limit, offset)
	return ms, db.WrapError(err)
}

// ListEditionsAfter implements store.EditionStore. It pages through every
// edition by ascending id.
func (*editionStore) ListEditionsAfter(ctx context.Context, tx db.Handler, afterID int64, limit int) ([]models.Edition, error) {
	var ms []models.Edition
	query := tx.Rebind(`SELECT * FROM editions WHERE id > ? ORDER BY id ASC LIMIT ?;`)
	err := tx.SelectContext(ctx, &ms, query, afterID, limit)
	return ms, db.WrapError(err)
}

// SetEditionPopularity implements store.EditionStore.
func (*editionStore) SetEditionPopularity(ctx context.Context, tx db.Handler, id int64, score int64, clicks30d int64) error {
	query := tx.Rebind(`UPDATE editions SET popularity_score = ?, clicks_30d = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, score, clicks30d, id)
	return db.WrapError(err)
}

// HasEngagement implements store.EditionStore.
func (*editionStore) HasEngagement(ctx context.Context, tx db.Handler, kind store.Engagement, editionID int64, userID int64) (bool, error) {
	table, _, err := engagementTable(kind)
	if err != nil {
		return false, err
	}
	var n int
	query := tx.Rebind(`SELECT COUNT(*) FROM ` + table + ` WHERE edition_id = ? AND user_id = ?;`)
	if err := tx.GetContext(ctx, &n, query, editionID, userID); err != nil {
		return false, db.WrapError(err)
	}
	return n > 0, nil
}

// AddEngagement implements store.EditionStore. A concurrent insert of the
// same pair fails with db.ErrDuplicateKey.
func (*editionStore) AddEngagement(ctx context.Context, tx db.Handler, kind store.Engagement, editionID int64, userID int64) error {
	table, _, err := engagementTable(kind)
	if err != nil {
		return err
	}
	query := tx.Rebind(`INSERT INTO ` + table + ` (edition_id, user_id) VALUES (?, ?);`)
	_, err = tx.ExecContext(ctx, query, editionID, userID)
	return db.WrapError(err)
}

// RemoveEngagement implements store.EditionStore. It reports whether a row
// was deleted.
func (*editionStore) RemoveEngagement(ctx context.Context, tx db.Handler, kind store.Engagement, editionID int64, userID int64) (bool, error) {
	table, _, err := engagementTable(kind)
	if err != nil {
		return false, err
	}
	query := tx.Rebind(`DELETE FROM ` + table + ` WHERE edition_id = ? AND user_id = ?;`)
	res, err := tx.ExecContext(ctx, query, editionID, userID)
	if err != nil {
		return false, db.WrapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AdjustEngagementCount implements store.EditionStore. The counter never
// drops below zero. It returns the new value.
func (*editionStore) AdjustEngagementCount(ctx context.Context, tx db.Handler, kind store.Engagement, editionID int64, delta int64) (int64, error) {
	_, counter, err := engagementTable(kind)
	if err != nil {
		return 0, err
	}
	query := tx.Rebind(`UPDATE editions
			SET ` + counter + ` = CASE WHEN ` + counter + ` + ? < 0 THEN 0 ELSE ` + counter + ` + ? END,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? RETURNING ` + counter + `;`)
	var count int64
	if err := tx.GetContext(ctx, &count, query, delta, delta, editionID); err != nil {
		return 0, db.WrapError(err)
	}
	return count, nil
}

// RecordClick implements store.EditionStore. It logs the click and bumps
// the rolling counter; the recompute job trims the counter back to the
// 30-day window.
func (*editionStore) RecordClick(ctx context.Context, tx db.Handler, editionID int64, userID *int64) error {
	query := tx.Rebind(`INSERT INTO edition_clicks (edition_id, user_id) VALUES (?, ?);`)
	if _, err := tx.ExecContext(ctx, query, editionID, userID); err != nil {
		return db.WrapError(err)
	}
	query = tx.Rebind(`UPDATE editions SET clicks_30d = clicks_30d + 1 WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, editionID)
	return db.WrapError(err)
}

// CountClicksSince implements store.EditionStore. Editions without clicks
// are absent from the result.
func (*editionStore) CountClicksSince(ctx context.Context, tx db.Handler, editionIDs []int64, since time.Time) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(editionIDs))
	if len(editionIDs) == 0 {
		return counts, nil
	}

	query, args, err := db.In(tx, `SELECT edition_id, COUNT(*) AS clicks FROM edition_clicks
			WHERE edition_id IN (?) AND created_at >= ?
			GROUP BY edition_id;`, editionIDs, since.UTC())
	if err != nil {
		return nil, err
	}

	var rows []struct {
		EditionID int64 `db:"edition_id"`
		Clicks    int64 `db:"clicks"`
	}
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, db.WrapError(err)
	}
	for _, r := range rows {
		counts[r.EditionID] = r.Clicks
	}
	return counts, nil
}
