package database

import (
	"context"
	"strings"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/store"
)

type orgStore struct{}

var _ store.OrgStore = (*orgStore)(nil)

// CreateOrganization implements store.OrgStore. New organizations start
// pending approval.
func (*orgStore) CreateOrganization(ctx context.Context, tx db.Handler, name string, description string, website string, requestedBy int64) (int64, error) {
	query := tx.Rebind(`INSERT INTO organizations (name, description, website, status, requested_by, updated_at)
			VALUES (?, ?, ?, 'pending', ?, CURRENT_TIMESTAMP) RETURNING id;`)
	var id int64
	if err := tx.GetContext(ctx, &id, query, strings.TrimSpace(name), description, website, requestedBy); err != nil {
		return 0, db.WrapError(err)
	}
	return id, nil
}

// GetOrganizationByID implements store.OrgStore.
func (*orgStore) GetOrganizationByID(ctx context.Context, tx db.Handler, id int64) (models.Organization, error) {
	var m models.Organization
	query := tx.Rebind(`SELECT * FROM organizations WHERE id = ?;`)
	err := tx.GetContext(ctx, &m, query, id)
	return m, db.WrapError(err)
}

// ListOrganizations implements store.OrgStore. An empty status lists every
// organization.
func (*orgStore) ListOrganizations(ctx context.Context, tx db.Handler, status string) ([]models.Organization, error) {
	var ms []models.Organization
	query := tx.Rebind(`SELECT * FROM organizations WHERE (? = '' OR status = ?) ORDER BY name;`)
	err := tx.SelectContext(ctx, &ms, query, status, status)
	return ms, db.WrapError(err)
}

// SetOrganizationStatus implements store.OrgStore.
func (*orgStore) SetOrganizationStatus(ctx context.Context, tx db.Handler, id int64, status string, reviewerID int64) error {
	query := tx.Rebind(`UPDATE organizations
			SET status = ?, reviewed_by = ?, reviewed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, status, reviewerID, id)
	return db.WrapError(err)
}

// AddOrganizationMember implements store.OrgStore.
func (*orgStore) AddOrganizationMember(ctx context.Context, tx db.Handler, orgID int64, userID int64) error {
	query := tx.Rebind(`INSERT INTO organization_members (organization_id, user_id) VALUES (?, ?);`)
	_, err := tx.ExecContext(ctx, query, orgID, userID)
	return db.WrapError(err)
}

// IsOrganizationMember implements store.OrgStore.
func (*orgStore) IsOrganizationMember(ctx context.Context, tx db.Handler, orgID int64, userID int64) (bool, error) {
	var n int
	query := tx.Rebind(`SELECT COUNT(*) FROM organization_members WHERE organization_id = ? AND user_id = ?;`)
	if err := tx.GetContext(ctx, &n, query, orgID, userID); err != nil {
		return false, db.WrapError(err)
	}
	return n > 0, nil
}
