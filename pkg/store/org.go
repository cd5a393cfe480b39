package store

import (
	"context"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
)

// OrgStore is an interface for managing organizations and their members.
type OrgStore interface {
	CreateOrganization(ctx context.Context, h db.Handler, name string, description string, website string, requestedBy int64) (int64, error)
	GetOrganizationByID(ctx context.Context, h db.Handler, id int64) (models.Organization, error)
	ListOrganizations(ctx context.Context, h db.Handler, status string) ([]models.Organization, error)
	SetOrganizationStatus(ctx context.Context, h db.Handler, id int64, status string, reviewerID int64) error
	AddOrganizationMember(ctx context.Context, h db.Handler, orgID int64, userID int64) error
	IsOrganizationMember(ctx context.Context, h db.Handler, orgID int64, userID int64) (bool, error)
}
