package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/proto"
)

// OrganizationEventsKey returns the settings key of an organization's
// events.
func OrganizationEventsKey(orgID int64) string {
	return fmt.Sprintf("organization_events_%d", orgID)
}

// Organizations lists organizations with the given status. An empty
// status lists all of them.
func (d *Backend) Organizations(ctx context.Context, status string) ([]proto.Organization, error) {
	var orgs []proto.Organization
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.ListOrganizations(ctx, tx, status)
		if err != nil {
			return err
		}
		orgs = make([]proto.Organization, 0, len(ms))
		for _, m := range ms {
			orgs = append(orgs, organizationFromModel(m))
		}
		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return orgs, nil
}

// RequestOrganization creates a pending organization with the requester as
// its first member.
func (d *Backend) RequestOrganization(ctx context.Context, requester proto.User, name, description, website string) (proto.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return proto.Organization{}, proto.NewValidationError("name", "is required")
	}

	var m models.Organization
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		id, err := d.store.CreateOrganization(ctx, tx, name, description, strings.TrimSpace(website), requester.ID())
		if err != nil {
			return err
		}
		if err := d.store.AddOrganizationMember(ctx, tx, id, requester.ID()); err != nil {
			return err
		}
		m, err = d.store.GetOrganizationByID(ctx, tx, id)
		return err
	})
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrDuplicateKey) {
			return proto.Organization{}, proto.ErrOrganizationExists
		}
		return proto.Organization{}, err
	}

	d.logger.Info("organization requested", "organization", m.ID, "name", m.Name, "user", requester.ID())
	return organizationFromModel(m), nil
}

// ReviewOrganization approves or rejects a pending organization.
func (d *Backend) ReviewOrganization(ctx context.Context, reviewer proto.User, id int64, approve bool) (proto.Organization, error) {
	status := proto.OrganizationRejected
	if approve {
		status = proto.OrganizationApproved
	}

	var m models.Organization
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		if m, err = d.store.GetOrganizationByID(ctx, tx, id); err != nil {
			return err
		}
		if m.Status != proto.OrganizationPending {
			return proto.NewValidationError("status", "organization is already %s", m.Status)
		}
		if err := d.store.SetOrganizationStatus(ctx, tx, id, status, reviewer.ID()); err != nil {
			return err
		}
		m, err = d.store.GetOrganizationByID(ctx, tx, id)
		return err
	})
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return proto.Organization{}, proto.ErrOrganizationNotFound
	}
	if err != nil {
		return proto.Organization{}, err
	}

	if approve && m.RequestedBy.Valid {
		if requester, err := d.UserByID(ctx, m.RequestedBy.Int64); err == nil {
			d.enqueueEmail(ctx, approvalMessage(requester, m.Name))
		}
	}

	return organizationFromModel(m), nil
}

// OrganizationEvents returns the organization's events document, an empty
// JSON array when none is stored.
func (d *Backend) OrganizationEvents(ctx context.Context, orgID int64) (json.RawMessage, error) {
	events := json.RawMessage("[]")
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := d.store.GetOrganizationByID(ctx, tx, orgID); err != nil {
			if errors.Is(err, db.ErrRecordNotFound) {
				return proto.ErrOrganizationNotFound
			}
			return err
		}
		s, err := d.store.GetSetting(ctx, tx, OrganizationEventsKey(orgID))
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if json.Valid([]byte(s.Value)) {
			events = json.RawMessage(s.Value)
		}
		return nil
	})
	if err != nil {
		return nil, db.WrapError(err)
	}

	return events, nil
}

// SetOrganizationEvents replaces the organization's events document. Only
// members and admins may write it.
func (d *Backend) SetOrganizationEvents(ctx context.Context, caller proto.User, orgID int64, events json.RawMessage) error {
	var list []json.RawMessage
	if err := json.Unmarshal(events, &list); err != nil {
		return proto.NewValidationError("events", "must be a JSON array")
	}

	return db.WrapError(d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := d.store.GetOrganizationByID(ctx, tx, orgID); err != nil {
			if errors.Is(err, db.ErrRecordNotFound) {
				return proto.ErrOrganizationNotFound
			}
			return err
		}
		if caller.Role() != access.Admin {
			ok, err := d.store.IsOrganizationMember(ctx, tx, orgID, caller.ID())
			if err != nil {
				return err
			}
			if !ok {
				return proto.ErrForbidden
			}
		}
		return d.store.SetSetting(ctx, tx, OrganizationEventsKey(orgID), string(events))
	}))
}

func organizationFromModel(m models.Organization) proto.Organization {
	return proto.Organization{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Website:     m.Website,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
	}
}
