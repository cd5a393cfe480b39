package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pathwayhq/pathway/pkg/access"
	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/store"
)

// DefaultEditionsLimit is the page size of Editions.
const DefaultEditionsLimit = 50

// OpportunityOptions are options for creating an opportunity.
type OpportunityOptions struct {
	OrganizationID int64
	Title          string
	Description    string
	Category       string

	// Edition is the name of the first edition. Defaults to the title.
	Edition  string
	StartsAt *time.Time
	EndsAt   *time.Time
}

// Editions returns editions ordered by popularity.
func (d *Backend) Editions(ctx context.Context, limit int, offset int) ([]proto.Edition, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultEditionsLimit
	}
	if offset < 0 {
		offset = 0
	}

	var editions []proto.Edition
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		ms, err := d.store.ListEditionsByPopularity(ctx, tx, limit, offset)
		if err != nil {
			return err
		}
		editions = make([]proto.Edition, 0, len(ms))
		for _, m := range ms {
			editions = append(editions, editionFromModel(m))
		}
		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return editions, nil
}

// Edition returns an edition. A non-zero userID fills in whether that user
// saved or follows it.
func (d *Backend) Edition(ctx context.Context, id int64, userID int64) (proto.Edition, error) {
	var e proto.Edition
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		m, err := d.store.GetEditionByID(ctx, tx, id)
		if err != nil {
			return err
		}
		e = editionFromModel(m)
		if userID == 0 {
			return nil
		}
		if e.Saved, err = d.store.HasEngagement(ctx, tx, store.EngagementSave, id, userID); err != nil {
			return err
		}
		e.Following, err = d.store.HasEngagement(ctx, tx, store.EngagementFollow, id, userID)
		return err
	})
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return proto.Edition{}, proto.ErrEditionNotFound
	}
	return e, err
}

// CreateOpportunity creates an opportunity and its first edition.
// Organization accounts may only create opportunities for organizations
// they belong to.
func (d *Backend) CreateOpportunity(ctx context.Context, caller proto.User, opts OpportunityOptions) (proto.Opportunity, proto.Edition, error) {
	opts.Title = strings.TrimSpace(opts.Title)
	if opts.Title == "" {
		return proto.Opportunity{}, proto.Edition{}, proto.NewValidationError("title", "is required")
	}
	if opts.Edition = strings.TrimSpace(opts.Edition); opts.Edition == "" {
		opts.Edition = opts.Title
	}
	if err := validateRange(opts.StartsAt, opts.EndsAt); err != nil {
		return proto.Opportunity{}, proto.Edition{}, err
	}

	var orgID *int64
	if opts.OrganizationID > 0 {
		orgID = &opts.OrganizationID
	}

	var opp models.Opportunity
	var ed models.Edition
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if err := d.checkOrganizationAccess(ctx, tx, caller, opts.OrganizationID); err != nil {
			return err
		}

		oppID, err := d.store.CreateOpportunity(ctx, tx, orgID, opts.Title, opts.Description, opts.Category)
		if err != nil {
			return err
		}
		edID, err := d.store.CreateEdition(ctx, tx, oppID, opts.Edition, opts.StartsAt, opts.EndsAt)
		if err != nil {
			return err
		}

		if opp, err = d.store.GetOpportunityByID(ctx, tx, oppID); err != nil {
			return err
		}
		ed, err = d.store.GetEditionByID(ctx, tx, edID)
		return err
	})
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrForeignKey) {
			return proto.Opportunity{}, proto.Edition{}, proto.ErrOrganizationNotFound
		}
		return proto.Opportunity{}, proto.Edition{}, err
	}

	d.enqueueIndex(ctx, searchKindOpportunity, opp.ID, opp.Title+"\n"+opp.Category+"\n"+opp.Description)

	return opportunityFromModel(opp), editionFromModel(ed), nil
}

// CreateEdition adds an edition to an existing opportunity.
func (d *Backend) CreateEdition(ctx context.Context, caller proto.User, opportunityID int64, name string, startsAt, endsAt *time.Time) (proto.Edition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return proto.Edition{}, proto.NewValidationError("name", "is required")
	}
	if err := validateRange(startsAt, endsAt); err != nil {
		return proto.Edition{}, err
	}

	var ed models.Edition
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		opp, err := d.store.GetOpportunityByID(ctx, tx, opportunityID)
		if err != nil {
			if errors.Is(err, db.ErrRecordNotFound) {
				return proto.ErrOpportunityNotFound
			}
			return err
		}
		if err := d.checkOrganizationAccess(ctx, tx, caller, opp.OrganizationID.Int64); err != nil {
			return err
		}

		id, err := d.store.CreateEdition(ctx, tx, opportunityID, name, startsAt, endsAt)
		if err != nil {
			return err
		}
		ed, err = d.store.GetEditionByID(ctx, tx, id)
		return err
	})
	if err != nil {
		return proto.Edition{}, db.WrapError(err)
	}

	return editionFromModel(ed), nil
}

// ToggleSave saves the edition for the user, or removes the save when
// present.
func (d *Backend) ToggleSave(ctx context.Context, editionID int64, userID int64) (proto.SaveResult, error) {
	on, count, err := d.toggle(ctx, store.EngagementSave, editionID, userID)
	if err != nil {
		return proto.SaveResult{}, err
	}
	return proto.SaveResult{Saved: on, SavesCount: count}, nil
}

// ToggleFollow follows the edition for the user, or unfollows it when
// already followed.
func (d *Backend) ToggleFollow(ctx context.Context, editionID int64, userID int64) (proto.FollowResult, error) {
	on, count, err := d.toggle(ctx, store.EngagementFollow, editionID, userID)
	if err != nil {
		return proto.FollowResult{}, err
	}
	return proto.FollowResult{Following: on, FollowsCount: count}, nil
}

// toggle flips an engagement and adjusts its counter in one transaction.
// Two concurrent first toggles race on the join table's unique key; the
// loser fails with db.ErrDuplicateKey.
func (d *Backend) toggle(ctx context.Context, kind store.Engagement, editionID int64, userID int64) (bool, int64, error) {
	var on bool
	var count int64
	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := d.store.GetEditionByID(ctx, tx, editionID); err != nil {
			return err
		}

		removed, err := d.store.RemoveEngagement(ctx, tx, kind, editionID, userID)
		if err != nil {
			return err
		}

		delta := int64(-1)
		if !removed {
			if err := d.store.AddEngagement(ctx, tx, kind, editionID, userID); err != nil {
				return err
			}
			delta = 1
		}

		on = !removed
		count, err = d.store.AdjustEngagementCount(ctx, tx, kind, editionID, delta)
		return err
	})
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return false, 0, proto.ErrEditionNotFound
	}
	if err != nil {
		return false, 0, err
	}

	d.logger.Debug("toggled engagement", "kind", kind, "edition", editionID, "user", userID, "on", on)
	return on, count, nil
}

// RecordClick logs a click on an edition. A zero userID records an
// anonymous click.
func (d *Backend) RecordClick(ctx context.Context, editionID int64, userID int64) error {
	var uid *int64
	if userID > 0 {
		uid = &userID
	}

	err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		if _, err := d.store.GetEditionByID(ctx, tx, editionID); err != nil {
			return err
		}
		return d.store.RecordClick(ctx, tx, editionID, uid)
	})
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return proto.ErrEditionNotFound
	}
	return err
}

// checkOrganizationAccess allows admins everywhere and organization
// accounts on organizations they are members of.
func (d *Backend) checkOrganizationAccess(ctx context.Context, tx db.Handler, caller proto.User, orgID int64) error {
	if caller == nil {
		return proto.ErrUnauthorized
	}
	if caller.Role() == access.Admin {
		return nil
	}
	if orgID == 0 {
		return proto.NewValidationError("organizationId", "is required")
	}

	org, err := d.store.GetOrganizationByID(ctx, tx, orgID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return proto.ErrOrganizationNotFound
		}
		return err
	}
	if org.Status != proto.OrganizationApproved {
		return proto.ErrForbidden
	}

	ok, err := d.store.IsOrganizationMember(ctx, tx, orgID, caller.ID())
	if err != nil {
		return err
	}
	if !ok {
		return proto.ErrForbidden
	}
	return nil
}

func validateRange(startsAt, endsAt *time.Time) error {
	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return proto.NewValidationError("endsAt", "must not be before startsAt")
	}
	return nil
}

func editionFromModel(m models.Edition) proto.Edition {
	e := proto.Edition{
		ID:              m.ID,
		OpportunityID:   m.OpportunityID,
		Name:            m.Name,
		SavesCount:      m.SavesCount,
		FollowsCount:    m.FollowsCount,
		Clicks30d:       m.Clicks30d,
		PopularityScore: m.PopularityScore,
		CreatedAt:       m.CreatedAt,
	}
	if m.StartsAt.Valid {
		e.StartsAt = &m.StartsAt.Time
	}
	if m.EndsAt.Valid {
		e.EndsAt = &m.EndsAt.Time
	}
	return e
}

func opportunityFromModel(m models.Opportunity) proto.Opportunity {
	return proto.Opportunity{
		ID:             m.ID,
		OrganizationID: m.OrganizationID.Int64,
		Title:          m.Title,
		Description:    m.Description,
		Category:       m.Category,
		CreatedAt:      m.CreatedAt,
	}
}
