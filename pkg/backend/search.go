package backend

import (
	"context"
	"errors"
	"strings"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/pathwayhq/pathway/pkg/search"
)

// Indexed document kinds.
const (
	searchKindActivity    = "activity"
	searchKindOpportunity = "opportunity"
)

// DefaultSearchLimit is the number of matches Search returns by default.
const DefaultSearchLimit = 5

// IndexDocument embeds content and stores it in the search index. It is a
// no-op when search is disabled.
func (d *Backend) IndexDocument(ctx context.Context, kind string, refID int64, content string) error {
	vec, err := d.embedder.Embed(ctx, content)
	if errors.Is(err, search.ErrDisabled) {
		return nil
	}
	if err != nil {
		return err
	}

	encoded, err := search.EncodeVector(vec)
	if err != nil {
		return err
	}

	return db.WrapError(d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return d.store.UpsertEmbedding(ctx, tx, kind, refID, content, encoded)
	}))
}

// UnindexDocument removes a document from the search index.
func (d *Backend) UnindexDocument(ctx context.Context, kind string, refID int64) error {
	return db.WrapError(d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return d.store.DeleteEmbedding(ctx, tx, kind, refID)
	}))
}

// Search ranks opportunities and the caller's own activities against the
// query. It returns search.ErrDisabled when no embeddings endpoint is
// configured.
func (d *Backend) Search(ctx context.Context, caller proto.User, query string, limit int) ([]search.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, proto.NewValidationError("query", "is required")
	}
	if limit <= 0 || limit > 50 {
		limit = DefaultSearchLimit
	}

	vec, err := d.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	var docs []search.Document
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		opps, err := d.store.ListEmbeddings(ctx, tx, searchKindOpportunity)
		if err != nil {
			return err
		}
		acts, err := d.store.ListEmbeddings(ctx, tx, searchKindActivity)
		if err != nil {
			return err
		}
		own, err := d.store.ListActivitiesByUser(ctx, tx, caller.ID())
		if err != nil {
			return err
		}
		mine := make(map[int64]struct{}, len(own))
		for _, a := range own {
			mine[a.ID] = struct{}{}
		}

		for _, e := range append(opps, acts...) {
			if e.Kind == searchKindActivity {
				if _, ok := mine[e.RefID]; !ok {
					continue
				}
			}
			v, err := search.DecodeVector(e.Vector)
			if err != nil {
				d.logger.Warn("skipping malformed vector", "kind", e.Kind, "ref", e.RefID, "err", err)
				continue
			}
			docs = append(docs, search.Document{Kind: e.Kind, RefID: e.RefID, Content: e.Content, Vector: v})
		}
		return nil
	}); err != nil {
		return nil, db.WrapError(err)
	}

	return search.Rank(vec, docs, limit, 0), nil
}
