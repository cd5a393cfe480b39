package database

import (
	"context"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/store"
)

type embeddingStore struct{}

var _ store.EmbeddingStore = (*embeddingStore)(nil)

// UpsertEmbedding implements store.EmbeddingStore.
func (*embeddingStore) UpsertEmbedding(ctx context.Context, tx db.Handler, kind string, refID int64, content string, vector string) error {
	query := tx.Rebind(`INSERT INTO embeddings (kind, ref_id, content, vector, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (kind, ref_id) DO UPDATE
			SET content = excluded.content, vector = excluded.vector, updated_at = CURRENT_TIMESTAMP;`)
	_, err := tx.ExecContext(ctx, query, kind, refID, content, vector)
	return db.WrapError(err)
}

// ListEmbeddings implements store.EmbeddingStore. An empty kind lists the
// whole index.
func (*embeddingStore) ListEmbeddings(ctx context.Context, tx db.Handler, kind string) ([]models.Embedding, error) {
	var ms []models.Embedding
	query := tx.Rebind(`SELECT * FROM embeddings WHERE (? = '' OR kind = ?) ORDER BY id;`)
	err := tx.SelectContext(ctx, &ms, query, kind, kind)
	return ms, db.WrapError(err)
}

// DeleteEmbedding implements store.EmbeddingStore.
func (*embeddingStore) DeleteEmbedding(ctx context.Context, tx db.Handler, kind string, refID int64) error {
	query := tx.Rebind(`DELETE FROM embeddings WHERE kind = ? AND ref_id = ?;`)
	_, err := tx.ExecContext(ctx, query, kind, refID)
	return db.WrapError(err)
}
