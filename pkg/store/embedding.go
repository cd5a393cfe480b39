package store

import (
	"context"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
)

// EmbeddingStore is an interface for the search index.
type EmbeddingStore interface {
	UpsertEmbedding(ctx context.Context, h db.Handler, kind string, refID int64, content string, vector string) error
	ListEmbeddings(ctx context.Context, h db.Handler, kind string) ([]models.Embedding, error)
	DeleteEmbedding(ctx context.Context, h db.Handler, kind string, refID int64) error
}
