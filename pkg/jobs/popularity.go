package jobs

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/config"
)

func init() {
	Register("popularity", popularityJob{})
}

// popularityTimeout bounds a single recompute run.
const popularityTimeout = 10 * time.Minute

type popularityJob struct{}

// Spec implements Runner.
func (popularityJob) Spec(ctx context.Context) string {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg.Jobs.Popularity
	}
	return ""
}

// Func implements Runner.
func (popularityJob) Func(ctx context.Context) func() {
	be := backend.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("jobs.popularity")
	return func() {
		ctx, cancel := context.WithTimeout(ctx, popularityTimeout)
		defer cancel()

		start := time.Now()
		res, err := be.RecomputePopularity(ctx)
		if err != nil {
			logger.Error("recompute failed", "err", err, "updated", res.Updated)
			return
		}
		logger.Info("recompute finished", "updated", res.Updated, "took", time.Since(start))
	}
}
