package backend

import (
	"context"
	"time"

	"github.com/pathwayhq/pathway/pkg/db"
	"github.com/pathwayhq/pathway/pkg/db/models"
	"github.com/pathwayhq/pathway/pkg/popularity"
	"github.com/pathwayhq/pathway/pkg/proto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var (
	popularityRunsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pathway",
		Subsystem: "popularity",
		Name:      "runs_total",
		Help:      "The total number of popularity recomputes",
	}, []string{"success"})

	popularityUpdatedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pathway",
		Subsystem: "popularity",
		Name:      "updated_total",
		Help:      "The total number of edition scores written",
	})
)

// RecomputePopularity rescores every edition from its counters and the
// clicks of the last 30 days. Editions are paged by id in batches of
// popularity.BatchSize; the writes of a batch run concurrently and a batch
// starts once the previous one is written. A failed run may leave earlier
// batches updated; running it again converges.
func (d *Backend) RecomputePopularity(ctx context.Context) (proto.RecomputeResult, error) {
	now := d.now()
	since := now.Add(-popularity.ClickWindow)
	start := time.Now()

	var after int64
	var updated int
	for {
		var batch []models.Edition
		var clicks map[int64]int64
		if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
			var err error
			batch, err = d.store.ListEditionsAfter(ctx, tx, after, popularity.BatchSize)
			if err != nil || len(batch) == 0 {
				return err
			}

			ids := make([]int64, len(batch))
			for i, e := range batch {
				ids[i] = e.ID
			}
			clicks, err = d.store.CountClicksSince(ctx, tx, ids, since)
			return err
		}); err != nil {
			return d.recomputeFailed(updated, db.WrapError(err))
		}
		if len(batch) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, e := range batch {
			e := e
			g.Go(func() error {
				c := popularity.Counters{
					Saves:     e.SavesCount,
					Follows:   e.FollowsCount,
					Clicks30d: clicks[e.ID],
					CreatedAt: e.CreatedAt,
				}
				return d.store.SetEditionPopularity(gctx, d.db, e.ID, popularity.Score(c, now), c.Clicks30d)
			})
		}
		if err := g.Wait(); err != nil {
			return d.recomputeFailed(updated, err)
		}

		updated += len(batch)
		popularityUpdatedCounter.Add(float64(len(batch)))
		after = batch[len(batch)-1].ID
		if len(batch) < popularity.BatchSize {
			break
		}
	}

	popularityRunsCounter.WithLabelValues("true").Inc()
	d.logger.Info("recomputed popularity", "updated", updated, "duration", time.Since(start))

	return proto.RecomputeResult{Success: true, Updated: updated}, nil
}

func (d *Backend) recomputeFailed(updated int, err error) (proto.RecomputeResult, error) {
	popularityRunsCounter.WithLabelValues("false").Inc()
	d.logger.Error("popularity recompute failed", "updated", updated, "err", err)
	return proto.RecomputeResult{Success: false, Updated: updated}, err
}
