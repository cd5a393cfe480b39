package jobs

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matryer/is"
	"github.com/pathwayhq/pathway/pkg/backend"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/pathwayhq/pathway/pkg/cron"
	"github.com/pathwayhq/pathway/pkg/store/database"
	"github.com/pathwayhq/pathway/pkg/test"
)

func TestRegistry(t *testing.T) {
	is := is.New(t)
	names := make([]string, 0)
	for _, j := range List() {
		names = append(names, j.Name)
	}
	is.Equal(names, []string{"popularity"})
}

func TestSchedule(t *testing.T) {
	is := is.New(t)
	ctx := log.WithContext(context.TODO(), log.New(io.Discard))

	cfg := config.DefaultConfig()
	ctx = config.WithContext(ctx, cfg)
	s := cron.NewScheduler(ctx)
	is.NoErr(Schedule(ctx, s))
	is.Equal(len(s.Entries()), 1)

	cfg.Jobs.Popularity = ""
	s = cron.NewScheduler(ctx)
	is.NoErr(Schedule(ctx, s))
	is.Equal(len(s.Entries()), 0)

	cfg.Jobs.Popularity = "not a schedule"
	is.True(Schedule(ctx, cron.NewScheduler(ctx)) != nil)
}

func TestPopularityJob(t *testing.T) {
	is := is.New(t)
	ctx := log.WithContext(context.TODO(), log.New(io.Discard))
	dbx := test.OpenDB(ctx, t)

	cfg := config.DefaultConfig()
	be, err := backend.New(ctx, cfg, dbx, database.New(ctx, dbx))
	is.NoErr(err)
	t.Cleanup(func() {
		if err := be.Close(); err != nil {
			t.Errorf("close backend: %v", err)
		}
	})

	ctx = config.WithContext(ctx, cfg)
	ctx = backend.WithContext(ctx, be)

	job := popularityJob{}
	is.Equal(job.Spec(ctx), cfg.Jobs.Popularity)

	done := make(chan struct{})
	go func() {
		job.Func(ctx)()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("popularity job did not finish")
	}
}
