// Package jobs registers the recurring background jobs.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/cron"
)

// Job is a job that can be registered with the scheduler.
type Job struct {
	ID     int
	Name   string
	Runner Runner
}

// Runner is a job runner. An empty Spec disables the job.
type Runner interface {
	Spec(context.Context) string
	Func(context.Context) func()
}

var (
	mtx  sync.Mutex
	jobs = make(map[string]*Job, 0)
)

// Register registers a job.
func Register(name string, runner Runner) {
	mtx.Lock()
	defer mtx.Unlock()
	jobs[name] = &Job{Name: name, Runner: runner}
}

// List returns the registered jobs sorted by name.
func List() []*Job {
	mtx.Lock()
	defer mtx.Unlock()
	list := make([]*Job, 0, len(jobs))
	for _, j := range jobs {
		list = append(list, j)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Schedule adds every enabled job to s.
func Schedule(ctx context.Context, s *cron.Scheduler) error {
	logger := log.FromContext(ctx).WithPrefix("jobs")
	for _, j := range List() {
		spec := j.Runner.Spec(ctx)
		if spec == "" {
			logger.Debug("job disabled", "job", j.Name)
			continue
		}
		id, err := s.AddFunc(spec, j.Runner.Func(ctx))
		if err != nil {
			return fmt.Errorf("schedule job %q: %w", j.Name, err)
		}
		j.ID = id
		logger.Debug("job scheduled", "job", j.Name, "spec", spec)
	}
	return nil
}
