package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/config"
	"github.com/Benevo-clic/benevoclic-api/databases"
)

const defaultTimeout = 5 * time.Minute

// Task is a recurring job. Run receives a context bounded by Timeout.
type Task struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler runs tasks on their cron spec in UTC
type Scheduler struct {
	cron       *cron.Cron
	LockDB     databases.SchedulerLockDatabase
	tasks      []Task
	instanceID string
}

// NewScheduler creates a new scheduler instance. lockDB may be nil, in which case
// every instance runs every task.
func NewScheduler(lockDB databases.SchedulerLockDatabase, tasks ...Task) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("HOSTNAME")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%s", uuid.NewString())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		LockDB:     lockDB,
		tasks:      tasks,
		instanceID: instanceID,
	}
}

// Start registers every task and begins the scheduler. A task with a bad spec is
// logged and skipped.
func (s *Scheduler) Start() {
	for _, t := range s.tasks {
		t := t
		if _, err := s.cron.AddFunc(t.Spec, func() { s.run(t) }); err != nil {
			zap.S().Errorw("failed to register job", "job", t.Name, "spec", t.Spec, "error", err)
			continue
		}
		zap.S().Infow("registered job", "job", t.Name, "spec", t.Spec)
	}

	s.cron.Start()
	zap.S().Infow("scheduler started", "instance", s.instanceID)
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

func (s *Scheduler) run(t Task) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.LockDB != nil {
		// lease outlives the timeout so a slow run is never overlapped
		acquired, err := s.LockDB.TryAcquireLock(ctx, t.Name, s.instanceID, 2*timeout)
		if err != nil {
			zap.S().Errorw("failed to acquire lock", "job", t.Name, "error", err)
			return
		}
		if !acquired {
			zap.S().Debugw("job already running on another instance, skipping", "job", t.Name)
			return
		}
		defer func() {
			if err := s.LockDB.ReleaseLock(context.Background(), t.Name, s.instanceID); err != nil {
				zap.S().Warnw("failed to release lock", "job", t.Name, "error", err)
			}
		}()
	}

	start := time.Now()
	zap.S().Infow("running job", "job", t.Name, "instance", s.instanceID)
	if err := t.Run(ctx); err != nil {
		zap.S().Errorw("job failed", "job", t.Name, "duration", time.Since(start), "error", err)
		return
	}
	zap.S().Infow("job finished", "job", t.Name, "duration", time.Since(start))
}

// Reconciler is the subset of the orphan reconciler the scheduled jobs call
type Reconciler interface {
	CleanupOrphanFavorites(ctx context.Context) error
	CleanupOrphanVolunteers(ctx context.Context) error
}

// ReconcileTasks builds the orphan cleanup jobs. An empty spec disables a job.
func ReconcileTasks(conf config.ReconcileConfig, r Reconciler) []Task {
	var tasks []Task
	if conf.FavoritesCron != "" {
		tasks = append(tasks, Task{
			Name: "orphan_favorites_cleanup",
			Spec: conf.FavoritesCron,
			Run:  r.CleanupOrphanFavorites,
		})
	}
	if conf.VolunteersCron != "" {
		tasks = append(tasks, Task{
			Name:    "orphan_volunteers_cleanup",
			Spec:    conf.VolunteersCron,
			Timeout: 15 * time.Minute,
			Run:     r.CleanupOrphanVolunteers,
		})
	}
	return tasks
}
