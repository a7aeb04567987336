package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/config"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/metrics"
	"eduvibe/pkg/apperrors"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const jobTimeout = 5 * time.Minute

// SessionJobs is the session maintenance the scheduler drives.
type SessionJobs interface {
	SendUpcomingReminders(ctx context.Context, window time.Duration) (int, error)
	ExpireStalePending(ctx context.Context) (int, error)
}

type Job struct {
	Name     string
	Schedule string
	Run      func(ctx context.Context) (int, error)
}

type SchedulerService interface {
	Start() error
	Stop()
	Jobs() []JobInfo
	RunNow(ctx context.Context, name string) (*JobRun, error)
	ListRuns(ctx context.Context, job string, limit int64) ([]JobRun, error)
}

type SchedulerServiceImpl struct {
	Repo         RunRepository
	AuditService audit.AuditService
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
	Enabled      bool

	jobs    []Job
	cron    *cron.Cron
	entries map[string]cron.EntryID
	running map[string]bool
	mu      sync.Mutex
}

func NewSchedulerService(repo RunRepository, sessions SessionJobs, auditService audit.AuditService, m *metrics.Metrics, cfg *config.Config, logger *zap.Logger) SchedulerService {
	window := cfg.Scheduler.ReminderWindow
	return &SchedulerServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Metrics:      m,
		Logger:       logger,
		Enabled:      cfg.Scheduler.Enabled,
		jobs: []Job{
			{
				Name:     JobSessionReminders,
				Schedule: cfg.Scheduler.ReminderSchedule,
				Run: func(ctx context.Context) (int, error) {
					return sessions.SendUpcomingReminders(ctx, window)
				},
			},
			{
				Name:     JobExpirePending,
				Schedule: cfg.Scheduler.ExpirySchedule,
				Run:      sessions.ExpireStalePending,
			},
		},
		entries: make(map[string]cron.EntryID),
		running: make(map[string]bool),
	}
}

func (s *SchedulerServiceImpl) Start() error {
	if !s.Enabled {
		s.Logger.Info("scheduler disabled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cronLog := cron.PrintfLogger(zap.NewStdLog(s.Logger.Named("cron")))
	s.cron = cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog)))

	for _, job := range s.jobs {
		id, err := s.cron.AddFunc(job.Schedule, func() {
			if _, err := s.execute(context.Background(), job, "schedule"); err != nil {
				s.Logger.Error("scheduled job failed", zap.String("job", job.Name), zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Schedule, err)
		}
		s.entries[job.Name] = id
	}

	s.cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.entries)))
	return nil
}

// Stop waits for running jobs to return.
func (s *SchedulerServiceImpl) Stop() {
	s.mu.Lock()
	c := s.cron
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

func (s *SchedulerServiceImpl) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, job := range s.jobs {
		info := JobInfo{Name: job.Name, Schedule: job.Schedule}
		if id, ok := s.entries[job.Name]; ok && s.cron != nil {
			next := s.cron.Entry(id).Next
			if !next.IsZero() {
				info.NextRun = &next
			}
		}
		out = append(out, info)
	}
	return out
}

func (s *SchedulerServiceImpl) RunNow(ctx context.Context, name string) (*JobRun, error) {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.execute(ctx, job, "manual")
		}
	}
	return nil, apperrors.WithMessage(apperrors.ErrNotFound, fmt.Sprintf("unknown job %q", name))
}

func (s *SchedulerServiceImpl) ListRuns(ctx context.Context, job string, limit int64) ([]JobRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Repo.List(ctx, job, limit)
}

// execute runs job unless another run of it is still in flight.
func (s *SchedulerServiceImpl) execute(ctx context.Context, job Job, trigger string) (*JobRun, error) {
	run := &JobRun{
		ID:        primitive.NewObjectID(),
		Job:       job.Name,
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
		Status:    RunRunning,
	}

	if !s.claim(job.Name) {
		run.Status = RunSkipped
		s.Logger.Warn("job still running, skipping", zap.String("job", job.Name), zap.String("trigger", trigger))
		return run, nil
	}
	defer s.release(job.Name)

	if err := s.Repo.Create(ctx, run); err != nil {
		s.Logger.Warn("failed to record job run", zap.String("job", job.Name), zap.Error(err))
	}

	runCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	affected, execErr := job.Run(runCtx)
	cancel()

	ended := time.Now().UTC()
	run.EndedAt = &ended
	run.Affected = affected
	run.Status = RunSuccess
	if execErr != nil {
		run.Status = RunFailed
		run.Error = execErr.Error()
	}

	if err := s.Repo.Finish(ctx, run); err != nil {
		s.Logger.Warn("failed to update job run", zap.String("job", job.Name), zap.Error(err))
	}
	s.Metrics.RecordJobRun(job.Name, execErr)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCron, "scheduler", run.ID.Hex(), map[string]common_models.Change{
		"job":      {New: job.Name},
		"status":   {New: run.Status},
		"affected": {New: affected},
	})

	s.Logger.Info("job finished",
		zap.String("job", job.Name),
		zap.String("trigger", trigger),
		zap.Int("affected", affected),
		zap.Duration("took", ended.Sub(run.StartedAt)),
		zap.Error(execErr),
	)
	return run, execErr
}

func (s *SchedulerServiceImpl) claim(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *SchedulerServiceImpl) release(name string) {
	s.mu.Lock()
	delete(s.running, name)
	s.mu.Unlock()
}
