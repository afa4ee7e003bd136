// Package scheduler runs the periodic housekeeping jobs of the register on
// cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sangkips/pos-api/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// Job is a named unit of work run on a cron spec
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler wraps a cron runner. Overlapping runs of one job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	log     *logrus.Entry
	timeout time.Duration
	jobs    map[string]Job
}

// New creates a scheduler whose jobs each run under timeout
func New(log *logger.Logger, timeout time.Duration) *Scheduler {
	entry := log.Component("scheduler")
	cl := cronLogger{entry}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		log:     entry,
		timeout: timeout,
		jobs:    make(map[string]Job),
	}
}

// Add registers a job. An empty spec disables the job.
func (s *Scheduler) Add(job Job) error {
	if job.Spec == "" {
		s.log.WithField("job", job.Name).Info("job disabled")
		return nil
	}
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("scheduler: job %q already registered", job.Name)
	}
	if _, err := s.cron.AddFunc(job.Spec, func() { s.RunNow(context.Background(), job.Name) }); err != nil {
		return fmt.Errorf("scheduler: job %q: %w", job.Name, err)
	}
	s.jobs[job.Name] = job
	s.log.WithFields(logrus.Fields{"job": job.Name, "spec": job.Spec}).Info("job scheduled")
	return nil
}

// RunNow runs a registered job immediately and reports whether it succeeded
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("scheduler: unknown job %q", name)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := job.Run(ctx)
	metrics.RecordJobRun(job.Name, err == nil)

	fields := logrus.Fields{"job": job.Name, "elapsed": time.Since(start).String()}
	if err != nil {
		s.log.WithFields(fields).WithError(err).Error("job failed")
		return err
	}
	s.log.WithFields(fields).Info("job finished")
	return nil
}

// Len returns the number of scheduled jobs
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start runs the cron loop in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs, up to ctx
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stopped before running jobs finished")
	}
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(kvFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(kvFields(keysAndValues)).WithError(err).Error(msg)
}

func kvFields(kv []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
