// Package scheduler owns the lifecycle of repeat jobs: registration,
// periodic firing, natural completion, forced stop, failure handling and
// history reconciliation. A job is Running until it reaches exactly one of
// the terminal states (completed, stopped, error, expired); there is no
// resumption.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/burstline/core/pkg/history"
	"github.com/burstline/core/pkg/logger"
	"github.com/burstline/core/pkg/models"
	"github.com/burstline/core/pkg/registry"
	"github.com/burstline/core/pkg/services"
)

// ErrNotFound is returned by Stop when the position resolves to no active
// job, including a job that already reached a terminal state.
var ErrNotFound = errors.New("process not found")

// Options tune the scheduler's fixed delays.
type Options struct {
	// Linger keeps a completed job visible in the live listing so an
	// in-flight read can still observe the final count.
	Linger time.Duration
	// DeadlineSlack is added to target*interval for the expiry deadline.
	DeadlineSlack time.Duration
	// TickTimeout bounds one action attempt.
	TickTimeout time.Duration
}

func (o *Options) withDefaults() {
	if o.Linger <= 0 {
		o.Linger = 5 * time.Second
	}
	if o.DeadlineSlack <= 0 {
		o.DeadlineSlack = 10 * time.Second
	}
	if o.TickTimeout <= 0 {
		o.TickTimeout = 30 * time.Second
	}
}

// StartRequest carries everything needed to register and fire a job.
type StartRequest struct {
	SessionID int64
	Username  string
	URL       string
	TargetID  string
	Token     string
	Target    int
	Interval  time.Duration
	Action    services.Action
}

// Scheduler drives all active jobs off one shared cron instance: each job
// gets an @every entry for its periodic tick plus a deadline timer. Both
// share the per-job terminal flag as their cancellation point, so whichever
// transition wins cancels the other and a stale firing becomes a no-op.
type Scheduler struct {
	jobs     *registry.JobRegistry
	sessions *registry.SessionRegistry
	history  *history.Store
	cron     *cron.Cron
	logger   *logger.Logger
	opts     Options

	mu     sync.Mutex
	active map[models.JobKey]*jobState
}

type jobState struct {
	entryID  cron.EntryID
	deadline *time.Timer
	action   services.Action
	token    string
	target   int
	terminal bool
}

func New(jobs *registry.JobRegistry, sessions *registry.SessionRegistry, hist *history.Store, log *logger.Logger, opts Options) *Scheduler {
	opts.withDefaults()
	s := &Scheduler{
		jobs:     jobs,
		sessions: sessions,
		history:  hist,
		logger:   log,
		opts:     opts,
		active:   make(map[models.JobKey]*jobState),
	}
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})))
	s.cron.Start()
	return s
}

// Start registers the job and its session and schedules the first tick. It
// returns once the job is armed; it never waits for the job to run. On any
// registration failure nothing is left behind: no timers, no session, no job.
func (s *Scheduler) Start(req StartRequest) error {
	if req.Target <= 0 {
		return fmt.Errorf("target must be positive, got %d", req.Target)
	}
	if req.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", req.Interval)
	}
	if req.Action == nil {
		return fmt.Errorf("action is required")
	}

	key := models.JobKey{TargetID: req.TargetID, SessionID: req.SessionID}
	if _, err := s.jobs.Create(key, req.URL, req.Target); err != nil {
		return fmt.Errorf("register job %s: %w", key, err)
	}
	s.sessions.Create(req.SessionID, req.Username, req.URL)

	st := &jobState{
		action: req.Action,
		token:  req.Token,
		target: req.Target,
	}
	s.mu.Lock()
	s.active[key] = st
	s.mu.Unlock()

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", req.Interval), func() {
		s.tick(key)
	})
	if err != nil {
		s.mu.Lock()
		delete(s.active, key)
		s.mu.Unlock()
		s.jobs.Remove(key)
		s.sessions.Remove(req.SessionID)
		return fmt.Errorf("schedule job %s: %w", key, err)
	}

	window := time.Duration(req.Target)*req.Interval + s.opts.DeadlineSlack
	s.mu.Lock()
	st.entryID = entryID
	if !st.terminal {
		st.deadline = time.AfterFunc(window, func() { s.expire(key) })
	}
	s.mu.Unlock()

	s.logger.LogJobStart(key.String(), req.Target, req.Interval)
	return nil
}

// tick performs exactly one action attempt. A soft rejection leaves the
// count untouched and the job running; a hard failure terminates the job.
func (s *Scheduler) tick(key models.JobKey) {
	s.mu.Lock()
	st, ok := s.active[key]
	if !ok || st.terminal {
		s.mu.Unlock()
		return
	}
	action, token, target := st.action, st.token, st.target
	s.mu.Unlock()

	runID := uuid.New().String()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.TickTimeout)
	err := action.Perform(ctx, key.TargetID, token)
	cancel()

	switch {
	case err == nil:
	case errors.Is(err, services.ErrActionRejected):
		s.logger.Warn().
			Err(err).
			Str("action", "tick_rejected").
			Str("job_key", key.String()).
			Str("run_id", runID).
			Msg("Action rejected, keeping job alive")
		return
	default:
		s.logger.Error().
			Err(err).
			Str("action", "tick_failed").
			Str("job_key", key.String()).
			Str("run_id", runID).
			Msg("Action transport failure, terminating job")
		s.fail(key)
		return
	}

	count, ok := s.jobs.Increment(key)
	if !ok {
		return
	}
	if count >= target {
		s.complete(key)
	}
}

// transition flips the job to terminal and cancels both timers. Exactly one
// caller wins; everyone else sees false.
func (s *Scheduler) transition(key models.JobKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.active[key]
	if !ok || st.terminal {
		return false
	}
	st.terminal = true
	s.cron.Remove(st.entryID)
	if st.deadline != nil {
		st.deadline.Stop()
	}
	delete(s.active, key)
	return true
}

// reconcile writes the job's outcome to the history store. The store's
// merge rule guards the double-write race, but transition keeps that a rare
// defensive case rather than the primary mechanism.
func (s *Scheduler) reconcile(key models.JobKey, status string) error {
	job, ok := s.jobs.Get(key)
	if !ok {
		job = models.Job{Key: key}
	}
	username, url := s.sessions.Lookup(key.SessionID)
	if job.URL == "" {
		job.URL = url
	}

	entry := models.NewHistoryEntry(status, key.SessionID, username, job.URL, job.Count, job.Target)
	if err := s.history.Append(entry); err != nil {
		s.logger.Error().
			Err(err).
			Str("action", "reconcile_failed").
			Str("job_key", key.String()).
			Str("status", status).
			Msg("Failed to persist history entry")
		return fmt.Errorf("persist history for %s: %w", key, err)
	}

	s.logger.LogJobTerminal(key.String(), status, job.Count, job.Target)
	return nil
}

func (s *Scheduler) complete(key models.JobKey) {
	if !s.transition(key) {
		return
	}
	_ = s.reconcile(key, models.StatusCompleted)
	// Leave the final count visible for a short window before removal.
	time.AfterFunc(s.opts.Linger, func() {
		s.remove(key)
	})
}

func (s *Scheduler) fail(key models.JobKey) {
	if !s.transition(key) {
		return
	}
	_ = s.reconcile(key, models.StatusErrored)
	s.remove(key)
}

func (s *Scheduler) expire(key models.JobKey) {
	if !s.transition(key) {
		return
	}
	_ = s.reconcile(key, models.StatusExpired)
	s.remove(key)
}

// Stop cancels the job at the given 1-based positional rank, as shown by the
// live listing. Stopping an unknown or already-terminal position returns
// ErrNotFound. The terminal history write must succeed for Stop to succeed.
func (s *Scheduler) Stop(position int) error {
	key, ok := s.jobs.KeyAt(position)
	if !ok {
		return ErrNotFound
	}
	if !s.transition(key) {
		return ErrNotFound
	}
	err := s.reconcile(key, models.StatusStopped)
	s.remove(key)
	return err
}

func (s *Scheduler) remove(key models.JobKey) {
	s.jobs.Remove(key)
	s.sessions.Remove(key.SessionID)
}

// ActiveCount reports jobs that have not reached a terminal state.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Shutdown stops the cron runner, waits for in-flight ticks and disarms all
// deadlines. Jobs are not reconciled; they simply stop firing.
func (s *Scheduler) Shutdown() {
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, st := range s.active {
		st.terminal = true
		if st.deadline != nil {
			st.deadline.Stop()
		}
		delete(s.active, key)
	}
}

// cronLogger adapts the service logger to the cron runner's interface.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug().Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Error().Err(err).Msg(msg)
}
