package schedule

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "feedcaster/pkg/logx"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

type Config struct {
	Spec     string
	Timezone string // IANA, e.g. "Asia/Jakarta"; empty means local
	// Timeout bounds a single run; zero means no limit beyond ctx.
	Timeout time.Duration
}

// Scheduler triggers Job on a cron timetable with overlap protection.
type Scheduler struct {
	log logx.Logger
	job Job

	mu      sync.Mutex
	c       *cron.Cron
	spec    Spec
	loc     *time.Location
	timeout time.Duration
	ctx     context.Context
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func New(job Job, log logx.Logger) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scheduler{job: job, log: log.With(logx.String("comp", "schedule"))}
}

// Start registers the job and starts ticking. It returns an error for an
// invalid spec or timezone, leaving any previous timetable untouched.
func (s *Scheduler) Start(ctx context.Context, cfg Config) error {
	sp, loc, err := prepare(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return fmt.Errorf("scheduler already started")
	}
	s.ctx = ctx
	return s.startLocked(sp, loc, cfg.Timeout)
}

// Apply swaps the timetable in place, typically after a config reload.
func (s *Scheduler) Apply(cfg Config) error {
	sp, loc, err := prepare(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return fmt.Errorf("scheduler not started")
	}
	if sp.CronSpec() == s.spec.CronSpec() && loc.String() == s.loc.String() && cfg.Timeout == s.timeout {
		return nil
	}
	s.stopLocked()
	return s.startLocked(sp, loc, cfg.Timeout)
}

// Stop halts the timetable and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.log.Info("scheduler stopped")
}

// Next returns the next planned trigger, or zero if not started.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return time.Time{}
	}
	entries := s.c.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) startLocked(sp Spec, loc *time.Location, timeout time.Duration) error {
	cl := cronLogger{log: s.log}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx := s.ctx
	if _, err := c.AddFunc(sp.CronSpec(), func() { s.runOnce(ctx, timeout) }); err != nil {
		return fmt.Errorf("schedule %q: %w", sp.Raw, err)
	}
	s.c = c
	s.spec = sp
	s.loc = loc
	s.timeout = timeout
	c.Start()
	s.log.Info("scheduler started", logx.String("spec", sp.CronSpec()), logx.String("kind", sp.Kind.String()), logx.String("tz", loc.String()))
	return nil
}

func (s *Scheduler) stopLocked() {
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
	s.c = nil
}

// RunNow executes the job synchronously, outside the timetable.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.mu.Lock()
	timeout := s.timeout
	s.mu.Unlock()
	return s.execute(ctx, timeout)
}

// runOnce is invoked by cron. It must not take s.mu: Stop holds it while
// waiting for the running job.
func (s *Scheduler) runOnce(ctx context.Context, timeout time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}
	if err := s.execute(ctx, timeout); err != nil {
		s.log.Error("scheduled run failed", logx.Err(err))
	}
}

func (s *Scheduler) execute(ctx context.Context, timeout time.Duration) (err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.log.Error("run panic", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
		}
	}()
	started := time.Now()
	err = s.job(ctx)
	s.log.Debug("run finished", logx.Duration("took", time.Since(started)), logx.Err(err))
	return err
}

func prepare(cfg Config) (Spec, *time.Location, error) {
	sp, err := ParseSpec(cfg.Spec)
	if err != nil {
		return Spec{}, nil, err
	}
	if sp.Kind == SpecCron {
		if _, err := parser.Parse(sp.Cron); err != nil {
			return Spec{}, nil, fmt.Errorf("schedule %q: %w", cfg.Spec, err)
		}
	}
	loc := time.Local
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return Spec{}, nil, fmt.Errorf("timezone %q: %w", tz, err)
		}
		loc = l
	}
	return sp, loc, nil
}

// cronLogger routes robfig/cron's internal logging into logx.
type cronLogger struct {
	log logx.Logger
}

func (l cronLogger) Info(msg string, kv ...interface{}) {
	// cron reports "skip" when the previous run is still going.
	if msg == "skip" {
		l.log.Warn("previous run still in progress; tick skipped")
		return
	}
	l.log.Trace("cron: "+msg, kvFields(kv)...)
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(kv), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		out = append(out, logx.Any(k, kv[i+1]))
	}
	return out
}
