// Package run orchestrates one publishing pass: load the dedup store, gather
// candidates, publish under quota, save the store and, when unattended, hand
// it to the durability hook.
package run

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"feedcaster/internal/config"
	"feedcaster/internal/dedup"
	"feedcaster/internal/persist"
	"feedcaster/internal/publish"
	"feedcaster/internal/source"
	"feedcaster/internal/storage"
	kit "feedcaster/internal/transport"
	logx "feedcaster/pkg/logx"
)

// Deps are the collaborators of a run. Build assembles them from config;
// tests wire fakes directly.
type Deps struct {
	Credentials config.Credentials
	// Unattended gates the durability hook.
	Unattended bool

	Adapters      []source.Adapter
	SourceTimeout time.Duration

	Store  storage.Store
	MaxIDs int

	Sender    kit.Sender
	Formatter publish.Formatter
	Publish   publish.Config
	Rand      *rand.Rand

	Hook   persist.Hook
	Logger logx.Logger
}

// Report summarizes a finished run.
type Report struct {
	Candidates    int
	Sent          int
	Skipped       int
	Failed        int
	FailedSources []string
	Stored        int
	SaveErr       error
	Persisted     bool
	PersistErr    error
	Duration      time.Duration
}

type Runner struct {
	d   Deps
	log logx.Logger
}

func New(d Deps) *Runner {
	log := d.Logger
	if log.IsZero() {
		log = logx.Nop()
	}
	if d.Hook == nil {
		d.Hook = persist.Nop{}
	}
	if d.MaxIDs <= 0 {
		d.MaxIDs = dedup.DefaultMaxIDs
	}
	return &Runner{d: d, log: log.With(logx.String("comp", "run"))}
}

// Run executes one pass. The only error it returns is a missing credential;
// everything else is logged and reflected in the Report.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	var rep Report
	started := time.Now()

	if err := r.d.Credentials.Validate(); err != nil {
		r.log.Error("cannot start run", logx.Err(err))
		return rep, err
	}

	seen := dedup.Load(ctx, r.d.Store, r.log)

	res := source.Gather(ctx, r.d.Adapters, r.d.SourceTimeout, r.log)
	rep.Candidates = len(res.Items)
	for name := range res.Failed {
		rep.FailedSources = append(rep.FailedSources, name)
	}
	sort.Strings(rep.FailedSources)
	r.log.Info("candidates gathered",
		logx.Int("candidates", rep.Candidates),
		logx.Int("sources", len(r.d.Adapters)),
		logx.Int("failed_sources", len(rep.FailedSources)),
	)

	pcfg := r.d.Publish
	pcfg.Target.Chat = r.d.Credentials.ChannelID
	pub := publish.New(pcfg, r.d.Sender, r.d.Formatter, r.d.Rand, r.log)
	pr := pub.Publish(ctx, res.Items, seen)
	rep.Sent, rep.Skipped, rep.Failed = pr.Sent, pr.Skipped, pr.Failed

	// Save uses a fresh context so a cancelled run still records what it sent.
	saveCtx := context.WithoutCancel(ctx)
	if err := dedup.Save(saveCtx, r.d.Store, seen, r.d.MaxIDs); err != nil {
		rep.SaveErr = err
		r.log.Error("dedup store save failed", logx.Err(err))
	} else {
		rep.Stored = min(seen.Len(), r.d.MaxIDs)
	}

	if r.d.Unattended && r.d.Store != nil {
		if err := r.d.Hook.Persist(saveCtx, r.d.Store.Path()); err != nil {
			rep.PersistErr = err
			r.log.Error("durability hook failed", logx.Err(err))
		} else {
			rep.Persisted = true
		}
	} else {
		r.log.Debug("not unattended; durability hook skipped")
	}

	rep.Duration = time.Since(started)
	r.log.Info("run complete",
		logx.Int("sent", rep.Sent),
		logx.Int("skipped", rep.Skipped),
		logx.Int("failed", rep.Failed),
		logx.Duration("took", rep.Duration),
	)
	return rep, nil
}
