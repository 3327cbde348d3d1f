// Package publish delivers formatted candidates to the outbound channel.
//
// Delivery is at-least-once: an id is recorded only after the platform
// accepted the message, so failed items stay eligible for the next run.
package publish

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"feedcaster/internal/dedup"
	"feedcaster/internal/item"
	kit "feedcaster/internal/transport"
	logx "feedcaster/pkg/logx"
)

const (
	DefaultQuota = 6
	DefaultDelay = 2 * time.Second

	// maxRetryAfter caps how long a flood-control reply may stall a run.
	maxRetryAfter = 60 * time.Second
)

// Formatter renders an item into message text.
type Formatter interface {
	Format(it item.Item) string
}

// Config controls where and how fast a Publisher sends.
type Config struct {
	Target  kit.ChatTarget
	Options kit.SendOptions
	// Quota is the maximum number of successful sends per Publish call.
	// Zero sends nothing.
	Quota int
	// Delay is the minimum spacing between delivery attempts. 0 disables pacing.
	Delay time.Duration
}

// Report counts the outcome of one Publish call.
type Report struct {
	Sent    int
	Skipped int // already posted
	Failed  int
}

// Publisher sends formatted items through a Sender under a quota.
type Publisher struct {
	cfg    Config
	sender kit.Sender
	format Formatter
	rng    *rand.Rand
	log    logx.Logger

	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates a publisher. rng drives the shuffle; pass a seeded source for
// deterministic order.
func New(cfg Config, sender kit.Sender, format Formatter, rng *rand.Rand, log logx.Logger) *Publisher {
	if cfg.Quota < 0 {
		cfg.Quota = 0
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.Delay > 0 {
		lim = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}
	return &Publisher{
		cfg:     cfg,
		sender:  sender,
		format:  format,
		rng:     rng,
		log:     log.With(logx.String("comp", "publish")),
		limiter: lim,
		sleep:   sleepCtx,
	}
}

// Publish shuffles candidates and sends unseen ones until the quota is met.
// Successful ids are recorded into seen.
func (p *Publisher) Publish(ctx context.Context, candidates []item.Item, seen *dedup.Set) Report {
	var rep Report

	order := append([]item.Item(nil), candidates...)
	p.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, it := range order {
		if rep.Sent >= p.cfg.Quota {
			break
		}
		if ctx.Err() != nil {
			p.log.Warn("publish interrupted", logx.Err(ctx.Err()), logx.Int("sent", rep.Sent))
			break
		}
		if seen.Contains(it.ID) {
			rep.Skipped++
			continue
		}

		text := p.format.Format(it)
		if err := p.deliver(ctx, text); err != nil {
			rep.Failed++
			p.log.Warn("failed to post item", logx.String("id", it.ID), logx.String("title", head(it.Title, 80)), logx.Err(err))
			continue
		}
		seen.Record(it.ID)
		rep.Sent++
		p.log.Info("posted", logx.String("id", it.ID), logx.String("category", string(it.Category)), logx.String("title", head(it.Title, 80)))
	}
	return rep
}

// deliver paces the attempt and honours one flood-control retry.
func (p *Publisher) deliver(ctx context.Context, text string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	opt := p.cfg.Options
	_, err := p.sender.SendText(ctx, p.cfg.Target, text, &opt)

	var rl *kit.RateLimitError
	if err == nil || !errors.As(err, &rl) {
		return err
	}
	wait := rl.RetryAfter
	if wait <= 0 {
		wait = time.Second
	}
	if wait > maxRetryAfter {
		return err
	}
	p.log.Info("flood control; retrying", logx.Duration("retry_after", wait))
	if err := p.sleep(ctx, wait); err != nil {
		return err
	}
	_, err = p.sender.SendText(ctx, p.cfg.Target, text, &opt)
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
