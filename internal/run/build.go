package run

import (
	"fmt"
	"math/rand"
	"net/http"
	"strings"

	"feedcaster/internal/config"
	"feedcaster/internal/format"
	"feedcaster/internal/persist"
	"feedcaster/internal/publish"
	"feedcaster/internal/source"
	"feedcaster/internal/storage"
	kit "feedcaster/internal/transport"
	"feedcaster/internal/transport/telegram"
	logx "feedcaster/pkg/logx"
)

// Env is the process context a run is built for.
type Env struct {
	Credentials config.Credentials
	Unattended  bool
	// Getenv reads optional context such as the push ref (usually os.Getenv).
	Getenv func(string) string
}

// Build wires a Runner from config. The returned close func releases the
// store and must be called once the run is over.
func Build(cfg *config.Config, env Env, log logx.Logger) (*Runner, func() error, error) {
	if err := env.Credentials.Validate(); err != nil {
		return nil, nil, err
	}
	rt, err := cfg.Runtime()
	if err != nil {
		return nil, nil, err
	}
	if env.Getenv == nil {
		env.Getenv = func(string) string { return "" }
	}

	rng := rand.New(rand.NewSource(rand.Int63()))

	st, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: rt.BusyTimeout,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open dedup store: %w", err)
	}

	sender, err := telegram.New(telegram.Config{
		Token:   env.Credentials.Token,
		APIURL:  cfg.Telegram.APIURL,
		Timeout: rt.TelegramTimeout,
	}, log)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	quota := cfg.Publish.Quota
	if quota <= 0 {
		quota = publish.DefaultQuota
	}

	r := New(Deps{
		Credentials:   env.Credentials,
		Unattended:    env.Unattended,
		Adapters:      Adapters(cfg.Sources, source.NewHTTPClient(rt.SourceTimeout), rng),
		SourceTimeout: rt.SourceTimeout,
		Store:         st,
		MaxIDs:        cfg.Storage.MaxIDs,
		Sender:        sender,
		Formatter:     format.Formatter{SummaryMax: cfg.Publish.SummaryMax},
		Publish: publish.Config{
			Target:  kit.ChatTarget{ThreadID: cfg.Telegram.ThreadID},
			Options: kit.SendOptions{ParseMode: "HTML", DisablePreview: cfg.Telegram.DisablePreview},
			Quota:   quota,
			Delay:   rt.PublishDelay,
		},
		Rand:   rng,
		Hook:   Hook(cfg.Persist, rt, env.Getenv, log),
		Logger: log,
	})
	return r, st.Close, nil
}

// Adapters returns the enabled source adapters in config order: feeds first,
// then quote, fact and tip.
func Adapters(sc config.SourcesConfig, client *http.Client, rng *rand.Rand) []source.Adapter {
	limit := sc.PerFeedLimit
	if limit <= 0 {
		limit = source.DefaultPerFeedLimit
	}
	out := make([]source.Adapter, 0, len(sc.Feeds)+3)
	for _, f := range sc.Feeds {
		out = append(out, source.NewRSS(source.Feed{Name: f.Name, URL: f.URL}, limit, client))
	}
	if sc.Quote.Enabled {
		out = append(out, source.NewQuote(sc.Quote.URL, client))
	}
	if sc.Fact.Enabled {
		out = append(out, source.NewFact(sc.Fact.URL, client))
	}
	if sc.Tips.Enabled {
		out = append(out, source.NewTip(sc.Tips.Items, rng))
	}
	return out
}

// Hook returns the configured durability hook.
func Hook(pc config.PersistConfig, rt config.Runtime, getenv func(string) string, log logx.Logger) persist.Hook {
	switch strings.ToLower(strings.TrimSpace(pc.Hook)) {
	case "none":
		return persist.Nop{}
	default:
		return persist.NewGit(persist.GitConfig{
			CommitMessage: pc.CommitMessage,
			Ref:           strings.TrimSpace(getenv(config.EnvRef)),
			Timeout:       rt.PersistTimeout,
		}, persist.ExecRunner, log)
	}
}
