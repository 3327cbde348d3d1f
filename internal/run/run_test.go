package run

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"feedcaster/internal/config"
	"feedcaster/internal/item"
	"feedcaster/internal/publish"
	"feedcaster/internal/source"
	"feedcaster/internal/storage"
	kit "feedcaster/internal/transport"
	logx "feedcaster/pkg/logx"
)

type stubAdapter struct {
	name  string
	items []item.Item
	err   error
}

func (s stubAdapter) Name() string { return s.name }
func (s stubAdapter) Fetch(context.Context) ([]item.Item, error) {
	return s.items, s.err
}

type recordingSender struct {
	mu   sync.Mutex
	to   []string
	sent []string
}

func (r *recordingSender) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.to = append(r.to, to.Chat)
	r.sent = append(r.sent, text)
	return kit.MessageRef{Chat: to.Chat, MessageID: len(r.sent)}, nil
}

type titleFormatter struct{}

func (titleFormatter) Format(it item.Item) string { return it.Title }

type countingHook struct {
	calls int
	path  string
	err   error
}

func (h *countingHook) Persist(_ context.Context, path string) error {
	h.calls++
	h.path = path
	return h.err
}

var creds = config.Credentials{Token: "123:abc", ChannelID: "@news"}

func openStore(t *testing.T) storage.Store {
	t.Helper()
	st, err := storage.Open(storage.Config{Path: filepath.Join(t.TempDir(), "posted_ids.json")}, logx.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func articles(n int) []item.Item {
	out := make([]item.Item, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, item.New(item.CategoryArticle, "Tech", fmt.Sprintf("story %d", i), fmt.Sprintf("https://x.test/%d", i), "", ""))
	}
	return out
}

func newRunner(st storage.Store, s kit.Sender, hook *countingHook, unattended bool, quota int, adapters ...source.Adapter) *Runner {
	return New(Deps{
		Credentials: creds,
		Unattended:  unattended,
		Adapters:    adapters,
		Store:       st,
		Sender:      s,
		Formatter:   titleFormatter{},
		Publish:     publish.Config{Quota: quota},
		Rand:        rand.New(rand.NewSource(1)),
		Hook:        hook,
		Logger:      logx.Nop(),
	})
}

func TestRunSkipsAlreadyPosted(t *testing.T) {
	st := openStore(t)
	old := item.New(item.CategoryArticle, "Tech", "old", "https://x.test/old", "", "")
	if err := st.Save(context.Background(), []string{old.ID}); err != nil {
		t.Fatal(err)
	}
	fresh := item.New(item.CategoryArticle, "Tech", "X", "https://x.test/x", "", "")
	s := &recordingSender{}

	rep, err := newRunner(st, s, &countingHook{}, false, 6,
		stubAdapter{name: "rss:Tech", items: []item.Item{old, fresh}},
	).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Sent != 1 || rep.Skipped != 1 {
		t.Fatalf("report = %+v", rep)
	}
	if len(s.sent) != 1 || s.sent[0] != "X" {
		t.Fatalf("sent = %v", s.sent)
	}
	if s.to[0] != "@news" {
		t.Fatalf("target = %q, want channel from credentials", s.to[0])
	}

	ids, err := st.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != old.ID || ids[1] != fresh.ID {
		t.Fatalf("stored ids = %v", ids)
	}
}

func TestRunRespectsQuota(t *testing.T) {
	st := openStore(t)
	s := &recordingSender{}
	rep, err := newRunner(st, s, &countingHook{}, false, 2,
		stubAdapter{name: "rss:Tech", items: articles(5)},
	).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Sent != 2 || len(s.sent) != 2 || rep.Stored != 2 {
		t.Fatalf("report = %+v, sent = %v", rep, s.sent)
	}
}

func TestRunAllSourcesFail(t *testing.T) {
	st := openStore(t)
	s := &recordingSender{}
	rep, err := newRunner(st, s, &countingHook{}, false, 6,
		stubAdapter{name: "rss:Tech", err: errors.New("dns")},
		stubAdapter{name: "quote", err: context.DeadlineExceeded},
	).Run(context.Background())
	if err != nil {
		t.Fatalf("all-source failure must not fail the run: %v", err)
	}
	if rep.Sent != 0 || len(s.sent) != 0 {
		t.Fatalf("report = %+v", rep)
	}
	if len(rep.FailedSources) != 2 || rep.FailedSources[0] != "quote" {
		t.Fatalf("failed sources = %v", rep.FailedSources)
	}
	if rep.SaveErr != nil {
		t.Fatalf("store must still be saved: %v", rep.SaveErr)
	}
}

func TestRunMissingCredentials(t *testing.T) {
	st := openStore(t)
	s := &recordingSender{}
	hook := &countingHook{}
	r := newRunner(st, s, hook, true, 6, stubAdapter{name: "rss:Tech", items: articles(1)})
	r.d.Credentials = config.Credentials{Token: "123:abc"}

	_, err := r.Run(context.Background())
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
	if len(s.sent) != 0 || hook.calls != 0 {
		t.Fatal("nothing may happen without credentials")
	}
}

func TestRunHookOnlyWhenUnattended(t *testing.T) {
	for _, unattended := range []bool{false, true} {
		st := openStore(t)
		hook := &countingHook{}
		rep, err := newRunner(st, &recordingSender{}, hook, unattended, 6,
			stubAdapter{name: "rss:Tech", items: articles(1)},
		).Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		want := 0
		if unattended {
			want = 1
		}
		if hook.calls != want {
			t.Fatalf("unattended=%v: hook calls = %d, want %d", unattended, hook.calls, want)
		}
		if unattended && (hook.path != st.Path() || !rep.Persisted) {
			t.Fatalf("hook path = %q, report = %+v", hook.path, rep)
		}
	}
}

func TestRunHookFailureIsNotFatal(t *testing.T) {
	st := openStore(t)
	hook := &countingHook{err: errors.New("push rejected")}
	rep, err := newRunner(st, &recordingSender{}, hook, true, 6,
		stubAdapter{name: "rss:Tech", items: articles(1)},
	).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Persisted || rep.PersistErr == nil || rep.Sent != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestRunSavesAfterCancel(t *testing.T) {
	st := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := newRunner(st, &recordingSender{}, &countingHook{}, false, 6).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.SaveErr != nil {
		t.Fatalf("save should ignore run cancellation: %v", rep.SaveErr)
	}
}

func TestAdaptersFollowConfig(t *testing.T) {
	cfg := config.Default()
	got := Adapters(cfg.Sources, source.NewHTTPClient(time.Second), rand.New(rand.NewSource(1)))
	if len(got) != len(cfg.Sources.Feeds)+3 {
		t.Fatalf("adapters = %d", len(got))
	}
	if got[0].Name() != "rss:Tech" || got[len(got)-1].Name() != "tip" {
		t.Fatalf("order: first=%s last=%s", got[0].Name(), got[len(got)-1].Name())
	}

	cfg.Sources.Quote.Enabled = false
	cfg.Sources.Fact.Enabled = false
	cfg.Sources.Tips.Enabled = false
	if got := Adapters(cfg.Sources, nil, nil); len(got) != len(cfg.Sources.Feeds) {
		t.Fatalf("disabled extras still built: %d", len(got))
	}
}

func TestBuildRequiresCredentials(t *testing.T) {
	_, _, err := Build(config.Default(), Env{}, logx.Nop())
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildWiresStore(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "posted.db")
	cfg.Persist.Hook = "none"

	r, closeFn, err := Build(cfg, Env{Credentials: creds}, logx.Nop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer closeFn()
	if r.d.Store.Path() != cfg.Storage.Path {
		t.Fatalf("store path = %q", r.d.Store.Path())
	}
	if r.d.Publish.Delay != 2*time.Second || r.d.Publish.Options.ParseMode != "HTML" {
		t.Fatalf("publish config = %+v", r.d.Publish)
	}
}

func TestBuildDefaultsZeroQuota(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "posted_ids.json")
	cfg.Publish.Quota = 0

	r, closeFn, err := Build(cfg, Env{Credentials: creds}, logx.Nop())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer closeFn()
	if r.d.Publish.Quota != publish.DefaultQuota {
		t.Fatalf("quota = %d, want %d", r.d.Publish.Quota, publish.DefaultQuota)
	}
}
