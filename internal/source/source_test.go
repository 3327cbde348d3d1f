package source

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"feedcaster/internal/item"
	logx "feedcaster/pkg/logx"
)

func rssDoc(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>T</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<item><title>Story %d</title><link>https://news.test/%d</link><pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate><description>&lt;p&gt;Body %d&lt;/p&gt;</description></item>`, i, i, i)
	}
	b.WriteString(`<item><title>  </title><link>https://news.test/blank</link></item>`)
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func serve(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetchCapsEntries(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/rss+xml", rssDoc(10))
	a := NewRSS(Feed{Name: "Tech", URL: srv.URL}, 6, srv.Client())

	items, err := a.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 6, len(items))
	first := items[0]
	assert.Equal(t, item.CategoryArticle, first.Category)
	assert.Equal(t, "Tech", first.Source)
	assert.Equal(t, "Story 0", first.Title)
	assert.Equal(t, "https://news.test/0", first.Link)
	assert.Equal(t, "Mon, 02 Mar 2026 10:00:00 GMT", first.Published)
	assert.Equal(t, "<p>Body 0</p>", first.Summary)
	assert.Equal(t, item.Identify(item.CategoryArticle, "Story 0", "https://news.test/0"), first.ID)
	assert.Equal(t, "rss:Tech", a.Name())
}

func TestRSSFetchHTTPError(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, "text/plain", "down")
	a := NewRSS(Feed{Name: "Tech", URL: srv.URL}, 0, srv.Client())
	_, err := a.Fetch(context.Background())
	assert.NotEqual(t, nil, err)
}

func TestRSSFetchMalformed(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/xml", "this is not a feed")
	a := NewRSS(Feed{Name: "Tech", URL: srv.URL}, 0, srv.Client())
	_, err := a.Fetch(context.Background())
	assert.NotEqual(t, nil, err)
}

func TestQuoteFetch(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", `[{"q":"Less is <more>","a":"Mies","h":"ignored"}]`)
	items, err := NewQuote(srv.URL, srv.Client()).Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))
	assert.Equal(t, item.CategoryQuote, items[0].Category)
	assert.Equal(t, "💬 <b>Less is &lt;more&gt;</b>\n— <i>Mies</i>", items[0].Title)
	assert.Equal(t, "", items[0].Link)
}

func TestQuoteFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "non-200", status: http.StatusTooManyRequests, body: `[]`},
		{name: "empty array", status: http.StatusOK, body: `[]`},
		{name: "empty quote", status: http.StatusOK, body: `[{"q":"  ","a":"x"}]`},
		{name: "bad json", status: http.StatusOK, body: `{"q":`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, "application/json", tt.body)
			_, err := NewQuote(srv.URL, srv.Client()).Fetch(context.Background())
			assert.NotEqual(t, nil, err)
		})
	}
}

func TestFactFetch(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", `{"id":"1","text":"Bananas are berries."}`)
	items, err := NewFact(srv.URL, srv.Client()).Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))
	assert.Equal(t, item.CategoryFact, items[0].Category)
	assert.Equal(t, "🧠 <b>Random Fact:</b> Bananas are berries.", items[0].Title)
}

func TestFactFetchEmpty(t *testing.T) {
	srv := serve(t, http.StatusOK, "application/json", `{"text":""}`)
	_, err := NewFact(srv.URL, srv.Client()).Fetch(context.Background())
	assert.NotEqual(t, nil, err)
}

func TestHTTPTimeoutIsAdapterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	res := Gather(context.Background(), []Adapter{NewFact(srv.URL, srv.Client())}, 50*time.Millisecond, logx.Nop())
	assert.Equal(t, 0, len(res.Items))
	assert.NotEqual(t, nil, res.Failed["fact"])
}

func TestTipNeverFails(t *testing.T) {
	tip := NewTip([]string{"Only tip"}, rand.New(rand.NewSource(1)))
	items, err := tip.Fetch(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))
	assert.Equal(t, "💹 <b>Finance Tip:</b> Only tip", items[0].Title)
	assert.Equal(t, item.CategoryTip, items[0].Category)

	def := NewTip(nil, nil)
	items, err = def.Fetch(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(items))
}

type stubAdapter struct {
	name  string
	items []item.Item
	err   error
	panic bool
}

func (s stubAdapter) Name() string { return s.name }
func (s stubAdapter) Fetch(ctx context.Context) ([]item.Item, error) {
	if s.panic {
		panic("adapter exploded")
	}
	return s.items, s.err
}

func TestGatherIsolatesFailures(t *testing.T) {
	a := item.New(item.CategoryArticle, "A", "a1", "https://a.test/1", "", "")
	b := item.New(item.CategoryQuote, "", "b1", "", "", "")
	invalid := item.Item{Category: item.CategoryArticle}

	res := Gather(context.Background(), []Adapter{
		stubAdapter{name: "ok-a", items: []item.Item{a, invalid}},
		stubAdapter{name: "broken", err: errors.New("dns failure")},
		stubAdapter{name: "panicky", panic: true},
		stubAdapter{name: "ok-b", items: []item.Item{b}},
	}, time.Second, logx.Nop())

	assert.Equal(t, 2, len(res.Items))
	assert.Equal(t, a.ID, res.Items[0].ID)
	assert.Equal(t, b.ID, res.Items[1].ID)
	assert.Equal(t, 2, len(res.Failed))
	assert.NotEqual(t, nil, res.Failed["broken"])
	assert.NotEqual(t, nil, res.Failed["panicky"])
}

func TestGatherAllFail(t *testing.T) {
	res := Gather(context.Background(), []Adapter{
		stubAdapter{name: "x", err: errors.New("x")},
		stubAdapter{name: "y", err: errors.New("y")},
	}, 0, logx.Nop())
	assert.Equal(t, 0, len(res.Items))
	assert.Equal(t, 2, len(res.Failed))
}
