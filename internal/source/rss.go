package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"feedcaster/internal/item"
)

// Feed is one configured RSS/Atom source.
type Feed struct {
	Name string
	URL  string
}

// RSS reads the newest entries of one feed.
type RSS struct {
	feed   Feed
	limit  int
	parser *gofeed.Parser
}

// NewRSS reads at most limit entries of feed per fetch (DefaultPerFeedLimit
// when limit <= 0) using client.
func NewRSS(feed Feed, limit int, client *http.Client) *RSS {
	if limit <= 0 {
		limit = DefaultPerFeedLimit
	}
	p := gofeed.NewParser()
	p.Client = client
	p.UserAgent = userAgent
	return &RSS{feed: feed, limit: limit, parser: p}
}

// Name is "rss:" plus the feed display name.
func (r *RSS) Name() string { return "rss:" + r.feed.Name }

// Fetch parses the feed and maps its newest entries to article items.
func (r *RSS) Fetch(ctx context.Context) ([]item.Item, error) {
	f, err := r.parser.ParseURLWithContext(r.feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", r.feed.Name, err)
	}

	n := len(f.Items)
	if n > r.limit {
		n = r.limit
	}
	out := make([]item.Item, 0, n)
	for _, e := range f.Items[:n] {
		if e == nil {
			continue
		}
		published := e.Published
		if published == "" {
			published = e.Updated
		}
		summary := e.Description
		if strings.TrimSpace(summary) == "" {
			summary = e.Content
		}
		out = append(out, item.New(item.CategoryArticle, r.feed.Name, e.Title, e.Link, published, summary))
	}
	return out, nil
}
