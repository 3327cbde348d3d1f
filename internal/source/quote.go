package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"feedcaster/internal/item"
)

const (
	DefaultQuoteURL = "https://zenquotes.io/api/random"
	DefaultFactURL  = "https://uselessfacts.jsph.pl/random.json?language=en"
)

// Quote fetches one random quote from a zenquotes-compatible API.
type Quote struct {
	url    string
	client *http.Client
}

// NewQuote returns a quote adapter for url (DefaultQuoteURL when empty).
func NewQuote(url string, client *http.Client) *Quote {
	if strings.TrimSpace(url) == "" {
		url = DefaultQuoteURL
	}
	return &Quote{url: url, client: client}
}

// Name identifies the adapter in logs and Result.Failed.
func (q *Quote) Name() string { return "quote" }

// Fetch returns one pre-rendered quote item. An empty payload is an error.
func (q *Quote) Fetch(ctx context.Context) ([]item.Item, error) {
	var payload []struct {
		Q string `json:"q"`
		A string `json:"a"`
	}
	if err := getJSON(ctx, q.client, q.url, &payload); err != nil {
		return nil, err
	}
	if len(payload) == 0 || strings.TrimSpace(payload[0].Q) == "" {
		return nil, errors.New("quote: empty response")
	}
	text := fmt.Sprintf("💬 <b>%s</b>\n— <i>%s</i>",
		html.EscapeString(strings.TrimSpace(payload[0].Q)),
		html.EscapeString(strings.TrimSpace(payload[0].A)))
	return []item.Item{item.New(item.CategoryQuote, "", text, "", "", "")}, nil
}

// Fact fetches one random fact from a uselessfacts-compatible API.
type Fact struct {
	url    string
	client *http.Client
}

// NewFact returns a fact adapter for url (DefaultFactURL when empty).
func NewFact(url string, client *http.Client) *Fact {
	if strings.TrimSpace(url) == "" {
		url = DefaultFactURL
	}
	return &Fact{url: url, client: client}
}

// Name identifies the adapter in logs and Result.Failed.
func (f *Fact) Name() string { return "fact" }

// Fetch returns one pre-rendered fact item. An empty payload is an error.
func (f *Fact) Fetch(ctx context.Context) ([]item.Item, error) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := getJSON(ctx, f.client, f.url, &payload); err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Text) == "" {
		return nil, errors.New("fact: empty response")
	}
	text := "🧠 <b>Random Fact:</b> " + html.EscapeString(strings.TrimSpace(payload.Text))
	return []item.Item{item.New(item.CategoryFact, "", text, "", "", "")}, nil
}

// getJSON GETs url and decodes the 200 response body into out.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	if client == nil {
		client = NewHTTPClient(0)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("GET %s: http %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", url, err)
	}
	return nil
}
