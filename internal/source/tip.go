package source

import (
	"context"
	"html"
	"math/rand"
	"strings"
	"sync"

	"feedcaster/internal/item"
)

// DefaultTips is the built-in finance tip bank.
var DefaultTips = []string{
	"Start with a written budget and track it weekly.",
	"Always have an emergency fund equal to 3–6 months of expenses.",
	"Dollar-cost averaging reduces timing risk for investments.",
	"Avoid checking investments daily — it causes emotional trading.",
	"Diversify: different assets perform differently in market cycles.",
}

// Tip picks one tip from a local list. It never fails.
type Tip struct {
	mu   sync.Mutex
	tips []string
	rng  *rand.Rand
}

// NewTip picks from tips, falling back to DefaultTips when the list is empty.
// A nil rng gets a randomly seeded source.
func NewTip(tips []string, rng *rand.Rand) *Tip {
	if len(tips) == 0 {
		tips = DefaultTips
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Tip{tips: tips, rng: rng}
}

// Name identifies the adapter in logs and Result.Failed.
func (t *Tip) Name() string { return "tip" }

// Fetch returns one pre-rendered tip. It never returns an error.
func (t *Tip) Fetch(ctx context.Context) ([]item.Item, error) {
	_ = ctx
	t.mu.Lock()
	tip := strings.TrimSpace(t.tips[t.rng.Intn(len(t.tips))])
	t.mu.Unlock()
	if tip == "" {
		return nil, nil
	}
	text := "💹 <b>Finance Tip:</b> " + html.EscapeString(tip)
	return []item.Item{item.New(item.CategoryTip, "", text, "", "", "")}, nil
}
