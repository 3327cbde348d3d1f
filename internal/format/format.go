// Package format renders candidate items into Telegram HTML messages.
package format

import (
	"strings"
	"time"

	"feedcaster/internal/item"
)

const (
	DefaultSummaryMax = 350
	footerLayout      = "2006-01-02 15:04"
)

// Formatter renders items. The zero value is usable.
type Formatter struct {
	// SummaryMax caps article summaries in runes (default 350).
	SummaryMax int
	// Now is the clock used for the footer timestamp (default time.Now).
	Now func() time.Time
}

// Format returns the final message text for it, including the timestamp footer.
func (f Formatter) Format(it item.Item) string {
	var body string
	if it.Category.PreRendered() {
		body = it.Title
	} else {
		body = f.article(it).String()
	}
	return body + f.footer()
}

func (f Formatter) article(it item.Item) H {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		title = "Untitled"
	}
	lines := []H{"📰 " + B(title)}
	if it.Source != "" {
		lines = append(lines, H("🔹 ")+I(it.Source)+H(" ")+Esc(it.Published))
	}
	if s := PlainText(it.Summary); s != "" {
		lines = append(lines, Esc(Truncate(s, f.summaryMax())))
	}
	if it.Link != "" {
		lines = append(lines, "🔗 "+Link("Read more", it.Link))
	}
	return JoinH("\n", lines...)
}

func (f Formatter) footer() string {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return "\n\n⏱️ " + now().UTC().Format(footerLayout) + " UTC"
}

func (f Formatter) summaryMax() int {
	if f.SummaryMax <= 0 {
		return DefaultSummaryMax
	}
	return f.SummaryMax
}
