// Package item defines the candidate item model shared by sources, the
// formatter and the publisher.
//
// Identity scheme: an item's ID is the lowercase hex SHA-1 of the UTF-8 bytes
// of category + title + link, concatenated without separators. The category
// is part of the input so that a quote and an article with the same text never
// suppress each other.
package item

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// Category tags where an item came from. New categories must be lowercase,
// non-empty words so they stay distinct inside the hash input.
type Category string

const (
	CategoryArticle Category = "article"
	CategoryQuote   Category = "quote"
	CategoryFact    Category = "fact"
	CategoryTip     Category = "tip"
)

// PreRendered reports whether Title already holds the final message body.
func (c Category) PreRendered() bool {
	switch c {
	case CategoryQuote, CategoryFact, CategoryTip:
		return true
	default:
		return false
	}
}

// Item is a unit of content eligible for posting.
type Item struct {
	ID        string
	Category  Category
	Source    string // feed display name; empty for non-article categories
	Title     string
	Link      string
	Published string
	Summary   string
}

// New builds an item and derives its ID.
func New(cat Category, source, title, link, published, summary string) Item {
	it := Item{
		Category:  cat,
		Source:    strings.TrimSpace(source),
		Title:     strings.TrimSpace(title),
		Link:      strings.TrimSpace(link),
		Published: strings.TrimSpace(published),
		Summary:   summary,
	}
	it.ID = Identify(it.Category, it.Title, it.Link)
	return it
}

// Valid reports whether the item can be posted.
func (it Item) Valid() bool {
	return it.ID != "" && strings.TrimSpace(it.Title) != ""
}

// Identify maps the distinguishing fields of an item to a stable identifier.
func Identify(cat Category, title, link string) string {
	h := sha1.New()
	_, _ = h.Write([]byte(string(cat)))
	_, _ = h.Write([]byte(title))
	_, _ = h.Write([]byte(link))
	return hex.EncodeToString(h.Sum(nil))
}
